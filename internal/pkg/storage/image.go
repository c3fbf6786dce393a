package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	ThumbnailMaxWidth  = 240
	ThumbnailMaxHeight = 240
)

// IsImage reports whether the MIME type is one the thumbnailer can decode.
func IsImage(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// ImageProcessor renders attachment previews.
type ImageProcessor struct {
	quality int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: 80}
}

// GenerateThumbnail fits the image into maxWidth x maxHeight and encodes it as JPEG.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumbnail := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumbnail, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, nil
}
