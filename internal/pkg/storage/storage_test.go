package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "attachments/ab/file.txt", bytes.NewBufferString("hello")))

	rc, err := s.Get(ctx, "attachments/ab/file.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, s.Delete(ctx, "attachments/ab/file.txt"))
	_, err = s.Get(ctx, "attachments/ab/file.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "attachments/ab/file.txt"))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../outside.txt", "a/../../outside.txt", "/etc/passwd", ""} {
		err := s.Save(ctx, p, bytes.NewBufferString("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestGenerateThumbnailFitsBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 400))
	for x := 0; x < 800; x++ {
		src.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := NewImageProcessor().GenerateThumbnail(&buf, ThumbnailMaxWidth, ThumbnailMaxHeight)
	require.NoError(t, err)

	thumb, format, err := image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, ThumbnailMaxWidth, thumb.Bounds().Dx())
	assert.Equal(t, ThumbnailMaxHeight/2, thumb.Bounds().Dy())
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.True(t, IsImage("IMAGE/JPEG; charset=binary"))
	assert.False(t, IsImage("application/pdf"))
	assert.False(t, IsImage(""))
}
