package attachment

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/storage"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewService(NewMemoryRepository(), store, zap.NewNop())
}

// fileHeader round-trips content through a multipart form so the header is
// backed by a real part the service can open.
func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestUploadImageCreatesThumbnail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	content := pngBytes(t, 640, 480)

	a, err := svc.Upload(ctx, fileHeader(t, "Photo.PNG", "image/png", content), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "Photo.PNG", a.Filename)
	assert.Equal(t, "session-1", a.SessionID)
	assert.Equal(t, int64(len(content)), a.Size)
	assert.Contains(t, a.StoragePath, "attachments/"+a.ID[:2]+"/"+a.ID+".png")
	require.NotNil(t, a.ThumbnailPath)

	stream, got, err := svc.Download(ctx, a.ID)
	require.NoError(t, err)
	defer stream.Close()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, a.ID, got.ID)

	thumb, _, err := svc.DownloadThumbnail(ctx, a.ID)
	require.NoError(t, err)
	defer thumb.Close()
	cfg, format, err := image.DecodeConfig(thumb)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, cfg.Width, storage.ThumbnailMaxWidth)
	assert.LessOrEqual(t, cfg.Height, storage.ThumbnailMaxHeight)
}

func TestUploadDocumentHasNoThumbnail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Upload(ctx, fileHeader(t, "notes.txt", "", []byte("lesson notes")), "session-1")
	require.NoError(t, err)
	assert.Nil(t, a.ThumbnailPath)
	assert.Contains(t, a.ContentType, "text/plain")

	_, _, err = svc.DownloadThumbnail(ctx, a.ID)
	assert.ErrorIs(t, err, ErrThumbnailNotFound)
}

func TestUploadRejects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, fileHeader(t, "empty.txt", "text/plain", nil), "session-1")
	assert.ErrorIs(t, err, ErrEmpty)

	big := bytes.Repeat([]byte("a"), MaxSizeBytes+1)
	_, err = svc.Upload(ctx, fileHeader(t, "big.bin", "application/octet-stream", big), "session-1")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDownloadUnknown(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.Download(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadDetectsTypeFromContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		filename    string
		declared    string
		content     []byte
		wantType    string
		wantErr     error
		wantPreview bool
	}{
		{name: "HTML Rejected", filename: "page.html", declared: "text/html", content: []byte("<html><script>alert(1)</script></html>"), wantErr: ErrUnsupportedType},
		{name: "HTML Declared As Text", filename: "notes.txt", declared: "text/plain", content: []byte("<!DOCTYPE html><p>hi</p>"), wantErr: ErrUnsupportedType},
		{name: "Executable Rejected", filename: "run.bin", declared: "application/octet-stream", content: []byte{0x7f, 'E', 'L', 'F', 0, 0, 0, 0}, wantErr: ErrUnsupportedType},
		{name: "Text Declared As HTML", filename: "plan.txt", declared: "text/html", content: []byte("lesson plan"), wantType: "text/plain"},
		{name: "PDF", filename: "contract.pdf", declared: "", content: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), wantType: "application/pdf"},
		{name: "Image Declared As HTML", filename: "photo.png", declared: "text/html", content: pngBytes(t, 32, 32), wantType: "image/png", wantPreview: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.Upload(ctx, fileHeader(t, tt.filename, tt.declared, tt.content), "session-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			mediaType, _, err := mime.ParseMediaType(a.ContentType)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, mediaType)
			assert.Equal(t, tt.wantPreview, a.ThumbnailPath != nil)
		})
	}
}
