package attachment

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/apperror"
)

// MaxSizeBytes is the largest file accepted as a message attachment.
const MaxSizeBytes = 10 << 20

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "attachment not found")
	ErrThumbnailNotFound = apperror.New(http.StatusNotFound, "thumbnail not available for this attachment")
	ErrTooLarge          = apperror.New(http.StatusRequestEntityTooLarge, "attachment exceeds 10 MiB")
	ErrEmpty             = apperror.New(http.StatusBadRequest, "attachment is empty")
	ErrUnsupportedType   = apperror.New(http.StatusUnsupportedMediaType, "attachment type not allowed")
)

// AllowedTypes lists the media types accepted as attachments, as detected
// from the file content.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "application/pdf", "text/plain"}

// Attachment is an uploaded file that messages can reference.
type Attachment struct {
	ID            string
	SessionID     string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public path serving the attachment content.
func URL(id string) string {
	return "/v1/attachments/" + id
}

// ThumbnailURL returns the public path serving the attachment thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/attachments/" + id + "/thumbnail"
}
