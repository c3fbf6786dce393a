package http

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nekogravitycat/lesson-booking-backend/internal/attachment"
	"github.com/nekogravitycat/lesson-booking-backend/internal/auth"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/storage"
	"go.uber.org/zap"
)

type Handler struct {
	service attachment.Service
	log     *zap.Logger
}

func NewHandler(service attachment.Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// Upload stores the multipart "file" field and returns its descriptor.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, attachment.MaxSizeBytes+(1<<20))

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, attachment.ErrTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	a, err := h.service.Upload(c.Request.Context(), header, auth.GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewAttachmentResponse(a))
}

// ServeFile streams the attachment content.
func (h *Handler) ServeFile(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, attachment.ErrNotFound)
		return
	}

	stream, a, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	disposition := "attachment"
	if storage.IsImage(a.ContentType) {
		disposition = "inline"
	}
	c.Header("Content-Type", a.ContentType)
	c.Header("Content-Disposition", contentDisposition(disposition, a.Filename))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		h.log.Warn("stream attachment failed", zap.String("attachment_id", id), zap.Error(err))
	}
}

// ServeThumbnail streams the JPEG preview of an image attachment.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, attachment.ErrNotFound)
		return
	}

	stream, a, err := h.service.DownloadThumbnail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", contentDisposition("inline", a.Filename+"_thumb.jpg"))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		h.log.Warn("stream thumbnail failed", zap.String("attachment_id", id), zap.Error(err))
	}
}

// contentDisposition quotes filename, falling back to RFC 2231 encoding for
// names that need it.
func contentDisposition(disposition, filename string) string {
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": filename}); v != "" {
		return v
	}
	return disposition
}
