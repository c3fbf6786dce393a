package http

import "github.com/nekogravitycat/lesson-booking-backend/internal/attachment"

type AttachmentResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Size         int64   `json:"size"`
	ContentType  string  `json:"content_type"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

func NewAttachmentResponse(a *attachment.Attachment) AttachmentResponse {
	var thumb *string
	if a.ThumbnailPath != nil {
		t := attachment.ThumbnailURL(a.ID)
		thumb = &t
	}
	return AttachmentResponse{
		ID:           a.ID,
		Name:         a.Filename,
		Size:         a.Size,
		ContentType:  a.ContentType,
		URL:          attachment.URL(a.ID),
		ThumbnailURL: thumb,
	}
}
