package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lesson-booking-backend/internal/attachment"
	"github.com/nekogravitycat/lesson-booking-backend/internal/auth"
	"github.com/nekogravitycat/lesson-booking-backend/internal/messaging"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/response"
)

type Handler struct {
	attachments attachment.Service
}

func NewHandler(attachments attachment.Service) *Handler {
	return &Handler{attachments: attachments}
}

func viewOf(c *gin.Context) *messaging.View {
	return auth.GetSession(c).Messaging
}

func (h *Handler) ListThreads(c *gin.Context) {
	var req ListThreadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	threads := viewOf(c).Threads(req.Query)
	items := make([]ThreadResponse, len(threads))
	for i, t := range threads {
		items[i] = NewThreadResponse(t)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) SelectThread(c *gin.Context) {
	var uri ThreadURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, messaging.ErrThreadNotFound)
		return
	}

	s, err := viewOf(c).SelectThread(uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusAccepted, NewConversationResponse(s))
}

func (h *Handler) Conversation(c *gin.Context) {
	c.JSON(http.StatusOK, NewConversationResponse(viewOf(c).Snapshot()))
}

// SendMessage appends a message to the active thread. Attachments must have
// been uploaded in the same session.
func (h *Handler) SendMessage(c *gin.Context) {
	var body SendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	sessionID := auth.GetSessionID(c)
	atts := make([]messaging.Attachment, 0, len(body.AttachmentIDs))
	for _, id := range body.AttachmentIDs {
		a, err := h.attachments.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		if a.SessionID != sessionID {
			response.Error(c, attachment.ErrNotFound)
			return
		}
		atts = append(atts, toMessageAttachment(a))
	}

	msg, err := viewOf(c).SendMessage(body.Text, atts)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewMessageResponse(msg))
}

func toMessageAttachment(a *attachment.Attachment) messaging.Attachment {
	out := messaging.Attachment{
		ID:          a.ID,
		Name:        a.Filename,
		Size:        a.Size,
		ContentType: a.ContentType,
		URL:         attachment.URL(a.ID),
	}
	if a.ThumbnailPath != nil {
		out.ThumbnailURL = attachment.ThumbnailURL(a.ID)
	}
	return out
}
