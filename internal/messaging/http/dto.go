package http

import (
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/messaging"
)

type ListThreadsRequest struct {
	Query string `form:"q"`
}

type ThreadURIRequest struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

type SendMessageRequest struct {
	Text          string   `json:"text"`
	AttachmentIDs []string `json:"attachment_ids" binding:"omitempty,max=10,dive,uuid"`
}

type ParticipantResponse struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Online bool   `json:"online"`
	Status string `json:"status"`
}

type LastMessageResponse struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	SenderID  int64     `json:"sender_id"`
}

type ThreadResponse struct {
	ID          int64               `json:"id"`
	Participant ParticipantResponse `json:"participant"`
	LastMessage LastMessageResponse `json:"last_message"`
	UnreadCount int                 `json:"unread_count"`
	BookingID   string              `json:"booking_id,omitempty"`
}

func NewThreadResponse(t messaging.Thread) ThreadResponse {
	return ThreadResponse{
		ID: t.ID,
		Participant: ParticipantResponse{
			Name:   t.Participant.Name,
			Role:   t.Participant.Role,
			Online: t.Participant.Online,
			Status: t.Participant.Status,
		},
		LastMessage: LastMessageResponse{
			Text:      t.LastMessage.Text,
			Timestamp: t.LastMessage.Timestamp,
			Read:      t.LastMessage.Read,
			SenderID:  t.LastMessage.SenderID,
		},
		UnreadCount: t.UnreadCount,
		BookingID:   t.BookingID,
	}
}

type AttachmentResponse struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type MessageResponse struct {
	ID          int64                `json:"id"`
	ThreadID    int64                `json:"thread_id"`
	SenderID    int64                `json:"sender_id"`
	SenderName  string               `json:"sender_name"`
	Text        string               `json:"text"`
	Timestamp   time.Time            `json:"timestamp"`
	Status      string               `json:"status"`
	Attachments []AttachmentResponse `json:"attachments"`
}

func NewMessageResponse(m messaging.Message) MessageResponse {
	atts := make([]AttachmentResponse, len(m.Attachments))
	for i, a := range m.Attachments {
		atts[i] = AttachmentResponse{
			ID:           a.ID,
			Name:         a.Name,
			Size:         a.Size,
			ContentType:  a.ContentType,
			URL:          a.URL,
			ThumbnailURL: a.ThumbnailURL,
		}
	}
	return MessageResponse{
		ID:          m.ID,
		ThreadID:    m.ThreadID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		Text:        m.Text,
		Timestamp:   m.Timestamp,
		Status:      string(m.Status),
		Attachments: atts,
	}
}

type ConversationResponse struct {
	ActiveThreadID int64             `json:"active_thread_id,omitempty"`
	Loading        bool              `json:"loading"`
	Messages       []MessageResponse `json:"messages"`
}

func NewConversationResponse(s messaging.Snapshot) ConversationResponse {
	msgs := make([]MessageResponse, len(s.Messages))
	for i, m := range s.Messages {
		msgs[i] = NewMessageResponse(m)
	}
	return ConversationResponse{
		ActiveThreadID: s.ActiveThreadID,
		Loading:        s.Loading,
		Messages:       msgs,
	}
}
