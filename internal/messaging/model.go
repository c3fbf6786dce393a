package messaging

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/apperror"
)

var (
	ErrThreadNotFound   = apperror.New(http.StatusNotFound, "thread not found")
	ErrNoThreadSelected = apperror.New(http.StatusConflict, "no thread selected")
	ErrEmptyMessage     = apperror.New(http.StatusBadRequest, "message needs text or an attachment")
)

// Status is the delivery state of a message.
type Status string

const (
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

type Participant struct {
	Name   string
	Role   string
	Online bool
	Status string
}

type LastMessage struct {
	Text      string
	Timestamp time.Time
	Read      bool
	SenderID  int64
}

// Thread is a conversation between the account holder and one participant.
type Thread struct {
	ID          int64
	Participant Participant
	LastMessage LastMessage
	UnreadCount int
	BookingID   string
}

// Attachment describes an uploaded file referenced by a message.
type Attachment struct {
	ID           string
	Name         string
	Size         int64
	ContentType  string
	URL          string
	ThumbnailURL string
}

type Message struct {
	ID          int64
	ThreadID    int64
	SenderID    int64
	SenderName  string
	Text        string
	Timestamp   time.Time
	Status      Status
	Attachments []Attachment
}

// Snapshot is the message pane of the active thread.
type Snapshot struct {
	ActiveThreadID int64
	Loading        bool
	Messages       []Message
}
