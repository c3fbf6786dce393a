package catalog

import "time"

// Lesson modes an instructor can offer.
const (
	ModeOnsite = "onsite"
	ModeOnline = "online"
	ModeBoth   = "both"
)

type Review struct {
	Comment      string `toml:"comment"`
	ReviewerName string `toml:"reviewer_name"`
}

// Instructor is one entry of the searchable instructor list.
type Instructor struct {
	ID           int64    `toml:"id"`
	Name         string   `toml:"name"`
	Avatar       string   `toml:"avatar"`
	Specialties  []string `toml:"specialties"`
	Rating       float64  `toml:"rating"`
	ReviewCount  int      `toml:"review_count"`
	HourlyRate   int      `toml:"hourly_rate"`
	LessonModes  []string `toml:"lesson_modes"`
	AgeGroups    []string `toml:"age_groups"`
	IsAvailable  bool     `toml:"is_available"`
	Location     string   `toml:"location"`
	Bio          string   `toml:"bio"`
	RecentReview Review   `toml:"recent_review"`
}

// Slot is a bookable time on one date of the availability table.
type Slot struct {
	Time  string `toml:"time"` // HH:MM
	Price int    `toml:"price"`
	Open  bool   `toml:"open"`
}

type Day struct {
	Date  string `toml:"date"` // YYYY-MM-DD
	Slots []Slot `toml:"slots"`
}

type Participant struct {
	Name   string `toml:"name"`
	Role   string `toml:"role"`
	Online bool   `toml:"online"`
	Status string `toml:"status"`
}

type AttachmentSeed struct {
	Name        string `toml:"name"`
	Size        int64  `toml:"size"`
	ContentType string `toml:"content_type"`
	URL         string `toml:"url"`
}

type MessageSeed struct {
	ID          int64            `toml:"id"`
	SenderID    int64            `toml:"sender_id"`
	SenderName  string           `toml:"sender_name"`
	Text        string           `toml:"text"`
	Timestamp   time.Time        `toml:"timestamp"`
	Status      string           `toml:"status"`
	Attachments []AttachmentSeed `toml:"attachments"`
}

type LastMessageSeed struct {
	Text      string    `toml:"text"`
	Timestamp time.Time `toml:"timestamp"`
	Read      bool      `toml:"read"`
	SenderID  int64     `toml:"sender_id"`
}

// ThreadSeed is a conversation with its sample messages.
type ThreadSeed struct {
	ID          int64           `toml:"id"`
	Participant Participant     `toml:"participant"`
	LastMessage LastMessageSeed `toml:"last_message"`
	UnreadCount int             `toml:"unread_count"`
	BookingID   string          `toml:"booking_id"`
	Messages    []MessageSeed   `toml:"messages"`
}

// Account is the signed-in side of every conversation.
type Account struct {
	ID   int64  `toml:"id"`
	Name string `toml:"name"`
}
