package messaging

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
)

type Config struct {
	LoadDelay     time.Duration
	DeliveryDelay time.Duration
	// OnSent runs for every accepted message, with the view locked.
	OnSent func(Message)
	Now    func() time.Time
}

// Source provides the sample conversations a view starts from.
type Source interface {
	Account() catalog.Account
	Threads() []catalog.ThreadSeed
}

// View is the messaging pane of one session. Messages sent in the session
// are kept per thread, so reloading a thread shows them after its samples.
type View struct {
	mu    sync.Mutex
	cfg   Config
	sched *scheduler.Scheduler
	me    catalog.Account

	threads []Thread
	samples map[int64][]Message
	sent    map[int64][]Message

	active   int64
	loading  bool
	loadSeq  uint64
	messages []Message
	lastID   int64
	closed   bool
}

func NewView(src Source, sched *scheduler.Scheduler, cfg Config) *View {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	v := &View{
		cfg:     cfg,
		sched:   sched,
		me:      src.Account(),
		samples: make(map[int64][]Message),
		sent:    make(map[int64][]Message),
	}
	for _, seed := range src.Threads() {
		v.threads = append(v.threads, threadFromSeed(seed))
		msgs := make([]Message, 0, len(seed.Messages))
		for _, m := range seed.Messages {
			msgs = append(msgs, messageFromSeed(seed.ID, m))
		}
		v.samples[seed.ID] = msgs
	}
	return v
}

// Threads lists the threads whose participant name or last message text
// contains query, ignoring case. An empty query lists every thread.
func (v *View) Threads(query string) []Thread {
	v.mu.Lock()
	defer v.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Thread, 0, len(v.threads))
	for _, t := range v.threads {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Participant.Name), q) ||
			strings.Contains(strings.ToLower(t.LastMessage.Text), q) {
			out = append(out, t)
		}
	}
	return out
}

// SelectThread makes id the active thread and starts loading its messages.
// A load is dropped if another thread is selected before it finishes.
func (v *View) SelectThread(id int64) (Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := v.threadIndex(id)
	if idx < 0 {
		return v.snapshotLocked(), ErrThreadNotFound
	}

	v.threads[idx].UnreadCount = 0
	v.active = id
	v.loading = true
	v.messages = nil
	v.loadSeq++
	seq := v.loadSeq
	v.sched.After(v.cfg.LoadDelay, func() { v.finishLoad(id, seq) })

	return v.snapshotLocked(), nil
}

// SendMessage appends a message to the active thread with status sending.
// After the delivery delay that message alone becomes delivered.
func (v *View) SendMessage(text string, attachments []Attachment) (Message, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.active == 0 {
		return Message{}, ErrNoThreadSelected
	}
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return Message{}, ErrEmptyMessage
	}

	now := v.cfg.Now()
	msg := Message{
		ID:          v.nextID(now),
		ThreadID:    v.active,
		SenderID:    v.me.ID,
		SenderName:  v.me.Name,
		Text:        text,
		Timestamp:   now,
		Status:      StatusSending,
		Attachments: slices.Clone(attachments),
	}

	v.sent[msg.ThreadID] = append(v.sent[msg.ThreadID], msg)
	if !v.loading {
		v.messages = append(v.messages, msg)
	}

	summary := text
	if strings.TrimSpace(summary) == "" {
		summary = attachments[0].Name
	}
	idx := v.threadIndex(msg.ThreadID)
	v.threads[idx].LastMessage = LastMessage{Text: summary, Timestamp: now, Read: true, SenderID: v.me.ID}

	threadID, id := msg.ThreadID, msg.ID
	v.sched.After(v.cfg.DeliveryDelay, func() { v.deliver(threadID, id) })

	if v.cfg.OnSent != nil {
		v.cfg.OnSent(msg)
	}
	return cloneMessage(msg), nil
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *View) finishLoad(id int64, seq uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || seq != v.loadSeq || v.active != id {
		return
	}

	msgs := make([]Message, 0, len(v.samples[id])+len(v.sent[id]))
	msgs = append(msgs, v.samples[id]...)
	msgs = append(msgs, v.sent[id]...)
	v.messages = msgs
	v.loading = false
}

func (v *View) deliver(threadID, id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	markDelivered(v.sent[threadID], id)
	if v.active == threadID {
		markDelivered(v.messages, id)
	}
}

func markDelivered(msgs []Message, id int64) {
	for i := range msgs {
		if msgs[i].ID == id && msgs[i].Status == StatusSending {
			msgs[i].Status = StatusDelivered
			return
		}
	}
}

// nextID derives ids from the send time, bumped to stay strictly increasing.
func (v *View) nextID(now time.Time) int64 {
	id := max(now.UnixMilli(), v.lastID+1)
	v.lastID = id
	return id
}

func (v *View) threadIndex(id int64) int {
	return slices.IndexFunc(v.threads, func(t Thread) bool { return t.ID == id })
}

func (v *View) snapshotLocked() Snapshot {
	msgs := make([]Message, len(v.messages))
	for i, m := range v.messages {
		msgs[i] = cloneMessage(m)
	}
	return Snapshot{
		ActiveThreadID: v.active,
		Loading:        v.loading,
		Messages:       msgs,
	}
}

func cloneMessage(m Message) Message {
	m.Attachments = slices.Clone(m.Attachments)
	return m
}

func threadFromSeed(s catalog.ThreadSeed) Thread {
	return Thread{
		ID: s.ID,
		Participant: Participant{
			Name:   s.Participant.Name,
			Role:   s.Participant.Role,
			Online: s.Participant.Online,
			Status: s.Participant.Status,
		},
		LastMessage: LastMessage{
			Text:      s.LastMessage.Text,
			Timestamp: s.LastMessage.Timestamp,
			Read:      s.LastMessage.Read,
			SenderID:  s.LastMessage.SenderID,
		},
		UnreadCount: s.UnreadCount,
		BookingID:   s.BookingID,
	}
}

func messageFromSeed(threadID int64, s catalog.MessageSeed) Message {
	m := Message{
		ID:         s.ID,
		ThreadID:   threadID,
		SenderID:   s.SenderID,
		SenderName: s.SenderName,
		Text:       s.Text,
		Timestamp:  s.Timestamp,
		Status:     Status(s.Status),
	}
	for _, a := range s.Attachments {
		m.Attachments = append(m.Attachments, Attachment{
			Name:        a.Name,
			Size:        a.Size,
			ContentType: a.ContentType,
			URL:         a.URL,
		})
	}
	return m
}
