// Package session keeps the per-client view state of the API. Every session
// owns its controllers and the scheduler their delayed transitions run on;
// closing a session stops the scheduler before the controllers are closed.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/booking"
	"github.com/nekogravitycat/lesson-booking-backend/internal/messaging"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
	"github.com/nekogravitycat/lesson-booking-backend/internal/search"
)

var ErrNotFound = apperror.New(http.StatusUnauthorized, "session not found or expired")

// Controllers are the views a session owns.
type Controllers struct {
	Booking   *booking.Flow
	Search    *search.View
	Messaging *messaging.View
}

// Factory builds the controllers of a new session on its scheduler.
type Factory func(id string, sched *scheduler.Scheduler) Controllers

type Session struct {
	Controllers

	ID        string
	CreatedAt time.Time

	sched    *scheduler.Scheduler
	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// close cancels pending transitions, waits for a running one, then closes
// the controllers so late callbacks find them gone.
func (s *Session) close() {
	s.sched.Stop()
	if s.Booking != nil {
		s.Booking.Close()
	}
	if s.Search != nil {
		s.Search.Close()
	}
	if s.Messaging != nil {
		s.Messaging.Close()
	}
}
