package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
	"go.uber.org/zap"
)

// Store holds the live sessions of the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	factory  Factory
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
	onChange func(active int)
}

type StoreOption func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithActiveGauge reports the number of live sessions after every change.
func WithActiveGauge(fn func(active int)) StoreOption {
	return func(s *Store) { s.onChange = fn }
}

func NewStore(factory Factory, ttl time.Duration, log *zap.Logger, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create() *Session {
	id := uuid.New().String()
	sched := scheduler.New()
	now := s.now()

	sess := &Session{
		Controllers: s.factory(id, sched),
		ID:          id,
		CreatedAt:   now,
		sched:       sched,
		lastSeen:    now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.log.Info("session opened", zap.String("session_id", id))
	s.report(n)
	return sess
}

// Get returns a live session and marks it as used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now()
	if s.expired(sess, now) {
		s.Close(id)
		return nil, ErrNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Close removes the session and discards its pending transitions. Closing
// an unknown session is a no-op. It must not be called from a transition callback.
func (s *Store) Close(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return
	}
	sess.close()
	s.log.Info("session closed", zap.String("session_id", id))
	s.report(n)
}

// Sweep closes every session idle for longer than the TTL and returns how many were closed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.Close(id)
	}
	return len(stale)
}

// Run sweeps expired sessions every interval until ctx is done, then
// closes all remaining sessions.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug("expired sessions swept", zap.Int("count", n))
			}
		}
	}
}

func (s *Store) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Close(id)
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.idleSince()) > s.ttl
}

func (s *Store) report(n int) {
	if s.onChange != nil {
		s.onChange(n)
	}
}
