// Package scheduler runs one-shot delayed callbacks that belong to a single
// owner (a client session). Stopping the scheduler cancels every pending
// callback and waits for a callback that is already running to return, so
// once Stop returns no callback will touch the owner's state again.
package scheduler

import (
	"sync"
	"time"
)

type Scheduler struct {
	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	nextID  uint64
	stopped bool

	// runMu serializes callbacks with Stop. Lock order: runMu, then any
	// owner lock taken by the callback, then mu.
	runMu sync.Mutex
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[uint64]*time.Timer)}
}

// After schedules fn to run once after d. The returned function cancels the
// callback if it has not started yet. Scheduling on a stopped scheduler is a no-op.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return func() {}
	}

	s.nextID++
	id := s.nextID
	s.timers[id] = time.AfterFunc(d, func() { s.fire(id, fn) })

	return func() { s.cancel(id) }
}

func (s *Scheduler) fire(id uint64, fn func()) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	_, pending := s.timers[id]
	delete(s.timers, id)
	live := pending && !s.stopped
	s.mu.Unlock()

	if live {
		fn()
	}
}

func (s *Scheduler) cancel(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports how many callbacks are scheduled and not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all pending callbacks. It must not be called from inside a callback.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	// Wait for an in-flight callback.
	s.runMu.Lock()
	s.runMu.Unlock()
}
