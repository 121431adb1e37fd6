// Package scheduler runs fire-once callbacks after a delay. Timers live in
// process memory only: a restart drops every pending action, and callbacks
// are expected to re-check their precondition at fire time because the
// world may have changed since they were scheduled.
package scheduler

import (
	"sync"
	"time"
)

type Scheduler struct {
	mu      sync.Mutex
	timers  map[int64]*time.Timer
	nextID  int64
	stopped bool
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[int64]*time.Timer)}
}

// Schedule fires fn once after delay. fn runs on its own goroutine and must
// capture only immutable identifiers, never live entity state.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	id := s.nextID
	s.nextID++

	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

// Pending reports how many timers have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all pending timers and rejects new ones. Callbacks already
// running are not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
