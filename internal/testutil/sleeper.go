// Package testutil provides deterministic stand-ins for time-dependent
// behaviour in tests.
package testutil

import (
	"sync"
	"time"
)

// RecordingSleeper records requested sleep durations instead of blocking.
// Inject its Sleep method where production code would call time.Sleep so
// settle waits can be asserted on without slowing tests down.
type RecordingSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
}

// Sleep records the requested duration and returns immediately.
func (s *RecordingSleeper) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
}

// Slept returns the recorded durations in order.
func (s *RecordingSleeper) Slept() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.slept))
	copy(out, s.slept)
	return out
}

// Total returns the sum of all recorded durations.
func (s *RecordingSleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.slept {
		total += d
	}
	return total
}
