package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// StaticSessionStore returns fixed headers and counts invalidations
type StaticSessionStore struct {
	Header http.Header

	mu          sync.Mutex
	invalidated int
}

// Headers returns a copy of the configured headers
func (s *StaticSessionStore) Headers(context.Context) http.Header {
	if s.Header == nil {
		return http.Header{}
	}
	return s.Header.Clone()
}

// Invalidate records the call
func (s *StaticSessionStore) Invalidate() {
	s.mu.Lock()
	s.invalidated++
	s.mu.Unlock()
}

// Invalidations returns how many times Invalidate was called
func (s *StaticSessionStore) Invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

// SleepRecorder replaces timed waits in tests and records every requested duration
type SleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

// Sleep records d and returns immediately unless ctx is already done
func (r *SleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

// Waits returns the recorded durations in call order
func (r *SleepRecorder) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}
