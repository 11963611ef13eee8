package domain

import (
	"sync"
	"time"
)

// RateLimitWindow caps executions per trailing window. Timestamps older
// than the window are pruned on every check.
type RateLimitWindow struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	timestamps []time.Time
	now        func() time.Time
}

// NewRateLimitWindow creates a window allowing maxEntries executions in
// the trailing window duration.
func NewRateLimitWindow(maxEntries int, window time.Duration) *RateLimitWindow {
	return &RateLimitWindow{
		window:     window,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Allow reports whether another execution may be recorded now.
func (w *RateLimitWindow) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(w.now())
	return len(w.timestamps) < w.maxEntries
}

// Record registers an execution attempt at the current time.
func (w *RateLimitWindow) Record() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	w.timestamps = append(w.timestamps, now)
}

// Count returns the number of executions inside the window.
func (w *RateLimitWindow) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(w.now())
	return len(w.timestamps)
}

// prune drops timestamps older than the window. Caller holds the lock.
func (w *RateLimitWindow) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept
}
