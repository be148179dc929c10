// Package lockout tracks failed verification attempts per principal and
// enforces a rolling lockout window. The Tracker interface is injected into
// the verifier so the in-memory implementation can be swapped for a shared
// store in a multi-instance deployment.
package lockout

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultMaxAttempts locks a principal after this many failures
	// inside one window.
	DefaultMaxAttempts = 5

	// DefaultWindow is both the rolling failure window and the lockout
	// duration once the threshold is hit.
	DefaultWindow = 15 * time.Minute
)

// Status describes a principal's current standing.
type Status struct {
	Locked     bool
	Failures   int
	RetryAfter time.Duration // remaining lockout, zero when not locked
}

// Tracker counts failures per principal key. Within one key all updates are
// serialized; the counter strictly increases until reset-on-success or
// window expiry.
type Tracker interface {
	// RecordFailure increments the failure count for the key's current
	// window, starting a fresh window at count 1 if the old one expired.
	// Returns the new count.
	RecordFailure(ctx context.Context, key string) (int, error)

	// Check reports whether the key is currently locked out.
	Check(ctx context.Context, key string) (Status, error)

	// RecordSuccess clears the key's entry entirely.
	RecordSuccess(ctx context.Context, key string) error

	// Sweep drops entries whose window has fully elapsed. Bounded-memory
	// concern only.
	Sweep(now time.Time)
}

type entry struct {
	failures    int
	windowStart time.Time
}

// Memory is the in-process Tracker. Safe for concurrent use.
type Memory struct {
	mu          sync.Mutex
	entries     map[string]*entry
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewMemory returns a Memory tracker. Non-positive arguments select the
// package defaults.
func NewMemory(maxAttempts int, window time.Duration) *Memory {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Memory{
		entries:     make(map[string]*entry),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// RecordFailure implements Tracker.
func (m *Memory) RecordFailure(_ context.Context, key string) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.Sub(e.windowStart) >= m.window {
		m.entries[key] = &entry{failures: 1, windowStart: now}
		return 1, nil
	}

	e.failures++
	return e.failures, nil
}

// Check implements Tracker.
func (m *Memory) Check(_ context.Context, key string) (Status, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return Status{}, nil
	}

	elapsed := now.Sub(e.windowStart)
	if elapsed >= m.window {
		delete(m.entries, key)
		return Status{}, nil
	}

	status := Status{Failures: e.failures}
	if e.failures >= m.maxAttempts {
		status.Locked = true
		status.RetryAfter = m.window - elapsed
	}
	return status, nil
}

// RecordSuccess implements Tracker.
func (m *Memory) RecordSuccess(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Sweep implements Tracker.
func (m *Memory) Sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if now.Sub(e.windowStart) >= m.window {
			delete(m.entries, key)
		}
	}
}

// Len reports the number of tracked keys. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
