// Package replayguard tracks consumed (secret fingerprint, code, window)
// triples so a valid one-time code cannot be accepted twice inside its
// tolerated drift span. The Guard interface is injected into the verifier
// so the in-memory implementation can be swapped for a shared cache in a
// multi-instance deployment.
package replayguard

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultRetention keeps consumed triples comfortably past the widest
// tolerated window (2 * 30s either side). Longer retention only adds
// safety margin.
const DefaultRetention = 5 * time.Minute

// Guard admits each (fingerprint, code, window) triple at most once.
type Guard interface {
	// Admit returns true only when no prior entry exists for the triple.
	// Lookup and insert are a single atomic check-and-set.
	Admit(ctx context.Context, fingerprint, code string, window int64) (bool, error)

	// Sweep drops entries older than the retention period. Needed only
	// for bounded memory, never for correctness.
	Sweep(now time.Time)
}

// Memory is the in-process Guard. Safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	consumed  map[string]time.Time
	retention time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemory returns a Memory guard. A retention <= 0 selects
// DefaultRetention.
func NewMemory(retention time.Duration) *Memory {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Memory{
		consumed:  make(map[string]time.Time),
		retention: retention,
		now:       time.Now,
	}
}

// Admit implements Guard. It sweeps opportunistically so callers that never
// schedule Sweep still keep memory bounded.
func (m *Memory) Admit(_ context.Context, fingerprint, code string, window int64) (bool, error) {
	key := tripleKey(fingerprint, code, window)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(now)

	if _, exists := m.consumed[key]; exists {
		return false, nil
	}
	m.consumed[key] = now
	return true, nil
}

// Sweep implements Guard.
func (m *Memory) Sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSweep = time.Time{} // force
	m.sweepLocked(now)
}

// Len reports the number of retained triples. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.consumed)
}

// sweepLocked removes expired entries at most once per retention period so
// the opportunistic path stays cheap.
func (m *Memory) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < m.retention {
		return
	}
	m.lastSweep = now

	for key, consumedAt := range m.consumed {
		if now.Sub(consumedAt) > m.retention {
			delete(m.consumed, key)
		}
	}
}

func tripleKey(fingerprint, code string, window int64) string {
	var b strings.Builder
	b.WriteString(fingerprint)
	b.WriteByte(0)
	b.WriteString(code)
	b.WriteByte(0)
	b.WriteString(strconv.FormatInt(window, 10))
	return b.String()
}
