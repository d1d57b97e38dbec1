package engine

import (
	"sync"
	"time"
)

// sweepFactor controls eviction: entries older than sweepFactor cooldown
// periods are dropped to bound the table.
const sweepFactor = 3

// cooldownTable tracks the last announcement time per target key. Owned by
// the engine instance; no global state.
type cooldownTable struct {
	mu        sync.Mutex
	period    time.Duration
	lastAlert map[string]time.Time
}

func newCooldownTable(period time.Duration) *cooldownTable {
	return &cooldownTable{
		period:    period,
		lastAlert: make(map[string]time.Time),
	}
}

// Allow reports whether the key may alert now, refreshing its timestamp when
// it may. A key must not re-alert until a full period has elapsed.
func (t *cooldownTable) Allow(key string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.lastAlert[key]; ok && now.Sub(last) < t.period {
		return false
	}
	t.lastAlert[key] = now
	return true
}

// Sweep evicts entries older than sweepFactor periods.
func (t *cooldownTable) Sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	horizon := time.Duration(sweepFactor) * t.period
	for key, last := range t.lastAlert {
		if now.Sub(last) >= horizon {
			delete(t.lastAlert, key)
		}
	}
}

// Len returns the number of tracked keys.
func (t *cooldownTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lastAlert)
}
