package engine

import (
	"testing"
	"time"
)

func TestCooldownAllowRefreshes(t *testing.T) {
	table := newCooldownTable(5 * time.Minute)
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	if !table.Allow("a", now) {
		t.Fatal("first announcement must be allowed")
	}
	if table.Allow("a", now.Add(4*time.Minute)) {
		t.Fatal("re-announcement inside the period must be suppressed")
	}
	if !table.Allow("a", now.Add(5*time.Minute)) {
		t.Fatal("announcement after a full period must be allowed")
	}

	// The timestamp refreshed at +5m, so +9m is again inside the period.
	if table.Allow("a", now.Add(9*time.Minute)) {
		t.Fatal("refreshed entry must still suppress")
	}
}

func TestCooldownKeysAreIndependent(t *testing.T) {
	table := newCooldownTable(5 * time.Minute)
	now := time.Now()

	if !table.Allow("a", now) || !table.Allow("b", now) {
		t.Fatal("distinct keys must not share a cooldown")
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Len())
	}
}

func TestCooldownSweep(t *testing.T) {
	table := newCooldownTable(5 * time.Minute)
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	table.Allow("stale", now)
	table.Allow("fresh", now.Add(10*time.Minute))

	table.Sweep(now.Add(15 * time.Minute))

	if table.Len() != 1 {
		t.Fatalf("expected only fresh entry to survive, got %d", table.Len())
	}
	if table.Allow("fresh", now.Add(14*time.Minute)) {
		t.Fatal("surviving entry must keep suppressing")
	}
}
