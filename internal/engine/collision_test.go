package engine

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/marinerstack/mariner-guard/internal/config"
	"github.com/marinerstack/mariner-guard/internal/geo"
	"github.com/marinerstack/mariner-guard/internal/models"
)

func testCollisionConfig() config.CollisionConfig {
	return config.CollisionConfig{
		DangerCPA:        0.5,
		CautionCPA:       1.0,
		WatchCPA:         2.0,
		MaxTCPAMinutes:   60,
		MaxRangeNM:       10,
		AnnounceCooldown: 5 * time.Minute,
		ScanInterval:     30 * time.Second,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pos(lat, lon float64) *models.Position {
	return &models.Position{Latitude: lat, Longitude: lon}
}

// ownAt builds an own vessel heading north at 10 kts.
func ownAt(lat, lon float64) models.OwnVessel {
	return models.OwnVessel{Position: pos(lat, lon), SpeedKts: 10, CourseDeg: 0}
}

func TestScanNoOwnPosition(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	got := e.Scan(models.OwnVessel{}, []models.Target{
		{ID: "a", Position: pos(0.05, 0), SpeedKts: 10, CourseDeg: 180},
	})
	if got != nil {
		t.Fatalf("expected nil assessments without own position, got %d", len(got))
	}
}

func TestScanSkipsMalformedTargets(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	got := e.Scan(ownAt(0, 0), []models.Target{
		{ID: "no-position"},
		{ID: "bad-latitude", Position: pos(95, 0)},
		{ID: "good", Position: pos(0.05, 0), SpeedKts: 10, CourseDeg: 180},
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 assessment, got %d", len(got))
	}
	if got[0].TargetID != "good" {
		t.Fatalf("unexpected target %q", got[0].TargetID)
	}
}

func TestScanRangeFilter(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	got := e.Scan(ownAt(0, 0), []models.Target{
		// 30 NM north, well outside the 10 NM envelope.
		{ID: "far", Position: pos(0.5, 0), SpeedKts: 10, CourseDeg: 180},
	})
	if len(got) != 0 {
		t.Fatalf("expected distant target filtered, got %d assessments", len(got))
	}
}

func TestClassifyTier(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	tests := []struct {
		name     string
		approach geo.Approach
		want     models.RiskTier
	}{
		{"not converging", geo.Approach{CPANM: 0.1, TCPAMinutes: 0, Converging: false}, models.TierSafe},
		{"beyond horizon", geo.Approach{CPANM: 0.1, TCPAMinutes: 90, Converging: true}, models.TierSafe},
		{"close and soon", geo.Approach{CPANM: 0.3, TCPAMinutes: 10, Converging: true}, models.TierDanger},
		{"close but later", geo.Approach{CPANM: 0.3, TCPAMinutes: 16, Converging: true}, models.TierCaution},
		{"close but much later", geo.Approach{CPANM: 0.3, TCPAMinutes: 25, Converging: true}, models.TierWatch},
		{"moderate and soon", geo.Approach{CPANM: 0.8, TCPAMinutes: 10, Converging: true}, models.TierCaution},
		{"wide but converging", geo.Approach{CPANM: 1.5, TCPAMinutes: 5, Converging: true}, models.TierWatch},
		{"passes clear", geo.Approach{CPANM: 3.0, TCPAMinutes: 5, Converging: true}, models.TierSafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.classifyTier(tt.approach); got != tt.want {
				t.Fatalf("classifyTier(%+v) = %s, want %s", tt.approach, got, tt.want)
			}
		})
	}
}

func TestScanOrdersByTierThenCPA(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	targets := []models.Target{
		// Same course and speed as us: never converges.
		{ID: "benign", Position: pos(5.0/60, 0), SpeedKts: 10, CourseDeg: 0},
		// Two NM dead ahead on a reciprocal course: CPA 0 in 6 minutes.
		{ID: "threat", Position: pos(2.0/60, 0), SpeedKts: 10, CourseDeg: 180},
	}

	got := e.Scan(ownAt(0, 0), targets)
	if len(got) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(got))
	}
	if got[0].TargetID != "threat" || got[0].Tier != models.TierDanger {
		t.Fatalf("expected threat/danger first, got %s/%s", got[0].TargetID, got[0].Tier)
	}
	if got[1].TargetID != "benign" || got[1].Tier != models.TierSafe {
		t.Fatalf("expected benign/safe last, got %s/%s", got[1].TargetID, got[1].Tier)
	}
}

func TestCheckRisksSeverityAndAdvice(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	targets := []models.Target{
		// Head-on threat: danger.
		{ID: "mmsi:1", Name: "ALPHA", Position: pos(2.0/60, 0), SpeedKts: 10, CourseDeg: 180},
		// Reciprocal course offset 0.7 NM east: CPA 0.7 in 6 minutes, caution.
		{ID: "mmsi:2", Name: "BRAVO", Position: pos(2.0/60, 0.7/60), SpeedKts: 10, CourseDeg: 180},
	}

	_, alerts := e.CheckRisks(ownAt(0, 0), targets)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}

	byID := map[string]models.Alert{}
	for _, a := range alerts {
		byID[a.TargetID] = a
	}

	danger := byID["mmsi:1"]
	if danger.Severity != models.SeverityAlarm {
		t.Fatalf("danger alert severity = %s, want alarm", danger.Severity)
	}
	if danger.Situation != models.SituationHeadOn {
		t.Fatalf("danger situation = %s, want head_on", danger.Situation)
	}
	if danger.Action != "alter course to starboard" {
		t.Fatalf("unexpected action %q", danger.Action)
	}
	if !strings.Contains(danger.Message, "ALPHA") || !strings.Contains(danger.Message, "CPA") {
		t.Fatalf("unexpected message %q", danger.Message)
	}

	if byID["mmsi:2"].Severity != models.SeverityWarn {
		t.Fatalf("caution alert severity = %s, want warn", byID["mmsi:2"].Severity)
	}
}

func TestCheckRisksCooldown(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	targets := []models.Target{
		{ID: "mmsi:1", Position: pos(2.0/60, 0), SpeedKts: 10, CourseDeg: 180},
	}
	own := ownAt(0, 0)

	if _, alerts := e.CheckRisks(own, targets); len(alerts) != 1 {
		t.Fatalf("first check: expected 1 alert, got %d", len(alerts))
	}

	// One minute later the target is still dangerous but in cooldown.
	now = now.Add(time.Minute)
	if _, alerts := e.CheckRisks(own, targets); len(alerts) != 0 {
		t.Fatalf("within cooldown: expected 0 alerts, got %d", len(alerts))
	}

	// After the full cooldown period it may announce again.
	now = now.Add(5 * time.Minute)
	if _, alerts := e.CheckRisks(own, targets); len(alerts) != 1 {
		t.Fatalf("after cooldown: expected 1 alert, got %d", len(alerts))
	}
}

func TestCheckRisksSweepsStaleCooldowns(t *testing.T) {
	e := NewEngine(testCollisionConfig(), testLogger())

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	targets := []models.Target{
		{ID: "mmsi:1", Position: pos(2.0/60, 0), SpeedKts: 10, CourseDeg: 180},
	}
	e.CheckRisks(ownAt(0, 0), targets)
	if e.CooldownEntries() != 1 {
		t.Fatalf("expected 1 cooldown entry, got %d", e.CooldownEntries())
	}

	// Target gone; three cooldown periods later the entry is evicted.
	now = now.Add(16 * time.Minute)
	e.CheckRisks(ownAt(0, 0), nil)
	if e.CooldownEntries() != 0 {
		t.Fatalf("expected cooldown table swept, got %d entries", e.CooldownEntries())
	}
}
