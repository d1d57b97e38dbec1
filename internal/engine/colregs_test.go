package engine

import (
	"testing"

	"github.com/marinerstack/mariner-guard/internal/models"
)

func TestClassifySituation(t *testing.T) {
	tests := []struct {
		name        string
		relBearing  float64
		ownSpeed    float64
		targetSpeed float64
		want        models.Situation
	}{
		{"dead ahead", 0, 10, 10, models.SituationHeadOn},
		{"just inside head-on to starboard", 9.9, 10, 10, models.SituationHeadOn},
		{"just inside head-on to port", -9.9, 10, 10, models.SituationHeadOn},
		{"on the head-on limit", 10, 10, 10, models.SituationCrossingStarboard},
		{"starboard beam", 90, 10, 10, models.SituationCrossingStarboard},
		{"port beam", -90, 10, 10, models.SituationCrossingPort},
		{"port quarter, faster than target", -150, 10, 4, models.SituationOvertaking},
		{"astern, slower than target", 170, 4, 10, models.SituationBeingOvertaken},
		{"astern, equal speed", 180, 10, 10, models.SituationBeingOvertaken},
		{"edge of stern sector", 112.5, 10, 10, models.SituationCrossingStarboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifySituation(tt.relBearing, tt.ownSpeed, tt.targetSpeed)
			if got != tt.want {
				t.Fatalf("classifySituation(%.1f, %.0f, %.0f) = %s, want %s",
					tt.relBearing, tt.ownSpeed, tt.targetSpeed, got, tt.want)
			}
		})
	}
}

func TestOvertakingRolesSwapWithSpeed(t *testing.T) {
	// The same stern-sector geometry flips bucket when the speed roles flip.
	if got := classifySituation(160, 12, 5); got != models.SituationOvertaking {
		t.Fatalf("faster own vessel: got %s, want overtaking", got)
	}
	if got := classifySituation(160, 5, 12); got != models.SituationBeingOvertaken {
		t.Fatalf("slower own vessel: got %s, want being_overtaken", got)
	}
}
