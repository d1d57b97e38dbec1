package engine

import (
	"math"

	"github.com/marinerstack/mariner-guard/internal/models"
)

// Right-of-way sector boundaries in degrees of relative bearing. Fixed design
// constants carried from the alarm rules, not COLREGs-derived tunables.
const (
	headOnLimitDeg    = 10
	sternSectorMinDeg = 112.5
)

// classifySituation buckets a target by its bearing relative to own course
// (signed, -180..180, positive to starboard) and the speed comparison.
//
// The overtaking pair is the only symmetric case: swapping the own/target
// speed roles swaps overtaking and being_overtaken. The crossing buckets are
// deliberately asymmetric; a target to starboard is the threat we give way to.
func classifySituation(relBearing, ownSpeedKts, targetSpeedKts float64) models.Situation {
	abs := math.Abs(relBearing)

	switch {
	case abs < headOnLimitDeg:
		return models.SituationHeadOn
	case abs > sternSectorMinDeg:
		if ownSpeedKts > targetSpeedKts {
			return models.SituationOvertaking
		}
		return models.SituationBeingOvertaken
	case relBearing > 0:
		return models.SituationCrossingStarboard
	case relBearing < 0:
		return models.SituationCrossingPort
	default:
		return models.SituationSafePassing
	}
}
