package geo

import (
	"math"

	"github.com/marinerstack/mariner-guard/internal/models"
)

// relSpeedEpsilon is the squared relative speed (kts²) below which two tracks
// are treated as having identical velocity: they never converge.
const relSpeedEpsilon = 1e-9

// Approach is the closest-point-of-approach solution for one target.
type Approach struct {
	CPANM       float64
	TCPAMinutes float64
	// Converging is false when the tracks share a velocity or are already
	// past their closest point.
	Converging bool
}

// ClosestApproach solves the linear constant-velocity relative-motion model
// for own vessel and target. Positions are converted to a local tangent plane
// centred on own vessel (x east, y north, nautical miles); the flat-earth
// approximation holds at the short ranges this engine operates over.
func ClosestApproach(own models.Position, ownSpeedKts, ownCourseDeg float64,
	target models.Position, targetSpeedKts, targetCourseDeg float64) Approach {

	// Target offset from own vessel in the local plane.
	dx := (target.Longitude - own.Longitude) * NMPerLatitude * math.Cos(radians(own.Latitude))
	dy := (target.Latitude - own.Latitude) * NMPerLatitude

	// Velocity components in kts: x = speed·sin(course), y = speed·cos(course).
	ovx := ownSpeedKts * math.Sin(radians(ownCourseDeg))
	ovy := ownSpeedKts * math.Cos(radians(ownCourseDeg))
	tvx := targetSpeedKts * math.Sin(radians(targetCourseDeg))
	tvy := targetSpeedKts * math.Cos(radians(targetCourseDeg))

	rvx := tvx - ovx
	rvy := tvy - ovy

	rangeNow := math.Hypot(dx, dy)

	relSpeed2 := rvx*rvx + rvy*rvy
	if relSpeed2 < relSpeedEpsilon {
		return Approach{CPANM: rangeNow, TCPAMinutes: 0, Converging: false}
	}

	// Time (hours) minimizing |offset + t·relVelocity|.
	t := -(dx*rvx + dy*rvy) / relSpeed2
	if t < 0 {
		// Already past closest approach.
		return Approach{CPANM: rangeNow, TCPAMinutes: 0, Converging: false}
	}

	cpa := math.Hypot(dx+rvx*t, dy+rvy*t)
	return Approach{CPANM: cpa, TCPAMinutes: t * 60, Converging: true}
}
