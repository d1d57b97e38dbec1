package telemetry

import (
	"context"
	"time"

	"github.com/marinerstack/mariner-guard/internal/models"
)

// Provider supplies own-vessel kinematics and the resolved target list. The
// core treats these as fast, non-blocking calls; slow transports belong
// behind the adapter, not inside the engines.
type Provider interface {
	GetOwnVessel(ctx context.Context) (models.OwnVessel, error)
	GetTargets(ctx context.Context) ([]models.Target, error)
}

// PositionUpdate is one immutable own-vessel fix delivered to the anchor
// watch evaluator.
type PositionUpdate struct {
	Position  models.Position
	SpeedKts  float64
	CourseDeg float64
	Time      time.Time
}
