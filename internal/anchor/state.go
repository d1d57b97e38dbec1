package anchor

import (
	"time"

	"github.com/marinerstack/mariner-guard/internal/models"
)

// State is the anchor lifecycle state. Raised is the resting state after a
// full cycle.
type State string

const (
	StateRaised   State = "raised"
	StateDropping State = "dropping"
	StateDropped  State = "dropped"
	StateRaising  State = "raising"
)

// ValidState reports whether the name is a known lifecycle state.
func ValidState(s State) bool {
	switch s {
	case StateRaised, StateDropping, StateDropped, StateRaising:
		return true
	}
	return false
}

// Record is the single durable anchor record per vessel. Mutated only through
// Watch lifecycle operations; persisted after every mutation.
type Record struct {
	State             State
	Position          *models.Position
	RadiusMeters      float64
	RodeLengthMeters  *float64
	AnchorDepthMeters *float64
	DroppedAt         *time.Time
	RaisedAt          *time.Time
}

// Monitoring reports whether the drag evaluator should be active.
func (r Record) Monitoring() bool {
	return r.State == StateDropping || r.State == StateDropped
}

// Clone returns a deep value copy so callers cannot mutate internal state
// through a returned snapshot.
func (r Record) Clone() Record {
	out := r
	if r.Position != nil {
		pos := *r.Position
		out.Position = &pos
	}
	out.RodeLengthMeters = cloneFloat(r.RodeLengthMeters)
	out.AnchorDepthMeters = cloneFloat(r.AnchorDepthMeters)
	out.DroppedAt = cloneTime(r.DroppedAt)
	out.RaisedAt = cloneTime(r.RaisedAt)
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// defaultAlarmRadiusMeters is the last-resort alarm radius when neither the
// persisted record nor the configuration carries a usable one.
const defaultAlarmRadiusMeters = 30.0

// DefaultRecord is the fallback when no durable state exists.
func DefaultRecord(radiusMeters float64) Record {
	if radiusMeters <= 0 {
		radiusMeters = defaultAlarmRadiusMeters
	}
	return Record{State: StateRaised, RadiusMeters: radiusMeters}
}

// Status is the lightweight control-surface view of the anchor watch.
type Status struct {
	State             State            `json:"state"`
	Position          *models.Position `json:"position"`
	RadiusMeters      float64          `json:"radius"`
	WatchRadiusMeters float64          `json:"watch_radius"`
	Monitoring        bool             `json:"monitoring"`
	Dragging          bool             `json:"dragging"`
	DistanceMeters    float64          `json:"distance"`
}
