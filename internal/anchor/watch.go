package anchor

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/marinerstack/mariner-guard/internal/geo"
	"github.com/marinerstack/mariner-guard/internal/models"
	"github.com/marinerstack/mariner-guard/internal/utils"
)

// Operating modes exchanged with the external mode controller. The watch
// requests these but never owns mode state itself.
const (
	ModeAnchored = "anchored"
	ModeUnderway = "underway"
)

// minScopeMeters is the horizontal scope below which the anchor is taken to
// be directly under the vessel.
const minScopeMeters = 1.0

// ModeRequester asks the external mode controller for an operating-mode
// change.
type ModeRequester func(ctx context.Context, mode string)

// Watch owns the anchor lifecycle record. All mutating operations persist the
// full record synchronously before returning; a persistence failure degrades
// durability, not in-session correctness.
type Watch struct {
	mu          sync.Mutex
	logger      *slog.Logger
	store       Store
	rec         Record
	requestMode ModeRequester
}

// NewWatch loads the durable record and resumes monitoring if the anchor was
// down when the process last stopped.
func NewWatch(store Store, logger *slog.Logger) (*Watch, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rec, err := store.Load()
	if err != nil {
		return nil, err
	}
	if rec.Monitoring() {
		logger.Info("resuming anchor watch from persisted state",
			slog.String("state", string(rec.State)))
	}
	return &Watch{logger: logger, store: store, rec: rec}, nil
}

// SetModeRequester installs the outbound mode-change callback.
func (w *Watch) SetModeRequester(fn ModeRequester) {
	w.mu.Lock()
	w.requestMode = fn
	w.mu.Unlock()
}

// Drop records the anchor going down at the given position and transitions
// raised -> dropping. It requests the external "anchored" mode.
func (w *Watch) Drop(ctx context.Context, pos models.Position) error {
	w.mu.Lock()
	if w.rec.State != StateRaised {
		w.mu.Unlock()
		return utils.NewConflictError("anchor.drop", "anchor is already down")
	}
	now := time.Now().UTC()
	p := pos
	w.rec.State = StateDropping
	w.rec.Position = &p
	w.rec.DroppedAt = &now
	w.rec.RaisedAt = nil
	w.persistLocked()
	request := w.requestMode
	w.mu.Unlock()

	w.logger.Info("anchor dropped",
		slog.Float64("lat", pos.Latitude), slog.Float64("lon", pos.Longitude))
	if request != nil {
		request(ctx, ModeAnchored)
	}
	return nil
}

// ConfirmDropped transitions dropping -> dropped, optionally refining the
// recorded position, and begins active monitoring.
func (w *Watch) ConfirmDropped(pos *models.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.rec.State != StateDropping {
		return utils.NewConflictError("anchor.confirmDropped", "anchor is not dropping")
	}
	if pos != nil {
		p := *pos
		w.rec.Position = &p
	}
	w.rec.State = StateDropped
	w.persistLocked()
	return nil
}

// SetRadius updates the alarm radius in metres.
func (w *Watch) SetRadius(radiusMeters float64) error {
	if radiusMeters <= 0 {
		return utils.NewValidationError("anchor.setRadius", "radius must be a positive number of metres")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.rec.RadiusMeters = radiusMeters
	w.persistLocked()
	return nil
}

// RepositionFromScope estimates the true anchor position from rode length and
// anchor depth: the horizontal scope of a taut line is sqrt(L^2 - D^2), laid
// out from the vessel along its course over ground. The freshly anchored
// vessel is assumed to lie downwind of the anchor along its approach heading.
// Commits the estimate and transitions to dropped.
func (w *Watch) RepositionFromScope(rodeMeters, depthMeters float64, vessel models.OwnVessel) error {
	if rodeMeters <= 0 {
		return utils.NewValidationError("anchor.reposition", "rode length must be positive")
	}
	if depthMeters <= 0 {
		return utils.NewValidationError("anchor.reposition", "anchor depth must be positive")
	}
	if vessel.Position == nil {
		return utils.NewUnavailableError("anchor.reposition", "no position fix available")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.rec.Monitoring() {
		return utils.NewConflictError("anchor.reposition", "anchor is not down")
	}

	scope := math.Sqrt(math.Max(0, rodeMeters*rodeMeters-depthMeters*depthMeters))
	anchorPos := *vessel.Position
	if scope >= minScopeMeters {
		anchorPos = geo.Offset(*vessel.Position, vessel.CourseDeg, scope)
	}

	rode, depth := rodeMeters, depthMeters
	w.rec.Position = &anchorPos
	w.rec.RodeLengthMeters = &rode
	w.rec.AnchorDepthMeters = &depth
	w.rec.State = StateDropped
	w.persistLocked()

	w.logger.Info("anchor repositioned from scope",
		slog.Float64("scope_m", scope),
		slog.Float64("lat", anchorPos.Latitude), slog.Float64("lon", anchorPos.Longitude))
	return nil
}

// SetPosition updates the recorded anchor position without changing state.
func (w *Watch) SetPosition(pos models.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.rec.Monitoring() {
		return utils.NewConflictError("anchor.setPosition", "anchor is not down")
	}
	p := pos
	w.rec.Position = &p
	w.persistLocked()
	return nil
}

// Raise transitions dropped/dropping -> raising.
func (w *Watch) Raise() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.rec.Monitoring() {
		return utils.NewConflictError("anchor.raise", "anchor is not down")
	}
	w.rec.State = StateRaising
	w.persistLocked()
	return nil
}

// ConfirmRaised completes the cycle: clears position, rode length, and anchor
// depth, records the raise time, and requests the external mode back.
func (w *Watch) ConfirmRaised(ctx context.Context) error {
	w.mu.Lock()
	if w.rec.State != StateRaising {
		w.mu.Unlock()
		return utils.NewConflictError("anchor.confirmRaised", "anchor is not raising")
	}
	now := time.Now().UTC()
	w.rec.State = StateRaised
	w.rec.Position = nil
	w.rec.RodeLengthMeters = nil
	w.rec.AnchorDepthMeters = nil
	w.rec.RaisedAt = &now
	w.persistLocked()
	request := w.requestMode
	w.mu.Unlock()

	w.logger.Info("anchor raised")
	if request != nil {
		request(ctx, ModeUnderway)
	}
	return nil
}

// IsMonitoring reports whether the drag evaluator should run.
func (w *Watch) IsMonitoring() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Monitoring()
}

// Snapshot returns a deep value copy of the current record.
func (w *Watch) Snapshot() Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Clone()
}

// persistLocked writes the record through the store. Persistence failures are
// logged and the in-memory state keeps operating for this process lifetime.
func (w *Watch) persistLocked() {
	if err := w.store.Save(w.rec.Clone()); err != nil {
		w.logger.Warn("anchor state not persisted", slog.Any("error", err))
	}
}
