package anchor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/marinerstack/mariner-guard/internal/geo"
	"github.com/marinerstack/mariner-guard/internal/metrics"
	"github.com/marinerstack/mariner-guard/internal/models"
	"github.com/marinerstack/mariner-guard/internal/notify"
	"github.com/marinerstack/mariner-guard/internal/telemetry"
)

// WatchRadiusFactor derives the pre-alarm watch radius from the alarm radius.
const WatchRadiusFactor = 0.8

// Alarm evaluates vessel position against the anchor position and raises
// edge-triggered drag/watch notifications. Re-evaluating an unchanged
// condition never re-emits a raise; the derived distance value is republished
// every tick regardless.
type Alarm struct {
	mu     sync.Mutex
	logger *slog.Logger
	watch  *Watch
	sink   notify.Sink

	dragActive   bool
	watchActive  bool
	modeAdvisory bool
	lastDistance float64
}

// NewAlarm constructs the drag alarm evaluator.
func NewAlarm(watch *Watch, sink notify.Sink, logger *slog.Logger) *Alarm {
	if logger == nil {
		logger = slog.Default()
	}
	return &Alarm{logger: logger, watch: watch, sink: sink}
}

// HandleUpdate processes one position fix. Called for every inbound update
// while the process runs; it is a no-op clearing pass when monitoring is off.
func (a *Alarm) HandleUpdate(ctx context.Context, update telemetry.PositionUpdate) {
	if !a.watch.IsMonitoring() {
		a.ClearAll(ctx)
		return
	}

	rec := a.watch.Snapshot()
	if rec.Position == nil {
		a.logger.Debug("drag evaluation skipped: no anchor position")
		return
	}

	distance := geo.DistanceMeters(*rec.Position, update.Position)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.applyDistanceLocked(ctx, distance, rec.RadiusMeters)
}

// applyDistanceLocked runs the threshold logic for one evaluated distance.
// The watch band starts at exactly 80% of the alarm radius; the drag alarm
// starts strictly beyond it.
func (a *Alarm) applyDistanceLocked(ctx context.Context, distance, maxRadius float64) {
	watchRadius := WatchRadiusFactor * maxRadius

	a.lastDistance = distance
	metrics.SetAnchorDistance(distance)

	// The derived radius value is republished on every tick, alarm or not.
	dist := distance
	if err := a.sink.Publish(ctx, models.Notification{
		Key:   models.KeyAnchorRadius,
		Value: &dist,
	}); err != nil {
		a.logger.Debug("radius publish failed", slog.Any("error", err))
	}

	switch {
	case distance > maxRadius:
		if !a.dragActive {
			a.publishLocked(ctx, models.Notification{
				Key:      models.KeyAnchorDrag,
				Severity: models.SeverityEmergency,
				Method:   []string{models.MethodVisual, models.MethodSound},
				Message: fmt.Sprintf("Anchor dragging: %.0f m from anchor, alarm radius %.0f m",
					distance, maxRadius),
				Silenceable: false,
			}, &a.dragActive, "drag")
		}
		a.clearLocked(ctx, models.KeyAnchorWatch, &a.watchActive, "watch")
	case distance >= watchRadius:
		if !a.watchActive {
			a.publishLocked(ctx, models.Notification{
				Key:      models.KeyAnchorWatch,
				Severity: models.SeverityWarn,
				Method:   []string{models.MethodVisual},
				Message: fmt.Sprintf("Approaching anchor alarm radius: %.0f m of %.0f m",
					distance, maxRadius),
				Silenceable: true,
			}, &a.watchActive, "watch")
		}
		a.clearLocked(ctx, models.KeyAnchorDrag, &a.dragActive, "drag")
	default:
		a.clearLocked(ctx, models.KeyAnchorDrag, &a.dragActive, "drag")
		a.clearLocked(ctx, models.KeyAnchorWatch, &a.watchActive, "watch")
	}
}

// HandleModeChange receives mode transitions driven elsewhere. Leaving the
// anchored mode with the hook still down does not stop monitoring; it raises
// an advisory and evaluation continues.
func (a *Alarm) HandleModeChange(ctx context.Context, mode string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if mode != ModeAnchored && a.watch.IsMonitoring() {
		if !a.modeAdvisory {
			a.publishLocked(ctx, models.Notification{
				Key:      models.KeyAnchorMode,
				Severity: models.SeverityWarn,
				Method:   []string{models.MethodVisual},
				Message: fmt.Sprintf("Mode changed to %q while the anchor is down; drag monitoring continues",
					mode),
				Silenceable: true,
			}, &a.modeAdvisory, "modeChange")
		}
		return
	}
	a.clearLocked(ctx, models.KeyAnchorMode, &a.modeAdvisory, "modeChange")
}

// Dragging reports whether the drag alarm is currently raised.
func (a *Alarm) Dragging() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dragActive
}

// Status assembles the control-surface view of the anchor watch.
func (a *Alarm) Status() Status {
	rec := a.watch.Snapshot()

	a.mu.Lock()
	defer a.mu.Unlock()

	return Status{
		State:             rec.State,
		Position:          rec.Position,
		RadiusMeters:      rec.RadiusMeters,
		WatchRadiusMeters: WatchRadiusFactor * rec.RadiusMeters,
		Monitoring:        rec.Monitoring(),
		Dragging:          a.dragActive,
		DistanceMeters:    a.lastDistance,
	}
}

// ClearAll positively clears every previously-raised notification. Called
// when the anchor comes up and on shutdown so no alarm is left dangling.
func (a *Alarm) ClearAll(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearLocked(ctx, models.KeyAnchorDrag, &a.dragActive, "drag")
	a.clearLocked(ctx, models.KeyAnchorWatch, &a.watchActive, "watch")
	a.clearLocked(ctx, models.KeyAnchorMode, &a.modeAdvisory, "modeChange")
}

// RunEvaluator consumes position updates until the context is cancelled or
// the channel closes, then clears all active notifications.
func (a *Alarm) RunEvaluator(ctx context.Context, updates <-chan telemetry.PositionUpdate) {
	defer func() {
		clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.ClearAll(clearCtx)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			a.HandleUpdate(ctx, update)
		}
	}
}

func (a *Alarm) publishLocked(ctx context.Context, n models.Notification, active *bool, kind string) {
	if err := a.sink.Publish(ctx, n); err != nil {
		a.logger.Warn("notification publish failed", slog.String("key", n.Key), slog.Any("error", err))
		return
	}
	*active = true
	metrics.SetAlarmActive(kind, true)
	metrics.IncNotification(n.Key)
	a.logger.Info("anchor notification raised", slog.String("key", n.Key), slog.String("severity", string(n.Severity)))
}

func (a *Alarm) clearLocked(ctx context.Context, key string, active *bool, kind string) {
	if !*active {
		return
	}
	if err := a.sink.Clear(ctx, key); err != nil {
		a.logger.Warn("notification clear failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	*active = false
	metrics.SetAlarmActive(kind, false)
	a.logger.Info("anchor notification cleared", slog.String("key", key))
}
