package telemetry

import (
	"context"
	"log/slog"
	"time"
)

// Poll delivers own-vessel position updates on the returned channel at the
// given interval until ctx is cancelled. Fixes without a position are skipped
// (missing data is recoverable, never alarm-worthy). A slow consumer drops
// updates rather than queueing them; the evaluator only ever wants the
// freshest fix.
func Poll(ctx context.Context, provider Provider, interval time.Duration, logger *slog.Logger) <-chan PositionUpdate {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	updates := make(chan PositionUpdate, 1)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			own, err := provider.GetOwnVessel(ctx)
			if err != nil {
				logger.Debug("telemetry poll failed", slog.Any("error", err))
				continue
			}
			if own.Position == nil {
				logger.Debug("telemetry poll: no position fix")
				continue
			}

			update := PositionUpdate{
				Position:  *own.Position,
				SpeedKts:  own.SpeedKts,
				CourseDeg: own.CourseDeg,
				Time:      time.Now().UTC(),
			}

			select {
			case updates <- update:
			default:
				// Consumer busy; drop in favour of the next fix.
			}
		}
	}()

	return updates
}
