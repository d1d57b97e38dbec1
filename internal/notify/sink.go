package notify

import (
	"context"
	"log/slog"

	"github.com/marinerstack/mariner-guard/internal/models"
)

// Sink delivers notifications to the outside world. Clear publishes the
// explicit absence signal for a key; transports must not degrade it into a
// lower-severity alert.
type Sink interface {
	Publish(ctx context.Context, n models.Notification) error
	Clear(ctx context.Context, key string) error
}

// LogSink writes notifications to the structured log. It is the default sink
// when no hub is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink constructs a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Publish logs the notification at a level matching its severity.
func (s *LogSink) Publish(_ context.Context, n models.Notification) error {
	attrs := []any{
		slog.String("key", n.Key),
		slog.String("severity", string(n.Severity)),
		slog.String("message", n.Message),
	}
	if n.Value != nil {
		attrs = append(attrs, slog.Float64("value", *n.Value))
	}

	switch n.Severity {
	case models.SeverityEmergency, models.SeverityAlarm:
		s.logger.Error("notification", attrs...)
	case models.SeverityWarn:
		s.logger.Warn("notification", attrs...)
	default:
		s.logger.Info("notification", attrs...)
	}
	return nil
}

// Clear logs the absence signal.
func (s *LogSink) Clear(_ context.Context, key string) error {
	s.logger.Info("notification cleared", slog.String("key", key))
	return nil
}
