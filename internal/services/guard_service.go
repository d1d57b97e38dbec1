package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marinerstack/mariner-guard/internal/anchor"
	"github.com/marinerstack/mariner-guard/internal/config"
	"github.com/marinerstack/mariner-guard/internal/engine"
	"github.com/marinerstack/mariner-guard/internal/metrics"
	"github.com/marinerstack/mariner-guard/internal/models"
	"github.com/marinerstack/mariner-guard/internal/notify"
	"github.com/marinerstack/mariner-guard/internal/telemetry"
	"github.com/marinerstack/mariner-guard/internal/utils"
)

// GuardService orchestrates the two safety subsystems: the periodic collision
// scan and the anchor watch, each driven by its own timeline. It also backs
// every control-surface operation.
type GuardService struct {
	logger    *slog.Logger
	provider  telemetry.Provider
	engine    *engine.Engine
	watch     *anchor.Watch
	alarm     *anchor.Alarm
	sink      notify.Sink
	latencies *utils.LatencyTracker

	scanInterval time.Duration
	pollInterval time.Duration

	// scanMu enforces at-most-one scan in flight; a tick that finds it held
	// is skipped, never queued.
	scanMu sync.Mutex
}

// NewGuardService constructs the service facade.
func NewGuardService(
	logger *slog.Logger,
	provider telemetry.Provider,
	riskEngine *engine.Engine,
	watch *anchor.Watch,
	alarm *anchor.Alarm,
	sink notify.Sink,
	collisionCfg config.CollisionConfig,
	pollInterval time.Duration,
) *GuardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardService{
		logger:       logger,
		provider:     provider,
		engine:       riskEngine,
		watch:        watch,
		alarm:        alarm,
		sink:         sink,
		latencies:    utils.NewLatencyTracker(1024),
		scanInterval: collisionCfg.ScanInterval,
		pollInterval: pollInterval,
	}
}

// Run drives both subsystems until the context is cancelled: the collision
// scan ticker and the position-update evaluator loop. All active anchor
// notifications are cleared before Run returns.
func (s *GuardService) Run(ctx context.Context) {
	updates := telemetry.Poll(ctx, s.provider, s.pollInterval, s.logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.alarm.RunEvaluator(ctx, updates)
	}()
	go func() {
		defer wg.Done()
		s.runScanLoop(ctx)
	}()
	wg.Wait()
}

func (s *GuardService) runScanLoop(ctx context.Context) {
	interval := s.scanInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.scan(ctx, false); err != nil {
				s.logger.Warn("scheduled collision scan failed", slog.Any("error", err))
			}
		}
	}
}

// CheckNow runs an on-demand collision check, waiting for any in-flight scan
// to finish first.
func (s *GuardService) CheckNow(ctx context.Context) ([]models.RiskAssessment, []models.Alert, error) {
	return s.scan(ctx, true)
}

// Assessments computes the current prioritized assessment list without
// consuming announcement cooldowns.
func (s *GuardService) Assessments(ctx context.Context) ([]models.RiskAssessment, error) {
	own, targets, err := s.fetchTelemetry(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Scan(own, targets), nil
}

func (s *GuardService) scan(ctx context.Context, wait bool) ([]models.RiskAssessment, []models.Alert, error) {
	if wait {
		s.scanMu.Lock()
	} else if !s.scanMu.TryLock() {
		s.logger.Debug("collision scan still in flight, skipping tick")
		metrics.ObserveScan(0, metrics.OutcomeSkipped)
		return nil, nil, nil
	}
	defer s.scanMu.Unlock()

	start := time.Now()
	own, targets, err := s.fetchTelemetry(ctx)
	if err != nil {
		metrics.ObserveScan(time.Since(start), metrics.OutcomeError)
		return nil, nil, err
	}

	assessments, alerts := s.engine.CheckRisks(own, targets)
	for _, alert := range alerts {
		s.publishAlert(ctx, alert)
	}

	duration := time.Since(start)
	s.latencies.Observe(duration)
	metrics.ObserveScan(duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("collision scan latency",
			slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	return assessments, alerts, nil
}

func (s *GuardService) fetchTelemetry(ctx context.Context) (models.OwnVessel, []models.Target, error) {
	own, err := s.provider.GetOwnVessel(ctx)
	if err != nil {
		return models.OwnVessel{}, nil, utils.NewAppError("collision.scan", "own vessel unavailable", err)
	}
	targets, err := s.provider.GetTargets(ctx)
	if err != nil {
		return models.OwnVessel{}, nil, utils.NewAppError("collision.scan", "target list unavailable", err)
	}
	return own, targets, nil
}

func (s *GuardService) publishAlert(ctx context.Context, alert models.Alert) {
	severity := models.SeverityWarn
	method := []string{models.MethodVisual}
	if alert.Severity == models.SeverityAlarm {
		severity = models.SeverityEmergency
		method = []string{models.MethodVisual, models.MethodSound}
	}

	notification := models.Notification{
		Key:         models.KeyCollisionBase + string(alert.Tier),
		Message:     alert.Message + ". Suggested action: " + alert.Action,
		Severity:    severity,
		Method:      method,
		Silenceable: true,
	}
	if err := s.sink.Publish(ctx, notification); err != nil {
		s.logger.Warn("collision alert publish failed",
			slog.String("target", alert.TargetID), slog.Any("error", err))
		return
	}
	metrics.IncAlert(string(alert.Severity))
	metrics.IncNotification(notification.Key)
}

// DropAnchor captures the current position and starts the anchor lifecycle.
// Fails when no position fix is available; nothing is mutated in that case.
func (s *GuardService) DropAnchor(ctx context.Context) (models.Position, error) {
	own, err := s.provider.GetOwnVessel(ctx)
	if err != nil {
		return models.Position{}, utils.NewAppError("anchor.drop", "telemetry unavailable", err)
	}
	if own.Position == nil {
		return models.Position{}, utils.NewUnavailableError("anchor.drop", "no position fix available")
	}
	if err := s.watch.Drop(ctx, *own.Position); err != nil {
		return models.Position{}, err
	}
	return *own.Position, nil
}

// ConfirmAnchorDropped confirms the dropped state, optionally refining the
// recorded anchor position.
func (s *GuardService) ConfirmAnchorDropped(pos *models.Position) error {
	if pos != nil && !pos.Valid() {
		return utils.NewValidationError("anchor.confirmDropped", "position out of range")
	}
	return s.watch.ConfirmDropped(pos)
}

// SetAnchorPosition overwrites the recorded anchor position while the anchor
// is down.
func (s *GuardService) SetAnchorPosition(pos models.Position) error {
	if !pos.Valid() {
		return utils.NewValidationError("anchor.setPosition", "position out of range")
	}
	return s.watch.SetPosition(pos)
}

// SetAnchorRadius validates and commits a new alarm radius in metres.
func (s *GuardService) SetAnchorRadius(radiusMeters float64) error {
	return s.watch.SetRadius(radiusMeters)
}

// RepositionAnchor refines the anchor position from rode length and depth and
// confirms the dropped state.
func (s *GuardService) RepositionAnchor(ctx context.Context, rodeMeters, depthMeters float64) error {
	own, err := s.provider.GetOwnVessel(ctx)
	if err != nil {
		return utils.NewAppError("anchor.reposition", "telemetry unavailable", err)
	}
	return s.watch.RepositionFromScope(rodeMeters, depthMeters, own)
}

// RaiseAnchor completes the raise cycle immediately; there is no mechanical
// feedback modeled. Every previously-raised anchor notification is cleared.
func (s *GuardService) RaiseAnchor(ctx context.Context) error {
	if err := s.watch.Raise(); err != nil {
		return err
	}
	if err := s.watch.ConfirmRaised(ctx); err != nil {
		return err
	}
	s.alarm.ClearAll(ctx)
	return nil
}

// AnchorStatus returns the lightweight anchor view.
func (s *GuardService) AnchorStatus() anchor.Status {
	return s.alarm.Status()
}

// AnchorSnapshot returns a deep copy of the full anchor record.
func (s *GuardService) AnchorSnapshot() anchor.Record {
	return s.watch.Snapshot()
}

// HandleModeChange forwards an externally-driven mode transition to the
// anchor watch.
func (s *GuardService) HandleModeChange(ctx context.Context, mode string) {
	s.alarm.HandleModeChange(ctx, mode)
}

// LatencyP95 returns the current p95 scan latency.
func (s *GuardService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}
