package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/marinerstack/mariner-guard/internal/config"
	"github.com/marinerstack/mariner-guard/internal/geo"
	"github.com/marinerstack/mariner-guard/internal/models"
)

// Tier TCPA cutoffs in minutes. Fixed design constants, not configurable.
const (
	dangerTCPAMinutes  = 15
	cautionTCPAMinutes = 20
)

// Engine evaluates collision risk for all tracked targets against the own
// vessel. It owns the announcement cooldown table; no other state is kept
// between scans.
type Engine struct {
	logger    *slog.Logger
	cfg       config.CollisionConfig
	cooldowns *cooldownTable
	now       func() time.Time
}

// NewEngine constructs a collision risk engine.
func NewEngine(cfg config.CollisionConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:    logger,
		cfg:       cfg,
		cooldowns: newCooldownTable(cfg.AnnounceCooldown),
		now:       time.Now,
	}
}

// Scan computes a prioritized risk assessment for every target within range.
// A missing own position yields an empty result: relative geometry cannot be
// computed, and missing data never raises an alarm.
func (e *Engine) Scan(own models.OwnVessel, targets []models.Target) []models.RiskAssessment {
	if own.Position == nil {
		e.logger.Debug("collision scan skipped: no own position")
		return nil
	}

	assessments := make([]models.RiskAssessment, 0, len(targets))
	for _, target := range targets {
		if target.Position == nil || !target.Position.Valid() {
			e.logger.Debug("skipping target with malformed position", slog.String("target", target.ID))
			continue
		}

		rangeNM := geo.DistanceNM(*own.Position, *target.Position)
		if rangeNM > e.cfg.MaxRangeNM {
			continue
		}

		bearing := geo.Bearing(*own.Position, *target.Position)
		relBearing := geo.RelativeBearing(bearing, own.CourseDeg)

		approach := geo.ClosestApproach(
			*own.Position, own.SpeedKts, own.CourseDeg,
			*target.Position, target.SpeedKts, target.CourseDeg,
		)

		assessments = append(assessments, models.RiskAssessment{
			TargetID:        target.ID,
			TargetName:      target.Name,
			RangeNM:         rangeNM,
			BearingDeg:      bearing,
			RelativeBearing: relBearing,
			CPANM:           approach.CPANM,
			TCPAMinutes:     approach.TCPAMinutes,
			Tier:            e.classifyTier(approach),
			Situation:       classifySituation(relBearing, own.SpeedKts, target.SpeedKts),
		})
	}

	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].Tier.Rank() != assessments[j].Tier.Rank() {
			return assessments[i].Tier.Rank() < assessments[j].Tier.Rank()
		}
		return assessments[i].CPANM < assessments[j].CPANM
	})

	return assessments
}

// CheckRisks runs a scan and produces alerts for danger/caution targets whose
// announcement cooldown has elapsed. Targets still in cooldown remain in the
// assessment list but emit nothing.
func (e *Engine) CheckRisks(own models.OwnVessel, targets []models.Target) ([]models.RiskAssessment, []models.Alert) {
	assessments := e.Scan(own, targets)
	now := e.now()
	e.cooldowns.Sweep(now)

	var alerts []models.Alert
	for _, a := range assessments {
		if a.Tier != models.TierDanger && a.Tier != models.TierCaution {
			continue
		}
		if !e.cooldowns.Allow(a.TargetID, now) {
			e.logger.Debug("alert suppressed by cooldown", slog.String("target", a.TargetID))
			continue
		}

		severity := models.SeverityWarn
		if a.Tier == models.TierDanger {
			severity = models.SeverityAlarm
		}
		phrase, action := situationText(a.Situation)

		alerts = append(alerts, models.Alert{
			TargetID:    a.TargetID,
			TargetName:  a.TargetName,
			Severity:    severity,
			Tier:        a.Tier,
			Situation:   a.Situation,
			CPANM:       a.CPANM,
			TCPAMinutes: a.TCPAMinutes,
			RangeNM:     a.RangeNM,
			BearingDeg:  a.BearingDeg,
			Message:     alertMessage(a, phrase),
			Action:      action,
		})
	}

	return assessments, alerts
}

// CooldownEntries reports the current cooldown table size.
func (e *Engine) CooldownEntries() int {
	return e.cooldowns.Len()
}

func (e *Engine) classifyTier(a geo.Approach) models.RiskTier {
	// A threat that never converges, or converges beyond the actionable
	// horizon, is not materializing soon enough to act on.
	if !a.Converging {
		return models.TierSafe
	}
	if e.cfg.MaxTCPAMinutes > 0 && a.TCPAMinutes > e.cfg.MaxTCPAMinutes {
		return models.TierSafe
	}

	switch {
	case a.CPANM < e.cfg.DangerCPA && a.TCPAMinutes < dangerTCPAMinutes:
		return models.TierDanger
	case a.CPANM < e.cfg.CautionCPA && a.TCPAMinutes < cautionTCPAMinutes:
		return models.TierCaution
	case a.CPANM < e.cfg.WatchCPA:
		return models.TierWatch
	default:
		return models.TierSafe
	}
}
