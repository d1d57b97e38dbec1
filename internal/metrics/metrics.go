package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed collision scans.
	OutcomeSuccess = "success"
	// OutcomeError labels scans that failed to fetch telemetry.
	OutcomeError = "error"
	// OutcomeSkipped labels ticks skipped because a scan was in flight.
	OutcomeSkipped = "skipped"
)

var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mariner_guard",
			Name:      "collision_scans_total",
			Help:      "Total number of collision scans, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	scanDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mariner_guard",
			Name:      "collision_scan_seconds",
			Help:      "Collision scan latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	collisionAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mariner_guard",
			Name:      "collision_alerts_total",
			Help:      "Collision alerts emitted, partitioned by severity.",
		},
		[]string{"severity"},
	)

	anchorDistanceMeters = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mariner_guard",
			Name:      "anchor_distance_meters",
			Help:      "Current distance from the recorded anchor position in metres.",
		},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mariner_guard",
			Name:      "notifications_published_total",
			Help:      "Notifications delivered to the sink, partitioned by key.",
		},
		[]string{"key"},
	)

	anchorAlarmActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mariner_guard",
			Name:      "anchor_alarm_active",
			Help:      "Whether an anchor notification is currently raised (1) per kind.",
		},
		[]string{"kind"},
	)
)

// Register attaches the guard-engine collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		scansTotal,
		scanDurationSeconds,
		collisionAlertsTotal,
		notificationsTotal,
		anchorDistanceMeters,
		anchorAlarmActive,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveScan records a scan duration and outcome label.
func ObserveScan(duration time.Duration, outcome string) {
	scansTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	if duration < 0 {
		duration = 0
	}
	scanDurationSeconds.Observe(duration.Seconds())
}

// IncAlert counts one emitted collision alert.
func IncAlert(severity string) {
	collisionAlertsTotal.WithLabelValues(severity).Inc()
}

// IncNotification counts one notification delivered to the sink.
func IncNotification(key string) {
	notificationsTotal.WithLabelValues(key).Inc()
}

// SetAnchorDistance publishes the derived anchor distance.
func SetAnchorDistance(meters float64) {
	anchorDistanceMeters.Set(meters)
}

// SetAlarmActive flags an anchor notification kind as raised or cleared.
func SetAlarmActive(kind string, active bool) {
	v := 0.0
	if active {
		v = 1.0
	}
	anchorAlarmActive.WithLabelValues(kind).Set(v)
}
