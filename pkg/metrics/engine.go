package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records reconciliation engine activity.
type EngineMetrics struct {
	eventsRecorded *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	driftDetected  prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	eventsRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_events_recorded_total",
		Help: "Committed stock events by kind.",
	}, []string{"kind"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_events_rejected_total",
		Help: "Rejected stock events by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_event_duration_seconds",
		Help:    "Duration of engine record operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	driftDetected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_drift_detected_total",
		Help: "Snapshots found out of sync with the ledger replay.",
	})
	reg.MustRegister(eventsRecorded, rejections, duration, driftDetected)
	return &EngineMetrics{
		eventsRecorded: eventsRecorded,
		rejections:     rejections,
		duration:       duration,
		driftDetected:  driftDetected,
	}
}

// IncRecorded increments the committed event counter for the given kind.
func (m *EngineMetrics) IncRecorded(kind string) {
	if m == nil || m.eventsRecorded == nil {
		return
	}
	m.eventsRecorded.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncRejected increments the rejection counter for the given reason.
func (m *EngineMetrics) IncRejected(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveDuration records how long the named engine operation took.
func (m *EngineMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncDrift increments the drift counter.
func (m *EngineMetrics) IncDrift() {
	if m == nil || m.driftDetected == nil {
		return
	}
	m.driftDetected.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
