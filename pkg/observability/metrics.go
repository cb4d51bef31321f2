package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one inspection layer instance.
type Metrics struct {
	EventsCaptured     *prometheus.CounterVec
	EventsDropped      prometheus.Counter
	BreakpointTriggers *prometheus.CounterVec
	SnapshotRefreshes  prometheus.Counter
	WatchedEntities    prometheus.Gauge
	CaptureDegraded    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsCaptured: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simscope_log_events_captured_total",
				Help: "Log events appended to an entity stream",
			},
			[]string{"level"},
		),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simscope_log_events_dropped_total",
			Help: "Log events dropped because no entity was executing",
		}),
		BreakpointTriggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simscope_breakpoint_triggers_total",
				Help: "Breakpoints that fired",
			},
			[]string{"kind"},
		),
		SnapshotRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simscope_snapshot_refreshes_total",
			Help: "Entity snapshots rebuilt from fresh attributes",
		}),
		WatchedEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simscope_watched_entities",
			Help: "Entities currently held in the observation snapshot",
		}),
		CaptureDegraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simscope_capture_degraded",
			Help: "1 once log capture has failed and stopped recording",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.EventsCaptured,
			m.EventsDropped,
			m.BreakpointTriggers,
			m.SnapshotRefreshes,
			m.WatchedEntities,
			m.CaptureDegraded,
		)
	}
	return m
}

// Captured counts one appended event.
func (m *Metrics) Captured(level slog.Level) {
	if m == nil {
		return
	}
	m.EventsCaptured.WithLabelValues(level.String()).Inc()
}

// Dropped counts one event without owner.
func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

// Triggered counts one fired breakpoint.
func (m *Metrics) Triggered(kind string) {
	if m == nil {
		return
	}
	m.BreakpointTriggers.WithLabelValues(kind).Inc()
}

// Refreshed counts n rebuilt snapshots.
func (m *Metrics) Refreshed(n int) {
	if m == nil {
		return
	}
	m.SnapshotRefreshes.Add(float64(n))
}

// Watching sets the watched entity gauge.
func (m *Metrics) Watching(n int) {
	if m == nil {
		return
	}
	m.WatchedEntities.Set(float64(n))
}

// Degraded flags capture as degraded.
func (m *Metrics) Degraded() {
	if m == nil {
		return
	}
	m.CaptureDegraded.Set(1)
}
