package leaderboard

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricQueriesTotal        = "leaderboard_queries_total"
	MetricQueryDuration       = "leaderboard_query_duration_seconds"
	MetricInvalidCursorTotal  = "leaderboard_invalid_cursor_total"
	MetricCursorResetTotal    = "leaderboard_cursor_reset_total"
	MetricSnapshotEntries     = "leaderboard_snapshot_entries"
	MetricSnapshotErrorsTotal = "leaderboard_snapshot_errors_total"
)

// Query modes used as the "mode" label.
const (
	ModeOffset   = "offset"
	ModeCursor   = "cursor"
	ModeSearch   = "search"
	ModeFacets   = "facets"
	ModeStanding = "standing"
)

// Metrics contains Prometheus metrics for leaderboard queries.
// All operations are thread-safe.
type Metrics struct {
	queriesTotal        *prometheus.CounterVec
	queryDuration       *prometheus.HistogramVec
	invalidCursorTotal  prometheus.Counter
	cursorResetTotal    prometheus.Counter
	snapshotEntries     prometheus.Gauge
	snapshotErrorsTotal prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricQueriesTotal,
				Help: "Total number of leaderboard queries by mode",
			},
			[]string{"mode"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricQueryDuration,
				Help:    "Histogram of leaderboard query evaluation time in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"mode"},
		),
		invalidCursorTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricInvalidCursorTotal,
			Help: "Total number of cursor requests rejected because the cursor could not be decoded",
		}),
		cursorResetTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCursorResetTotal,
			Help: "Total number of cursor requests restarted because the cursor entry left the snapshot",
		}),
		snapshotEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricSnapshotEntries,
			Help: "Number of entries in the most recently loaded snapshot",
		}),
		snapshotErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSnapshotErrorsTotal,
			Help: "Total number of failed snapshot loads",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveQuery counts a query and records its evaluation time.
func (m *Metrics) ObserveQuery(mode string, seconds float64) {
	m.queriesTotal.WithLabelValues(mode).Inc()
	m.queryDuration.WithLabelValues(mode).Observe(seconds)
}

// IncInvalidCursor increments the invalid cursor counter.
func (m *Metrics) IncInvalidCursor() {
	m.invalidCursorTotal.Inc()
}

// IncCursorReset increments the cursor reset counter.
func (m *Metrics) IncCursorReset() {
	m.cursorResetTotal.Inc()
}

// SetSnapshotEntries sets the snapshot size gauge.
func (m *Metrics) SetSnapshotEntries(count int) {
	m.snapshotEntries.Set(float64(count))
}

// IncSnapshotErrors increments the snapshot load error counter.
func (m *Metrics) IncSnapshotErrors() {
	m.snapshotErrorsTotal.Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.queriesTotal,
		m.queryDuration,
		m.invalidCursorTotal,
		m.cursorResetTotal,
		m.snapshotEntries,
		m.snapshotErrorsTotal,
	}
}
