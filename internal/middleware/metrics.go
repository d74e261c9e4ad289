package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricHTTPRequestDuration  = "http_request_duration_seconds"
	MetricHTTPRequestsTotal    = "http_requests_total"
	MetricHTTPResponseSize     = "http_response_size_bytes"
	MetricRateLimitBlocked     = "rate_limit_blocked_total"
	MetricRateLimitStoreErrors = "rate_limit_store_errors_total"
)

// Metrics contains Prometheus metrics for the HTTP middleware chain.
// All operations are thread-safe.
type Metrics struct {
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsTotal    *prometheus.CounterVec
	httpResponseSize     *prometheus.HistogramVec
	rateLimitBlocked     *prometheus.CounterVec
	rateLimitStoreErrors prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPResponseSize,
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 4, 8), // 100 B to ~1.6 MB
			},
			[]string{"method", "path", "status"},
		),
		rateLimitBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRateLimitBlocked,
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
		rateLimitStoreErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRateLimitStoreErrors,
				Help: "Total number of rate limit store errors (fail-open events)",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveHTTPRequest records one completed request. path must already be
// normalized to a route pattern.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration float64, responseSize int64) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": status,
	}
	m.httpRequestDuration.With(labels).Observe(duration)
	m.httpRequestsTotal.With(labels).Inc()
	m.httpResponseSize.With(labels).Observe(float64(responseSize))
}

// IncRateLimitBlocked counts a rejected request.
func (m *Metrics) IncRateLimitBlocked(path string) {
	m.rateLimitBlocked.WithLabelValues(path).Inc()
}

// IncRateLimitStoreErrors counts a store failure that let a request through.
func (m *Metrics) IncRateLimitStoreErrors() {
	m.rateLimitStoreErrors.Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestDuration,
		m.httpRequestsTotal,
		m.httpResponseSize,
		m.rateLimitBlocked,
		m.rateLimitStoreErrors,
	}
}
