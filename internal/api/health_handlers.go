package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// HealthChecker defines the interface for components that can be health checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandlers provides liveness and readiness endpoints.
type HealthHandlers struct {
	checkers map[string]HealthChecker
	timeout  time.Duration
	now      func() time.Time
}

// HealthHandlersConfig configures the health check handlers. Checkers maps a
// dependency name (e.g. "snapshot", "cache") to its checker; nil entries are
// skipped.
type HealthHandlersConfig struct {
	Checkers map[string]HealthChecker
	Timeout  time.Duration // Default: 5s
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	checkers := make(map[string]HealthChecker, len(config.Checkers))
	for name, c := range config.Checkers {
		if c != nil {
			checkers[name] = c
		}
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandlers{
		checkers: checkers,
		timeout:  timeout,
		now:      time.Now,
	}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health (liveness probe).
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": "ok"},
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready (readiness probe). Returns 503 if any configured
// dependency fails its check.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checkers[name].HealthCheck(ctx); err != nil {
			checks[name] = "error"
			healthy = false
			slog.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
			continue
		}
		checks[name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, r.Context(), code, HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
