package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/onnwee/leaderboard/internal/leaderboard"
	"github.com/onnwee/leaderboard/internal/middleware"
)

// RouterConfig wires the HTTP surface. Service is required; everything else
// is optional and disabled when nil or zero.
type RouterConfig struct {
	Service *leaderboard.Service
	Logger  *slog.Logger

	// Checkers are reported by /ready.
	Checkers map[string]HealthChecker

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	HTTPMetrics    *middleware.Metrics

	// SearchLimiter guards /leaderboard/search when set.
	SearchLimiter     middleware.RateLimitStore
	SearchLimitConfig middleware.RateLimitConfig

	CORS           middleware.CORSConfig
	TracingEnabled bool
	ServiceName    string
}

// NewRouter builds the handler for the whole service. Middleware wraps the
// mux rather than being registered on it so that unmatched routes and CORS
// preflights are logged and measured too.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lb := NewLeaderboardHandlers(cfg.Service, logger)
	health := NewHealthHandlers(HealthHandlersConfig{Checkers: cfg.Checkers})

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Leaderboard
	r.HandleFunc("/leaderboard", lb.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/cursor", lb.GetLeaderboardCursor).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/filters", lb.GetFilterOptions).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/users/{userId}", lb.GetUserStanding).Methods(http.MethodGet)

	var search http.Handler = http.HandlerFunc(lb.SearchLeaderboard)
	if cfg.SearchLimiter != nil {
		search = middleware.RateLimiter(cfg.SearchLimiter, cfg.SearchLimitConfig, middleware.IPKeyFunc(), cfg.HTTPMetrics, logger)(search)
	}
	r.Handle("/leaderboard/search", search).Methods(http.MethodGet)

	// Probes
	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", health.Ready).Methods(http.MethodGet)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler).Methods(http.MethodGet)
	}

	// Applied innermost first; RequestID ends up outermost.
	var handler http.Handler = r
	handler = middleware.CORS(cfg.CORS)(handler)
	if cfg.HTTPMetrics != nil {
		handler = middleware.HTTPMetrics(cfg.HTTPMetrics)(handler)
	}
	handler = middleware.Logging(logger)(handler)
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "leaderboard-api"
		}
		handler = middleware.Tracing(name)(handler)
	}
	handler = middleware.RequestID(handler)
	return handler
}

func notFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, OPTIONS")
	WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Only GET is supported")
}
