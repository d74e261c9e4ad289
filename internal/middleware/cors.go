package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string // Explicit origins; "*" allows any origin
	AllowedHeaders []string // Default: Content-Type, X-Request-ID
	MaxAge         int      // Preflight cache duration in seconds
}

// corsMethods is fixed: the API is read-only.
const corsMethods = "GET, OPTIONS"

// CORS returns a middleware that lets browser front-ends read the
// leaderboard from other origins. With no origins configured it is a
// pass-through. Requests from unlisted origins are served without CORS
// headers, so browsers block the response while server-to-server callers
// are unaffected.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowAny := false
	allowed := make(map[string]bool)
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			allowAny = true
		default:
			allowed[origin] = true
		}
	}

	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", RequestIDHeader}
	}
	allowedHeaders := strings.Join(headers, ", ")

	return func(next http.Handler) http.Handler {
		if !allowAny && len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || (!allowAny && !allowed[origin]) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if allowAny {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", allowedHeaders)
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
