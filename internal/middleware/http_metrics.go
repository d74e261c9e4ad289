package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// staticRoutes are served as-is; every other path is mapped to a pattern.
var staticRoutes = map[string]bool{
	"/leaderboard":         true,
	"/leaderboard/cursor":  true,
	"/leaderboard/search":  true,
	"/leaderboard/filters": true,
	"/health":              true,
	"/ready":               true,
	"/metrics":             true,
}

// normalizePath converts paths with dynamic segments to route patterns to
// keep metric and span cardinality bounded. Unknown paths collapse to
// "other" since they can only produce 404s.
func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if staticRoutes[path] {
		return path
	}

	// /leaderboard/users/{userId}
	if rest, ok := strings.CutPrefix(path, "/leaderboard/users/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/leaderboard/users/{userId}"
	}

	return "other"
}

// HTTPMetrics is a middleware that records request duration, response size
// and request counts. Health endpoints are excluded.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(rw.statusCode),
				time.Since(start).Seconds(),
				int64(rw.size),
			)
		})
	}
}
