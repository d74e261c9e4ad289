// Package middleware provides HTTP middleware components for the leaderboard
// API server: request IDs, structured request logging, Prometheus metrics,
// OpenTelemetry tracing, CORS and rate limiting.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// errorCodeKey is the context key for the error code slot.
type errorCodeKey struct{}

// errorCodeSlot is a mutable holder placed in the request context by Logging
// so handlers further down the chain can report their error code upward.
type errorCodeSlot struct {
	code string
}

// SetErrorCode records an error code for the request log line.
// It returns ctx unchanged when Logging is installed, or a derived context
// carrying the code otherwise.
func SetErrorCode(ctx context.Context, code string) context.Context {
	if slot, ok := ctx.Value(errorCodeKey{}).(*errorCodeSlot); ok {
		slot.code = code
		return ctx
	}
	return context.WithValue(ctx, errorCodeKey{}, &errorCodeSlot{code: code})
}

// GetErrorCode retrieves the error code from context. Returns empty string if not present.
func GetErrorCode(ctx context.Context) string {
	if slot, ok := ctx.Value(errorCodeKey{}).(*errorCodeSlot); ok {
		return slot.code
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture status code and response size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	wroteHeader bool
}

// WriteHeader captures the status code before writing it.
// Only the first call counts, matching net/http.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// NewLogger creates an slog.Logger based on the environment.
// In production (env == "production"), it returns a JSON handler.
// Otherwise, it returns a text handler for development.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

// Logging is a middleware that logs HTTP requests with structured fields:
// method, path, query, status, latency (ms), size, request ID and, for
// error responses, the error code set by the handler.
//
// Place a recovery middleware outside Logging if panics must still be logged.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slot := &errorCodeSlot{}
			r = r.WithContext(context.WithValue(r.Context(), errorCodeKey{}, slot))
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
				slog.Int("size", rw.size),
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", r.URL.RawQuery))
			}
			if requestID := GetRequestID(r.Context()); requestID != "" {
				attrs = append(attrs, slog.String("request_id", requestID))
			}
			if rw.statusCode >= 400 && slot.code != "" {
				attrs = append(attrs, slog.String("error_code", slot.code))
			}

			level := slog.LevelInfo
			switch {
			case rw.statusCode >= 500:
				level = slog.LevelError
			case rw.statusCode >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}
