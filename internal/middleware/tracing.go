package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing creates HTTP middleware that wraps each request in an OpenTelemetry
// server span and propagates W3C trace context. Span names use the
// normalized route ("GET /leaderboard/users/{userId}") so user IDs never end
// up in span names. Place it after RequestID: the request ID is recorded as a
// span attribute.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestID := GetRequestID(r.Context()); requestID != "" {
				trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("http.request_id", requestID))
			}
			next.ServeHTTP(w, r)
		})
		return otelhttp.NewHandler(inner, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + normalizePath(r.URL.Path)
			}),
		)
	}
}

// GetTraceID extracts the trace ID from the request context.
// Returns empty string if no trace is active.
func GetTraceID(r *http.Request) string {
	spanCtx := trace.SpanContextFromContext(r.Context())
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}
