package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "leaderboard"

// StartSpan creates a new span for a general operation.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartSpan(ctx, "leaderboard.query")
//	defer func() { endSpan(err) }()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, endFunc(span)
}

// StartSourceSpan creates a client span for loading a snapshot from an
// external store such as Postgres, Redis or object storage.
func StartSourceSpan(ctx context.Context, system, operation string) (context.Context, func(error)) {
	ctx, span := otel.Tracer(instrumentationName+"/snapshot").Start(ctx, "snapshot."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("snapshot.system", system),
			attribute.String("snapshot.operation", operation),
		),
	)
	return ctx, endFunc(span)
}

func endFunc(span trace.Span) func(error) {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
