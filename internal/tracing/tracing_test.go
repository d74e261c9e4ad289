package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"disabled is always valid", Config{Enabled: false, SamplingRate: 5}, nil},
		{"valid http", Config{Enabled: true, ServiceName: "svc", ExporterType: ExporterOTLPHTTP, SamplingRate: 0.5}, nil},
		{"valid grpc", Config{Enabled: true, ServiceName: "svc", ExporterType: ExporterOTLPGRPC, SamplingRate: 1}, nil},
		{"default exporter", Config{Enabled: true, ServiceName: "svc"}, nil},
		{"missing service name", Config{Enabled: true}, ErrMissingServiceName},
		{"sampling rate too high", Config{Enabled: true, ServiceName: "svc", SamplingRate: 1.1}, ErrInvalidSamplingRate},
		{"negative sampling rate", Config{Enabled: true, ServiceName: "svc", SamplingRate: -0.1}, ErrInvalidSamplingRate},
		{"unknown exporter", Config{Enabled: true, ServiceName: "svc", ExporterType: "zipkin"}, ErrUnsupportedExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.IsEnabled() {
		t.Error("disabled provider reports enabled")
	}
	if p.Tracer("x") == nil {
		t.Error("Tracer() returned nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	if _, err := NewProvider(Config{Enabled: true, ServiceName: "svc", SamplingRate: 2}); !errors.Is(err, ErrInvalidSamplingRate) {
		t.Errorf("NewProvider() error = %v, want ErrInvalidSamplingRate", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0.0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, endSpan := StartSpan(context.Background(), "leaderboard.offset", attribute.String("mode", "offset"))
	SetAttributes(ctx, attribute.Int("leaderboard.total", 42))
	endSpan(nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "leaderboard.offset" {
		t.Errorf("span name = %q", span.Name())
	}
	if span.Status().Code == codes.Error {
		t.Error("span without error should not have error status")
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, a := range span.Attributes() {
		attrs[a.Key] = a.Value
	}
	if attrs["mode"].AsString() != "offset" || attrs["leaderboard.total"].AsInt64() != 42 {
		t.Errorf("attributes = %v", span.Attributes())
	}
}

func TestStartSourceSpan_RecordsError(t *testing.T) {
	recorder := installRecorder(t)

	_, endSpan := StartSourceSpan(context.Background(), "postgresql", "query")
	endSpan(errors.New("connection reset"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "snapshot.query" {
		t.Errorf("span name = %q", span.Name())
	}
	if span.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", span.SpanKind())
	}
	if span.Status().Code != codes.Error || span.Status().Description != "connection reset" {
		t.Errorf("status = %+v", span.Status())
	}
	if len(span.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}

	found := false
	for _, a := range span.Attributes() {
		if a.Key == "snapshot.system" && a.Value.AsString() == "postgresql" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing snapshot.system attribute: %v", span.Attributes())
	}
}

func TestSetAttributes_NoSpan(t *testing.T) {
	// Must not panic without an active span.
	SetAttributes(context.Background(), attribute.Bool("ok", true))
}
