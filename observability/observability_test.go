package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]string {
	attrs := map[string]string{}
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	return attrs
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	if cfg.Enabled() {
		t.Error("telemetry should be disabled without an endpoint")
	}
	cfg.ApplyDefaults()
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Endpoint: "localhost:4318", SampleRate: 0.5}, false},
		{"rate above one", Config{SampleRate: 1.5}, true},
		{"negative rate", Config{SampleRate: -0.1}, true},
		{"negative interval", Config{Interval: -time.Second}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSetupDisabled(t *testing.T) {
	prevProp := otel.GetTextMapPropagator()
	defer otel.SetTextMapPropagator(prevProp)

	shutdown, err := Setup(context.Background(), Config{}, "tpi", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected a shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected trace context propagation, got fields %v", fields)
	}
}

func TestSampler(t *testing.T) {
	if sampler(1.0) != sdktrace.AlwaysSample() {
		t.Error("rate 1.0 should always sample")
	}
	if sampler(0) != sdktrace.NeverSample() {
		t.Error("rate 0 should never sample")
	}
	if got := sampler(0.25).Description(); got == sdktrace.AlwaysSample().Description() {
		t.Errorf("rate 0.25 should use a ratio sampler, got %s", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("tpi", "1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["service.name"] != "tpi" {
		t.Errorf("expected service.name tpi, got %q", attrs["service.name"])
	}
	if attrs["service.version"] != "1.2.3" {
		t.Errorf("expected service.version 1.2.3, got %q", attrs["service.version"])
	}
}

func TestStartSpanAndSetAttribute(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "power status")
	SetSpanAttribute(ctx, AttrHost, "turingpi.local")
	SetSpanAttribute(ctx, "node", 2)
	SetSpanAttribute(ctx, "ignored", struct{}{})
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := spanAttrs(spans[0])
	if attrs[AttrHost] != "turingpi.local" {
		t.Errorf("unexpected host attribute %q", attrs[AttrHost])
	}
	if attrs["node"] != "2" {
		t.Errorf("unexpected node attribute %q", attrs["node"])
	}
	if _, ok := attrs["ignored"]; ok {
		t.Error("unsupported attribute types should be skipped")
	}
}

func TestNewMetrics(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordCommand(ctx, "power", "ok", 100*time.Millisecond)
	metrics.RecordError(ctx, "auth", "power")
}

func TestOperationSuccess(t *testing.T) {
	recorder := withRecorder(t)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, op := StartOperation(context.Background(), "info", metrics)
	if OperationFromContext(ctx) != op {
		t.Fatal("expected the operation in context")
	}
	op.End(ctx, nil, "")

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "tpi info" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	attrs := spanAttrs(spans[0])
	if attrs[AttrCommand] != "info" || attrs[AttrStatus] != "ok" {
		t.Errorf("unexpected attributes %v", attrs)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	if !names["tpi.command.total"] || !names["tpi.command.duration"] {
		t.Errorf("expected command metrics, got %v", names)
	}
	if names["tpi.error.total"] {
		t.Error("no error should be recorded for a successful command")
	}
}

func TestOperationFailure(t *testing.T) {
	recorder := withRecorder(t)

	ctx, op := StartOperation(context.Background(), "flash", nil)
	op.End(ctx, errors.New("connection refused"), "transport")

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Status().Code != codes.Error || span.Status().Description != "transport" {
		t.Errorf("unexpected status %+v", span.Status())
	}
	attrs := spanAttrs(span)
	if attrs[AttrErrorMessage] != "connection refused" {
		t.Errorf("unexpected error attribute %q", attrs[AttrErrorMessage])
	}
	if attrs[AttrStatus] != "error" {
		t.Errorf("unexpected status attribute %q", attrs[AttrStatus])
	}
}

func TestOperationFromContextMissing(t *testing.T) {
	if OperationFromContext(context.Background()) != nil {
		t.Error("expected nil without an operation")
	}
}
