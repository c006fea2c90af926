// Package observability wires OpenTelemetry tracing and metrics for tpi.
//
// Telemetry is off unless an OTLP endpoint is configured. Setup installs
// the global tracer and meter providers, so spans and instruments created
// by httpclient and auth through otel.Tracer / otel.Meter are exported
// without those packages knowing about it.
//
//	shutdown, err := observability.Setup(ctx, cfg.Tracing, "tpi", version.GetShortVersion())
//	defer shutdown(context.Background())
//
//	ctx, op := observability.StartOperation(ctx, "power", metrics)
//	err := run(ctx)
//	op.End(ctx, err, "transport")
package observability
