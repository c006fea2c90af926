package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one command from start to end.
type Operation struct {
	Name      string
	StartTime time.Time
	Metrics   *Metrics
	span      trace.Span
}

// operationKey is the context key for Operation.
type operationKey struct{}

// StartOperation starts the span of a command and stores the operation in
// the returned context. Metrics are recorded if metrics is non-nil.
func StartOperation(ctx context.Context, name string, metrics *Metrics, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, "tpi "+name,
		trace.WithAttributes(append(attrs, attribute.String(AttrCommand, name))...),
	)
	op := &Operation{
		Name:      name,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFromContext retrieves the Operation from context, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// End ends the span and records the command metrics. kind classifies err
// and is ignored when err is nil.
func (op *Operation) End(ctx context.Context, err error, kind string) {
	duration := op.Duration()
	status := "ok"
	if err != nil {
		status = "error"
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, kind)
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	if op.Metrics != nil {
		op.Metrics.RecordCommand(ctx, op.Name, status, duration)
		if err != nil {
			op.Metrics.RecordError(ctx, kind, op.Name)
		}
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
