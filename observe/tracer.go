package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SessionMeta identifies one remote operation of a reconciliation
// session for telemetry purposes.
type SessionMeta struct {
	UserID string // user the operation runs for (may be empty for global operations)
	Op     string // operation name: fetch.records, fetch.total, mutation.create, ...
}

// SpanName returns the deterministic span name for this operation.
// Format: histsync.<op>
func (m SessionMeta) SpanName() string {
	return "histsync." + m.Op
}

// Tracer wraps OpenTelemetry tracing with session-scoped span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a remote operation.
	StartSpan(ctx context.Context, meta SessionMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with session metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta SessionMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("histsync.op", meta.Op),
		attribute.Bool("histsync.error", false), // Will be updated in EndSpan if error
	}
	if meta.UserID != "" {
		attrs = append(attrs, attribute.String("user.id", meta.UserID))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("histsync.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta SessionMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
