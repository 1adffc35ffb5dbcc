package observe

import (
	"context"
	"time"
)

// Middleware wraps remote operations with observability (tracing,
// metrics, logging).
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes fn with tracing, metrics, and logging for the operation
// described by meta.
func (m *Middleware) Run(ctx context.Context, meta SessionMeta, fn func(context.Context) error) error {
	// Start span
	ctx, span := m.tracer.StartSpan(ctx, meta)

	// Record start time
	start := time.Now()

	// Execute the function
	err := fn(ctx)

	// Calculate duration
	duration := time.Since(start)

	// End span (records error status if err != nil)
	m.tracer.EndSpan(span, err)

	// Record metrics
	m.metrics.RecordOperation(ctx, meta, duration, err)

	// Log the operation
	opLogger := m.logger.WithSession(meta)
	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}

	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		opLogger.Error(ctx, "remote operation failed", fields...)
	} else {
		opLogger.Info(ctx, "remote operation completed", fields...)
	}

	return err
}

// Fallback records a serve-from-cache fallback for the operation
// described by meta.
func (m *Middleware) Fallback(ctx context.Context, meta SessionMeta) {
	m.metrics.RecordFallback(ctx, meta)
	m.logger.WithSession(meta).Debug(ctx, "serving cached snapshot")
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
