package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records remote-operation metrics for the reconciliation layer.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records a remote operation with duration and error status.
	RecordOperation(ctx context.Context, meta SessionMeta, duration time.Duration, err error)

	// RecordFallback records a serve-from-cache fallback: the live fetch
	// came back empty and the cached snapshot was used instead.
	RecordFallback(ctx context.Context, meta SessionMeta)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	opCount       metric.Int64Counter
	errorCount    metric.Int64Counter
	fallbackCount metric.Int64Counter
	durationHist  metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	opCount, err := meter.Int64Counter(
		"histsync.op.total",
		metric.WithDescription("Total number of remote operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"histsync.op.errors",
		metric.WithDescription("Total number of remote operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	fallbackCount, err := meter.Int64Counter(
		"histsync.cache.fallbacks",
		metric.WithDescription("Times the cached snapshot was served instead of live data"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"histsync.op.duration_ms",
		metric.WithDescription("Remote operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		opCount:       opCount,
		errorCount:    errorCount,
		fallbackCount: fallbackCount,
		durationHist:  durationHist,
	}, nil
}

// RecordOperation records metrics for one remote operation.
func (m *metricsImpl) RecordOperation(ctx context.Context, meta SessionMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(opAttributes(meta)...)

	// Always increment total counter
	m.opCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// RecordFallback records one serve-from-cache fallback.
func (m *metricsImpl) RecordFallback(ctx context.Context, meta SessionMeta) {
	m.fallbackCount.Add(ctx, 1, metric.WithAttributes(opAttributes(meta)...))
}

func opAttributes(meta SessionMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("histsync.op", meta.Op),
	}
	if meta.UserID != "" {
		attrs = append(attrs, attribute.String("user.id", meta.UserID))
	}
	return attrs
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordOperation(ctx context.Context, meta SessionMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordFallback(ctx context.Context, meta SessionMeta) {}
