package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("newMetrics failed: %v", err)
	}
	return m, reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != name {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is not an int64 sum", name)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetrics_RecordOperation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := SessionMeta{UserID: "user-1", Op: "fetch.records"}

	m.RecordOperation(ctx, meta, 25*time.Millisecond, nil)
	m.RecordOperation(ctx, meta, 30*time.Millisecond, errors.New("remote unavailable"))

	if got := collectSum(t, reader, "histsync.op.total"); got != 2 {
		t.Errorf("op.total = %d, want 2", got)
	}
}

func TestMetrics_RecordOperation_Errors(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := SessionMeta{Op: "mutation.create"}

	m.RecordOperation(ctx, meta, time.Millisecond, nil)
	m.RecordOperation(ctx, meta, time.Millisecond, errors.New("boom"))
	m.RecordOperation(ctx, meta, time.Millisecond, errors.New("boom"))

	if got := collectSum(t, reader, "histsync.op.errors"); got != 2 {
		t.Errorf("op.errors = %d, want 2", got)
	}
}

func TestMetrics_RecordFallback(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFallback(ctx, SessionMeta{UserID: "user-1", Op: "fetch.records"})

	if got := collectSum(t, reader, "histsync.cache.fallbacks"); got != 1 {
		t.Errorf("cache.fallbacks = %d, want 1", got)
	}
}

func TestNoopMetrics(t *testing.T) {
	m := &noopMetrics{}
	ctx := context.Background()

	// Must not panic.
	m.RecordOperation(ctx, SessionMeta{Op: "fetch.records"}, time.Second, nil)
	m.RecordOperation(ctx, SessionMeta{}, 0, errors.New("boom"))
	m.RecordFallback(ctx, SessionMeta{})
}

// Verify implementations satisfy Metrics at compile time
var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = (*noopMetrics)(nil)
)
