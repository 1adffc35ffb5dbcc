package exporters

import (
	"context"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		exporter string
		wantErr  bool
	}{
		{"stdout", "stdout", false},
		{"none", "none", false},
		{"empty", "", false},
		{"unknown", "bogus", true},
		{"jaeger unsupported", "jaeger", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exp, err := NewTracingExporter(ctx, tc.exporter)
			if tc.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exp == nil {
				t.Error("exporter should not be nil")
			}
		})
	}
}

func TestNewTracingExporter_OTLPMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "otlp"); err == nil {
		t.Error("otlp without an endpoint should error")
	}
}

func TestNewMetricsReader(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		exporter string
		wantErr  bool
	}{
		{"stdout", "stdout", false},
		{"none", "none", false},
		{"empty", "", false},
		{"unknown", "bogus", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reader, err := NewMetricsReader(ctx, tc.exporter)
			if tc.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reader == nil {
				t.Error("reader should not be nil")
			}
		})
	}
}

func TestNewMetricsReader_OTLPMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	if _, err := NewMetricsReader(context.Background(), "otlp"); err == nil {
		t.Error("otlp without an endpoint should error")
	}
}
