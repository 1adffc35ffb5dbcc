package observe

import (
	"context"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "minimal valid",
			cfg:     Config{ServiceName: "histsync"},
			wantErr: false,
		},
		{
			name: "valid tracing",
			cfg: Config{
				ServiceName: "histsync",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5},
			},
			wantErr: false,
		},
		{
			name: "unknown tracing exporter",
			cfg: Config{
				ServiceName: "histsync",
				Tracing:     TracingConfig{Enabled: true, Exporter: "bogus"},
			},
			wantErr: true,
		},
		{
			name: "jaeger exporter not supported",
			cfg: Config{
				ServiceName: "histsync",
				Tracing:     TracingConfig{Enabled: true, Exporter: "jaeger"},
			},
			wantErr: true,
		},
		{
			name: "sample pct out of range",
			cfg: Config{
				ServiceName: "histsync",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
			},
			wantErr: true,
		},
		{
			name: "unknown metrics exporter",
			cfg: Config{
				ServiceName: "histsync",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "bogus"},
			},
			wantErr: true,
		},
		{
			name: "unknown log level",
			cfg: Config{
				ServiceName: "histsync",
				Logging:     LoggingConfig{Enabled: true, Level: "loud"},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("Validate should have returned an error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Validate returned unexpected error: %v", err)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	ctx := context.Background()

	obs, err := NewObserver(ctx, Config{ServiceName: "histsync"})
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	if obs.Tracer() == nil {
		t.Error("Tracer should not be nil when tracing is disabled")
	}
	if obs.Meter() == nil {
		t.Error("Meter should not be nil when metrics are disabled")
	}
	if obs.Logger() == nil {
		t.Error("Logger should not be nil when logging is disabled")
	}

	if err := obs.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	// Shutdown is idempotent
	if err := obs.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown failed: %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if err == nil {
		t.Error("NewObserver should fail with an empty config")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	ctx := context.Background()

	// Must not panic, and WithSession must return a usable logger.
	logger.Info(ctx, "msg")
	logger.Warn(ctx, "msg")
	logger.Error(ctx, "msg")
	logger.Debug(ctx, "msg")

	scoped := logger.WithSession(SessionMeta{UserID: "user-1", Op: "fetch.records"})
	if scoped == nil {
		t.Fatal("WithSession returned nil")
	}
	scoped.Info(ctx, "msg")
}
