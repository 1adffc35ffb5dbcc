package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonwraymond/histsync/credential"
	"github.com/jonwraymond/histsync/observe"
)

// Environment variable names read by FromEnv.
const (
	EnvServiceName     = "HISTSYNC_SERVICE_NAME"
	EnvVersion         = "HISTSYNC_VERSION"
	EnvAutoFetch       = "HISTSYNC_AUTO_FETCH"
	EnvToken           = "HISTSYNC_TOKEN"
	EnvLogLevel        = "HISTSYNC_LOG_LEVEL"
	EnvTracingExporter = "HISTSYNC_TRACING_EXPORTER"
	EnvMetricsExporter = "HISTSYNC_METRICS_EXPORTER"
	EnvTracingSample   = "HISTSYNC_TRACING_SAMPLE_PCT"
)

// Config holds the runtime configuration for the reconciliation layer.
type Config struct {
	// ServiceName identifies this deployment in telemetry. Required.
	ServiceName string

	// AutoFetch controls whether the reconciliation manager fetches live
	// records automatically when the cache is empty. Defaults to true.
	AutoFetch bool

	// Token is the credential presented to remote sources.
	Token credential.Token

	// Observe configures tracing, metrics, and logging.
	Observe observe.Config
}

// Default returns a Config with sensible defaults and no credential.
func Default() Config {
	return Config{
		ServiceName: "histsync",
		AutoFetch:   true,
		Observe: observe.Config{
			ServiceName: "histsync",
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("config: service name is required")
	}
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// FromEnv builds a Config from HISTSYNC_* environment variables, starting
// from Default. String values are expanded with ExpandEnvStrict, so
// HISTSYNC_TOKEN='${API_TOKEN}' pulls the credential from API_TOKEN and
// errors if API_TOKEN is unset.
func FromEnv() (Config, error) {
	cfg := Default()

	if v, err := lookupExpanded(EnvServiceName); err != nil {
		return Config{}, err
	} else if v != "" {
		cfg.ServiceName = v
		cfg.Observe.ServiceName = v
	}

	if v, err := lookupExpanded(EnvVersion); err != nil {
		return Config{}, err
	} else if v != "" {
		cfg.Observe.Version = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvAutoFetch)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvAutoFetch, err)
		}
		cfg.AutoFetch = enabled
	}

	if v, err := lookupExpanded(EnvToken); err != nil {
		return Config{}, err
	} else if v != "" {
		cfg.Token = credential.Token(v)
	}

	if v, err := lookupExpanded(EnvLogLevel); err != nil {
		return Config{}, err
	} else if v != "" {
		cfg.Observe.Logging = observe.LoggingConfig{Enabled: true, Level: v}
	}

	if v, err := lookupExpanded(EnvTracingExporter); err != nil {
		return Config{}, err
	} else if v != "" {
		cfg.Observe.Tracing.Enabled = v != "none"
		cfg.Observe.Tracing.Exporter = v
		if cfg.Observe.Tracing.SamplePct == 0 {
			cfg.Observe.Tracing.SamplePct = 1.0
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvTracingSample)); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvTracingSample, err)
		}
		cfg.Observe.Tracing.SamplePct = pct
	}

	if v, err := lookupExpanded(EnvMetricsExporter); err != nil {
		return Config{}, err
	} else if v != "" {
		cfg.Observe.Metrics.Enabled = v != "none"
		cfg.Observe.Metrics.Exporter = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func lookupExpanded(key string) (string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return "", nil
	}
	expanded, err := ExpandEnvStrict(raw)
	if err != nil {
		return "", fmt.Errorf("config: %s: %w", key, err)
	}
	return strings.TrimSpace(expanded), nil
}
