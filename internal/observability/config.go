package observability

import (
	"fmt"
	"time"
)

const (
	defaultEndpoint       = "localhost:4318"
	defaultSampleRatio    = 1.0
	defaultExportInterval = 15 * time.Second
)

// Config configures OpenTelemetry export. Disabled leaves the global
// noop providers in place; spans and metrics become no-ops.
type Config struct {
	// Enabled turns on OTLP export of traces and metrics.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// Insecure allows plain HTTP to the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`

	// SampleRatio is the trace sampling ratio (0.0 to 1.0).
	SampleRatio float64 `yaml:"sample_ratio" mapstructure:"sample_ratio"`

	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Identity describes the service for telemetry resources.
type Identity struct {
	Name        string
	Version     string
	Environment string
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = defaultSampleRatio
	}
	if c.Interval <= 0 {
		c.Interval = defaultExportInterval
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be between 0 and 1, got %v", c.SampleRatio)
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when enabled")
	}
	return nil
}
