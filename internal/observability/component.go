package observability

import (
	"context"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/skillsenselab/jobhunt/internal/component"
)

// Telemetry is the lifecycle component that owns the tracer and meter
// providers. When disabled it starts as a no-op and Metrics() returns
// nil, which all recording paths tolerate.
type Telemetry struct {
	cfg Config
	id  Identity

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *Metrics
}

// NewTelemetry creates the telemetry component. Nothing is exported
// until Start runs.
func NewTelemetry(cfg Config, id Identity) *Telemetry {
	return &Telemetry{cfg: cfg, id: id}
}

// Name returns the component name.
func (t *Telemetry) Name() string { return "telemetry" }

// Start initializes the tracer and meter providers and creates the
// pipeline metric instruments.
func (t *Telemetry) Start(ctx context.Context) error {
	if !t.cfg.Enabled {
		return nil
	}

	tp, err := InitTracer(ctx, t.cfg, t.id)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	t.tp = tp

	mp, err := InitMeter(ctx, t.cfg, t.id)
	if err != nil {
		return fmt.Errorf("init meter: %w", err)
	}
	t.mp = mp

	metrics, err := NewMetrics(Meter(t.id.Name))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}
	t.metrics = metrics
	return nil
}

// Stop flushes and shuts down both providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	var firstErr error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("shutdown tracer: %w", err)
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown meter: %w", err)
		}
	}
	return firstErr
}

// Health reports the component status.
func (t *Telemetry) Health(_ context.Context) component.Health {
	if !t.cfg.Enabled {
		return component.Health{Name: t.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	if t.tp == nil || t.mp == nil {
		return component.Health{Name: t.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}

// Describe reports the component for the startup summary.
func (t *Telemetry) Describe() component.Description {
	details := "disabled"
	if t.cfg.Enabled {
		details = fmt.Sprintf("otlp-http %s sample=%.2f", t.cfg.Endpoint, t.cfg.SampleRatio)
	}
	return component.Description{
		Name:    "Telemetry",
		Type:    "telemetry",
		Details: details,
	}
}

// Metrics returns the pipeline instruments, or nil when telemetry is
// disabled or not yet started.
func (t *Telemetry) Metrics() *Metrics {
	return t.metrics
}
