package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	ServiceName    string        `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string        `yaml:"service_version" mapstructure:"service_version"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// EngineMetrics holds the instruments recorded while a job graph is driven.
// A nil *EngineMetrics records nothing.
type EngineMetrics struct {
	taskUpdates         metric.Int64Counter
	readyNodes          metric.Int64Counter
	propagationDuration metric.Float64Histogram
	storeOperations     metric.Int64Counter
	dispatched          metric.Int64Counter
	errorTotal          metric.Int64Counter
}

// NewEngineMetrics creates the engine instruments on the given meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	taskUpdates, err := meter.Int64Counter("jobgraph.task.updates",
		metric.WithDescription("Task state updates applied, by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobgraph.task.updates counter: %w", err)
	}

	readyNodes, err := meter.Int64Counter("jobgraph.nodes.ready",
		metric.WithDescription("Ready node descriptors produced by propagation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobgraph.nodes.ready counter: %w", err)
	}

	propagationDuration, err := meter.Float64Histogram("jobgraph.propagation.duration",
		metric.WithDescription("Duration of completion propagation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobgraph.propagation.duration histogram: %w", err)
	}

	storeOperations, err := meter.Int64Counter("jobgraph.store.operations",
		metric.WithDescription("Graph store operations by backend, operation and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobgraph.store.operations counter: %w", err)
	}

	dispatched, err := meter.Int64Counter("jobgraph.dispatch.nodes",
		metric.WithDescription("Ready nodes handed to dispatch sinks, by sink and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobgraph.dispatch.nodes counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("jobgraph.errors",
		metric.WithDescription("Errors by operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobgraph.errors counter: %w", err)
	}

	return &EngineMetrics{
		taskUpdates:         taskUpdates,
		readyNodes:          readyNodes,
		propagationDuration: propagationDuration,
		storeOperations:     storeOperations,
		dispatched:          dispatched,
		errorTotal:          errorTotal,
	}, nil
}

// RecordTaskUpdate counts one applied task update.
func (m *EngineMetrics) RecordTaskUpdate(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.taskUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordPropagation records one propagation run and the number of ready
// descriptors it produced.
func (m *EngineMetrics) RecordPropagation(ctx context.Context, node string, ready int, duration time.Duration) {
	if m == nil {
		return
	}
	m.propagationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("node", node),
	))
	if ready > 0 {
		m.readyNodes.Add(ctx, int64(ready), metric.WithAttributes(attribute.String("source", node)))
	}
}

// RecordStoreOperation counts a graph store call.
func (m *EngineMetrics) RecordStoreOperation(ctx context.Context, backend, operation, status string) {
	if m == nil {
		return
	}
	m.storeOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// RecordDispatch counts ready nodes delivered to a sink.
func (m *EngineMetrics) RecordDispatch(ctx context.Context, sink string, nodes int, status string) {
	if m == nil || nodes == 0 {
		return
	}
	m.dispatched.Add(ctx, int64(nodes), metric.WithAttributes(
		attribute.String("sink", sink),
		attribute.String("status", status),
	))
}

// RecordError counts an error for operation.
func (m *EngineMetrics) RecordError(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
