package main

import (
	"fmt"
	"time"

	"github.com/kbukum/jobgraph/config"
	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/kafka"
	"github.com/kbukum/jobgraph/observability"
	"github.com/kbukum/jobgraph/persistence"
)

const serviceName = "jobgraph"

// Config is the jobgraph process configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Engine      EngineConfig               `yaml:"engine" mapstructure:"engine"`
	Persistence persistence.Config         `yaml:"persistence" mapstructure:"persistence"`
	Kafka       kafka.Config               `yaml:"kafka" mapstructure:"kafka"`
	Tracing     observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics     observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// EngineConfig controls how graphs are built and jobs are finished.
type EngineConfig struct {
	// PipelineDirs are searched when a command is given a pipeline name
	// instead of a file.
	PipelineDirs []string `yaml:"pipeline_dirs" mapstructure:"pipeline_dirs"`

	CheckFlowInput          bool `yaml:"check_flow_input" mapstructure:"check_flow_input"`
	SkipRelationsValidation bool `yaml:"skip_relations_validation" mapstructure:"skip_relations_validation"`
	SkipStateTypeValidation bool `yaml:"skip_state_type_validation" mapstructure:"skip_state_type_validation"`

	// DeleteOnComplete drops a job's graph once every node has completed.
	DeleteOnComplete bool `yaml:"delete_on_complete" mapstructure:"delete_on_complete"`
	// DispatchPattern filters which "jobId:nodeName" pairs reach the
	// configured sink.
	DispatchPattern string `yaml:"dispatch_pattern" mapstructure:"dispatch_pattern"`

	// BreakerFailures consecutive Kafka dispatch failures stop dispatching
	// for BreakerCooldown.
	BreakerFailures int    `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerCooldown string `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// GraphOptions translates the settings into dag options.
func (e EngineConfig) GraphOptions() []dag.Option {
	return []dag.Option{
		dag.WithFlowInputCheck(e.CheckFlowInput),
		dag.WithNodesRelationsValidation(!e.SkipRelationsValidation),
		dag.WithStateTypeValidation(!e.SkipStateTypeValidation),
	}
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if len(c.Engine.PipelineDirs) == 0 {
		c.Engine.PipelineDirs = []string{"./pipelines"}
	}
	if c.Engine.DispatchPattern == "" {
		c.Engine.DispatchPattern = "*"
	}
	if c.Engine.BreakerFailures <= 0 {
		c.Engine.BreakerFailures = 5
	}
	if c.Engine.BreakerCooldown == "" {
		c.Engine.BreakerCooldown = "30s"
	}
	c.Persistence.ApplyDefaults()
	c.Kafka.ApplyDefaults()

	tracing := observability.DefaultTracerConfig(c.Name)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = tracing.ServiceName
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Version
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = tracing.Endpoint
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = tracing.SampleRate
	}

	metrics := observability.DefaultMeterConfig(c.Name)
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = metrics.ServiceName
	}
	if c.Metrics.ServiceVersion == "" {
		c.Metrics.ServiceVersion = c.Version
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = c.Environment
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = metrics.Endpoint
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = metrics.Interval
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Engine.BreakerCooldown); err != nil {
		return fmt.Errorf("config.engine: invalid breaker_cooldown %q: %w", c.Engine.BreakerCooldown, err)
	}
	if err := c.Persistence.Validate(); err != nil {
		return fmt.Errorf("config.persistence: %w", err)
	}
	if err := c.Kafka.Validate(); err != nil {
		return fmt.Errorf("config.kafka: %w", err)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("config.tracing: sample_rate must be between 0 and 1")
	}
	return nil
}
