package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/bootstrap"
	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/dispatch"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/kafka"
	"github.com/kbukum/jobgraph/kafka/producer"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
	"github.com/kbukum/jobgraph/persistence"
	"github.com/kbukum/jobgraph/resilience"
	"github.com/kbukum/jobgraph/runner"
)

// componentStore reads the store from the persistence component on every
// call, so a runner can be built before the component has started.
type componentStore struct {
	c *persistence.Component
}

var _ persistence.Store = componentStore{}

func (s componentStore) store() (persistence.Store, error) {
	st := s.c.Store()
	if st == nil {
		return nil, apperrors.New(apperrors.ErrCodeStorage, "graph store not started")
	}
	return st, nil
}

func (s componentStore) Save(ctx context.Context, jobID string, g *dag.Structure) error {
	st, err := s.store()
	if err != nil {
		return err
	}
	return st.Save(ctx, jobID, g)
}

func (s componentStore) Load(ctx context.Context, jobID string) (*dag.Structure, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return st.Load(ctx, jobID)
}

func (s componentStore) Delete(ctx context.Context, jobID string) error {
	st, err := s.store()
	if err != nil {
		return err
	}
	return st.Delete(ctx, jobID)
}

func (s componentStore) List(ctx context.Context) ([]string, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return st.List(ctx)
}

// newRunner wires a runner to store. Ready nodes go to the Kafka ready
// topic when w is set and to the log otherwise.
func newRunner(cfg *Config, log *logger.Logger, store persistence.Store, w dispatch.MessageWriter, metrics *observability.EngineMetrics) (*runner.Runner, error) {
	bus := dispatch.NewBus(log, metrics)
	name, handler := "log", dispatch.LogSink(log)
	if w != nil {
		cooldown, _ := time.ParseDuration(cfg.Engine.BreakerCooldown)
		br := resilience.NewBreaker(resilience.BreakerConfig{
			Name:        "kafka",
			MaxFailures: cfg.Engine.BreakerFailures,
			Cooldown:    cooldown,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("Dispatch breaker changed state", logger.Fields(
					"sink", name,
					"from", from.String(),
					"to", to.String(),
				))
			},
		})
		name = "kafka"
		handler = dispatch.Guard(br, name, dispatch.NewKafkaSink(w, cfg.Kafka.ReadyTopic, log).Handle)
	}
	if err := bus.Subscribe(name, cfg.Engine.DispatchPattern, handler); err != nil {
		return nil, err
	}

	return runner.New(store, bus,
		runner.WithLogger(log),
		runner.WithMetrics(metrics),
		runner.WithGraphOptions(cfg.Engine.GraphOptions()...),
		runner.WithDeleteOnComplete(cfg.Engine.DeleteOnComplete),
		runner.WithCompletionHandler(func(_ context.Context, jobID string, results []dag.NodeResult) {
			log.Info("Pipeline results ready", logger.Fields(
				logger.FieldJobID, jobID,
				"results", len(results),
			))
		}),
	), nil
}

// engine is the set of components a one-shot command runs against.
type engine struct {
	app    *bootstrap.App[*Config]
	runner *runner.Runner
}

// newEngine registers the graph store and, when Kafka is enabled, a
// producer for the ready topic.
func (st *cliState) newEngine() (*engine, error) {
	app, err := bootstrap.NewApp(st.cfg,
		bootstrap.WithLogger(st.log),
		bootstrap.WithSummaryWriter(io.Discard),
	)
	if err != nil {
		return nil, err
	}

	store := persistence.NewComponent(st.cfg.Persistence, st.log, nil)
	if err := app.RegisterComponent(store); err != nil {
		return nil, err
	}

	var w dispatch.MessageWriter
	if st.cfg.Kafka.Enabled {
		p, err := producer.New(st.cfg.Kafka, st.log)
		if err != nil {
			return nil, err
		}
		kc := kafka.NewComponent(st.cfg.Kafka, st.log)
		kc.SetProducer(p)
		if err := app.RegisterComponent(kc); err != nil {
			return nil, err
		}
		w = p
	}

	r, err := newRunner(st.cfg, st.log, componentStore{c: store}, w, nil)
	if err != nil {
		return nil, err
	}
	return &engine{app: app, runner: r}, nil
}

// withEngine starts the engine, runs fn and stops it again.
func (st *cliState) withEngine(cmd *cobra.Command, fn func(ctx context.Context, r *runner.Runner) error) error {
	e, err := st.newEngine()
	if err != nil {
		return err
	}
	return e.app.RunTask(cmd.Context(), func(ctx context.Context) error {
		return fn(ctx, e.runner)
	})
}

// loadPipeline reads arg as a file path, or looks it up by name in the
// configured pipeline directories.
func (st *cliState) loadPipeline(arg string) (*dag.Pipeline, error) {
	if _, err := os.Stat(arg); err == nil {
		return dag.LoadPipelineFile(arg)
	}
	return dag.NewFilePipelineLoader(st.cfg.Engine.PipelineDirs...).Load(arg)
}
