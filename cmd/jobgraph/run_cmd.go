package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/bootstrap"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/kafka"
	"github.com/kbukum/jobgraph/kafka/consumer"
	"github.com/kbukum/jobgraph/kafka/producer"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
	"github.com/kbukum/jobgraph/persistence"
)

func newRunCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Consume task events from Kafka and dispatch ready nodes",
		Long: `Runs the engine as a service. Task events are read from kafka.task_topic, applied
to the stored job graphs, and the nodes that become ready are published to
kafka.ready_topic. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := st.newService(cmd)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

// newService wires the long-running engine: graph store, Kafka consumer and
// producer, and optional tracing and metrics export.
func (st *cliState) newService(cmd *cobra.Command) (*bootstrap.App[*Config], error) {
	cfg := st.cfg
	if !cfg.Kafka.Enabled {
		return nil, apperrors.InvalidInput("kafka.enabled", "run consumes task events from Kafka and needs it enabled")
	}

	app, err := bootstrap.NewApp(cfg,
		bootstrap.WithLogger(st.log),
		bootstrap.WithSummaryWriter(cmd.OutOrStdout()),
	)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			return nil, err
		}
		app.OnStop(func(ctx context.Context) error { return tp.Shutdown(ctx) })
	}

	var metrics *observability.EngineMetrics
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &cfg.Metrics)
		if err != nil {
			return nil, err
		}
		app.OnStop(func(ctx context.Context) error { return mp.Shutdown(ctx) })
		if metrics, err = observability.NewEngineMetrics(observability.Meter(serviceName)); err != nil {
			return nil, err
		}
	}

	store := persistence.NewComponent(cfg.Persistence, st.log, metrics)
	if err := app.RegisterComponent(store); err != nil {
		return nil, err
	}

	p, err := producer.New(cfg.Kafka, st.log)
	if err != nil {
		return nil, err
	}
	r, err := newRunner(cfg, st.log, componentStore{c: store}, p, metrics)
	if err != nil {
		return nil, err
	}
	c, err := consumer.New(cfg.Kafka, cfg.Kafka.TaskTopic, st.log)
	if err != nil {
		return nil, err
	}

	kc := kafka.NewComponent(cfg.Kafka, st.log)
	kc.SetProducer(p)
	kc.AddConsumer(consumer.Bind(c, r.HandleMessage))
	if err := app.RegisterComponent(kc); err != nil {
		return nil, err
	}

	app.OnReady(func(context.Context) error {
		st.log.Info("Engine consuming task events", logger.Fields(
			"task_topic", cfg.Kafka.TaskTopic,
			"ready_topic", cfg.Kafka.ReadyTopic,
			"store", cfg.Persistence.Type,
		))
		return nil
	})
	return app, nil
}
