package persistence

import (
	"context"
	"time"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
)

// instrumentedStore records a span, a metric and a debug line per call.
type instrumentedStore struct {
	inner   Store
	backend string
	metrics *observability.EngineMetrics
	log     *logger.Logger
}

// Instrument wraps store with tracing, metrics and logging. backend labels
// the metrics. metrics and log may be nil.
func Instrument(store Store, backend string, metrics *observability.EngineMetrics, log *logger.Logger) Store {
	if log == nil {
		log = logger.Nop()
	}
	return &instrumentedStore{
		inner:   store,
		backend: backend,
		metrics: metrics,
		log:     log.WithComponent("persistence"),
	}
}

func (s *instrumentedStore) Save(ctx context.Context, jobID string, g *dag.Structure) error {
	return s.observe(ctx, "save", jobID, func(ctx context.Context) error {
		return s.inner.Save(ctx, jobID, g)
	})
}

func (s *instrumentedStore) Load(ctx context.Context, jobID string) (*dag.Structure, error) {
	var out *dag.Structure
	err := s.observe(ctx, "load", jobID, func(ctx context.Context) error {
		var err error
		out, err = s.inner.Load(ctx, jobID)
		return err
	})
	return out, err
}

func (s *instrumentedStore) Delete(ctx context.Context, jobID string) error {
	return s.observe(ctx, "delete", jobID, func(ctx context.Context) error {
		return s.inner.Delete(ctx, jobID)
	})
}

func (s *instrumentedStore) List(ctx context.Context) ([]string, error) {
	var out []string
	err := s.observe(ctx, "list", "", func(ctx context.Context) error {
		var err error
		out, err = s.inner.List(ctx)
		return err
	})
	return out, err
}

func (s *instrumentedStore) observe(ctx context.Context, op, jobID string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanStore)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrOperation, op)
	if jobID != "" {
		observability.SetSpanAttribute(ctx, observability.AttrJobID, jobID)
	}

	start := time.Now()
	err := fn(ctx)
	fields := logger.Fields(
		logger.FieldOperation, op,
		"backend", s.backend,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	if jobID != "" {
		fields[logger.FieldJobID] = jobID
	}

	if err != nil {
		observability.SetSpanError(ctx, err)
		s.metrics.RecordStoreOperation(ctx, s.backend, op, "error")
		s.metrics.RecordError(ctx, "store_"+op)
		fields[logger.FieldError] = err.Error()
		s.log.Warn("Graph store operation failed", fields)
		return err
	}
	s.metrics.RecordStoreOperation(ctx, s.backend, op, "ok")
	s.log.Debug("Graph store operation", fields)
	return nil
}
