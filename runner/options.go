package runner

import (
	"context"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
)

// CompletionHandler is called once every task of a job has completed.
type CompletionHandler func(ctx context.Context, jobID string, results []dag.NodeResult)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log.WithComponent("runner")
		}
	}
}

// WithMetrics records engine metrics.
func WithMetrics(m *observability.EngineMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithGraphOptions passes opts to every graph the runner builds or loads.
func WithGraphOptions(opts ...dag.Option) Option {
	return func(r *Runner) { r.graphOpts = append(r.graphOpts, opts...) }
}

// WithCompletionHandler registers fn to run when a job completes.
func WithCompletionHandler(fn CompletionHandler) Option {
	return func(r *Runner) { r.onComplete = fn }
}

// WithDeleteOnComplete removes a job's graph from the store once it
// completes.
func WithDeleteOnComplete(enabled bool) Option {
	return func(r *Runner) { r.deleteOnComplete = enabled }
}
