package runner

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/dispatch"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
	"github.com/kbukum/jobgraph/persistence"
)

// Runner applies task events to stored job graphs.
type Runner struct {
	store     persistence.Store
	publisher dispatch.Publisher
	log       *logger.Logger
	metrics   *observability.EngineMetrics
	graphOpts []dag.Option

	onComplete       CompletionHandler
	deleteOnComplete bool

	locks jobLocks
}

// New creates a runner on store. publisher may be nil, in which case ready
// nodes are only returned.
func New(store persistence.Store, publisher dispatch.Publisher, opts ...Option) *Runner {
	r := &Runner{
		store:     store,
		publisher: publisher,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.graphOpts = append([]dag.Option{dag.WithLogger(r.log)}, r.graphOpts...)
	return r
}

// Submit builds the graph for p, stores it under jobID and dispatches the
// entry nodes. A job id can only be submitted once.
func (r *Runner) Submit(ctx context.Context, jobID string, p *dag.Pipeline) ([]dag.ReadyNode, error) {
	if jobID == "" {
		return nil, apperrors.InvalidInput("jobId", "job id is required")
	}
	unlock := r.locks.lock(jobID)
	defer unlock()

	existing, err := r.store.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.InvalidInput("jobId", "job already submitted").WithDetail("jobId", jobID)
	}

	m, err := r.build(ctx, jobID, p)
	if err != nil {
		return nil, err
	}
	if err := persistence.SaveGraph(ctx, r.store, jobID, m); err != nil {
		return nil, err
	}

	ready := make([]dag.ReadyNode, 0, len(m.Sources()))
	for _, name := range m.Sources() {
		ready = append(ready, dag.ReadyNode{NodeName: name, ParentOutput: []dag.ParentOutput{}})
	}

	r.log.Info("Job submitted", logger.Fields(
		logger.FieldJobID, jobID,
		logger.FieldPipeline, p.Name,
		"entry_nodes", len(ready),
	))
	return ready, r.publish(ctx, jobID, ready)
}

func (r *Runner) build(ctx context.Context, jobID string, p *dag.Pipeline) (*dag.NodesMap, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanGraphBuild)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrJobID, jobID)
	if p != nil {
		observability.SetSpanAttribute(ctx, observability.AttrPipeline, p.Name)
	}

	m, err := dag.New(p, r.graphOpts...)
	if err != nil {
		observability.SetSpanError(ctx, err)
		r.metrics.RecordError(ctx, "build")
		return nil, err
	}
	return m, nil
}

// HandleEvent applies ev to the job's stored graph, stores the result and
// dispatches the nodes that became ready. The ready nodes are returned even
// when dispatching them fails.
func (r *Runner) HandleEvent(ctx context.Context, ev TaskEvent) ([]dag.ReadyNode, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	unlock := r.locks.lock(ev.JobID)
	defer unlock()

	start := time.Now()
	m, err := persistence.LoadGraph(ctx, r.store, ev.JobID, r.graphOpts...)
	if err != nil {
		return nil, err
	}

	var ready []dag.ReadyNode
	switch ev.kind() {
	case EventState:
		ready, err = r.applyState(ctx, m, ev)
	case EventBatch:
		err = r.applyBatch(m, ev)
	case EventExecution:
		_, err = m.UpdateAlgorithmExecution(*ev.Execution)
	}
	if err != nil {
		return nil, err
	}

	if err := persistence.SaveGraph(ctx, r.store, ev.JobID, m); err != nil {
		return nil, err
	}

	r.log.Debug("Task event applied", logger.Fields(
		logger.FieldJobID, ev.JobID,
		logger.FieldOperation, string(ev.kind()),
		logger.FieldTaskID, ev.TaskID,
		"ready", len(ready),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))

	if err := r.publish(ctx, ev.JobID, ready); err != nil {
		return ready, err
	}
	if ev.kind() == EventState && m.IsAllNodesCompleted() {
		r.complete(ctx, ev.JobID, m)
	}
	return ready, nil
}

func (r *Runner) applyState(ctx context.Context, m *dag.NodesMap, ev TaskEvent) ([]dag.ReadyNode, error) {
	taskID := ev.TaskID
	if taskID == "" {
		n := m.GetNode(ev.NodeName)
		if n == nil {
			return nil, apperrors.NodeNotFound(ev.NodeName)
		}
		taskID = n.TaskID
	}
	return dag.Instrument(m, ev.JobID, r.log, r.metrics).Complete(ctx, taskID, ev.state())
}

func (r *Runner) applyBatch(m *dag.NodesMap, ev TaskEvent) error {
	for _, bt := range ev.Batch {
		b := dag.NewBatch(ev.NodeName, bt.BatchIndex, bt.TaskID)
		b.Input = bt.Input
		if _, err := m.AddTaskToBatch(b); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) complete(ctx context.Context, jobID string, m *dag.NodesMap) {
	results := m.PipelineResults()
	r.log.Info("Job completed", logger.Fields(
		logger.FieldJobID, jobID,
		"results", len(results),
	))
	if r.onComplete != nil {
		r.onComplete(ctx, jobID, results)
	}
	if r.deleteOnComplete {
		if err := r.store.Delete(ctx, jobID); err != nil {
			r.log.Warn("Failed to delete completed job graph", logger.Fields(
				logger.FieldJobID, jobID,
				logger.FieldError, err.Error(),
			))
		}
	}
}

func (r *Runner) publish(ctx context.Context, jobID string, ready []dag.ReadyNode) error {
	if r.publisher == nil || len(ready) == 0 {
		return nil
	}
	return r.publisher.Publish(ctx, jobID, ready)
}

// HandleMessage decodes a Kafka message as a TaskEvent and applies it. A
// message without a jobId takes it from the message key.
func (r *Runner) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	ev, err := DecodeEvent(msg.Value)
	if err != nil && ev.JobID == "" && len(msg.Key) > 0 {
		ev.JobID = string(msg.Key)
		err = ev.Validate()
	}
	if err != nil {
		r.metrics.RecordError(ctx, "decode_event")
		return err
	}
	_, err = r.HandleEvent(ctx, ev)
	return err
}
