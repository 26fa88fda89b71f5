package dag

import (
	"context"
	"time"

	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/observability"
)

// Instrumented wraps a NodesMap with tracing, metrics and logging for the
// runtime operations. The wrapped map stays usable directly.
type Instrumented struct {
	inner   *NodesMap
	log     *logger.Logger
	metrics *observability.EngineMetrics
	jobID   string
}

// Instrument wraps m. log and metrics may be nil.
func Instrument(m *NodesMap, jobID string, log *logger.Logger, metrics *observability.EngineMetrics) *Instrumented {
	if log == nil {
		log = logger.Nop()
	}
	return &Instrumented{
		inner:   m,
		log:     log.WithComponent("dag").WithFields(logger.Fields(logger.FieldJobID, jobID)),
		metrics: metrics,
		jobID:   jobID,
	}
}

// NodesMap returns the wrapped map.
func (i *Instrumented) NodesMap() *NodesMap { return i.inner }

// UpdateTaskState is NodesMap.UpdateTaskState inside a span.
func (i *Instrumented) UpdateTaskState(ctx context.Context, taskID string, state TaskState) (Task, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTaskUpdate)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrJobID, i.jobID)
	observability.SetSpanAttribute(ctx, observability.AttrTaskID, taskID)

	t, err := i.inner.UpdateTaskState(taskID, state)
	if err != nil {
		observability.SetSpanError(ctx, err)
		i.metrics.RecordError(ctx, "update_task_state")
		i.log.Error("task state update failed", logger.Fields(
			logger.FieldTaskID, taskID,
			logger.FieldError, err.Error(),
		))
		return Task{}, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrNode, t.NodeName)
	observability.SetSpanAttribute(ctx, observability.AttrStatus, string(t.Status))
	i.metrics.RecordTaskUpdate(ctx, string(t.Status))
	return t, nil
}

// OnTaskCompleted is NodesMap.OnTaskCompleted inside a span, with the
// propagation timed.
func (i *Instrumented) OnTaskCompleted(ctx context.Context, t Task) [][]ReadyNode {
	ctx, span := observability.StartSpan(ctx, observability.SpanTaskCompleted)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrJobID, i.jobID)
	observability.SetSpanAttribute(ctx, observability.AttrNode, t.NodeName)
	if t.BatchIndex > 0 {
		observability.SetSpanAttribute(ctx, observability.AttrBatchIndex, t.BatchIndex)
	}

	start := time.Now()
	out := i.inner.OnTaskCompleted(t)
	duration := time.Since(start)

	ready := 0
	for _, r := range out {
		ready += len(r)
	}
	observability.SetSpanAttribute(ctx, observability.AttrReady, ready)
	i.metrics.RecordPropagation(ctx, t.NodeName, ready, duration)
	i.log.Debug("task completion propagated", logger.Fields(
		logger.FieldNode, t.NodeName,
		logger.FieldBatchIndex, t.BatchIndex,
		"ready", ready,
		logger.FieldDuration, duration.Milliseconds(),
	))
	return out
}

// Complete applies a finished task's state and propagates it. Propagation
// only runs when the resulting status is completed or storing.
func (i *Instrumented) Complete(ctx context.Context, taskID string, state TaskState) ([]ReadyNode, error) {
	t, err := i.UpdateTaskState(ctx, taskID, state)
	if err != nil {
		return nil, err
	}
	if !t.Status.CompletedOrStoring() {
		return nil, nil
	}
	var ready []ReadyNode
	for _, r := range i.OnTaskCompleted(ctx, t) {
		ready = append(ready, r...)
	}
	return ready, nil
}
