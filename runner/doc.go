// Package runner drives stored job graphs from task events.
//
// Submit builds a pipeline's graph, stores it and dispatches the entry
// nodes. HandleEvent applies one task event to the stored graph, stores the
// result and dispatches whatever became ready:
//
//	r := runner.New(store, bus, runner.WithLogger(log), runner.WithMetrics(metrics))
//	ready, err := r.Submit(ctx, jobID, pipeline)
//	...
//	ready, err = r.HandleEvent(ctx, runner.TaskEvent{JobID: jobID, TaskID: id, Status: dag.StatusSucceed})
//
// Events for one job are applied one at a time; different jobs proceed in
// parallel.
package runner
