package runner

import (
	"context"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/persistence"
)

// NodeStatus summarizes one node of a stored job.
type NodeStatus struct {
	Name      string       `json:"name"`
	Kind      dag.NodeKind `json:"kind,omitempty"`
	Level     int          `json:"level"`
	Status    dag.Status   `json:"status"`
	Batch     int          `json:"batch,omitempty"`
	Completed bool         `json:"completed"`
}

// JobStatus summarizes a stored job.
type JobStatus struct {
	JobID     string           `json:"jobId"`
	Completed bool             `json:"completed"`
	Nodes     []NodeStatus     `json:"nodes"`
	Results   []dag.NodeResult `json:"results,omitempty"`
}

// Inspect reports the state of the job stored under jobID. Results are only
// filled in once the job has completed.
func (r *Runner) Inspect(ctx context.Context, jobID string) (*JobStatus, error) {
	m, err := persistence.LoadGraph(ctx, r.store, jobID, r.graphOpts...)
	if err != nil {
		return nil, err
	}

	st := &JobStatus{JobID: jobID, Completed: m.IsAllNodesCompleted()}
	for _, n := range m.AllNodes() {
		done, _ := m.IsNodeCompleted(n.NodeName)
		st.Nodes = append(st.Nodes, NodeStatus{
			Name:      n.NodeName,
			Kind:      n.Kind,
			Level:     n.Level,
			Status:    n.Status,
			Batch:     len(n.Batch),
			Completed: done,
		})
	}
	if st.Completed {
		st.Results = m.PipelineResults()
	}
	return st, nil
}

// Jobs lists the stored job ids.
func (r *Runner) Jobs(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Forget removes a job's graph.
func (r *Runner) Forget(ctx context.Context, jobID string) error {
	unlock := r.locks.lock(jobID)
	defer unlock()
	return r.store.Delete(ctx, jobID)
}
