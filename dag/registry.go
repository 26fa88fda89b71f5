package dag

import (
	"slices"

	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
)

// AddBatch appends b to the batch of the node it names. It does nothing when
// the node does not exist.
func (m *NodesMap) AddBatch(b *Batch) {
	if n := m.GetNode(b.NodeName); n != nil {
		n.Batch = append(n.Batch, b)
	}
}

// AddBatchList appends batch to the node named name. It does nothing when
// the node does not exist.
func (m *NodesMap) AddBatchList(name string, batch []*Batch) {
	if n := m.GetNode(name); n != nil {
		n.Batch = append(n.Batch, batch...)
	}
}

// RemoveBatch removes the element with taskID from the node named name. It
// does nothing when either is missing.
func (m *NodesMap) RemoveBatch(name, taskID string) {
	if n := m.GetNode(name); n != nil {
		n.Batch = slices.DeleteFunc(n.Batch, func(b *Batch) bool { return b.TaskID == taskID })
	}
}

// AddTaskToBatch appends b to its node unless an element with the same task
// id is already there.
func (m *NodesMap) AddTaskToBatch(b *Batch) (*Node, error) {
	n := m.GetNode(b.NodeName)
	if n == nil {
		return nil, apperrors.NodeNotFound(b.NodeName)
	}
	if !slices.ContainsFunc(n.Batch, func(e *Batch) bool { return e.TaskID == b.TaskID }) {
		n.Batch = append(n.Batch, b)
	}
	return n, nil
}

// RemoveTaskFromBatch removes the element with taskID from the node named
// name.
func (m *NodesMap) RemoveTaskFromBatch(name, taskID string) (*Node, error) {
	n := m.GetNode(name)
	if n == nil {
		return nil, apperrors.NodeNotFound(name)
	}
	if i := slices.IndexFunc(n.Batch, func(e *Batch) bool { return e.TaskID == taskID }); i >= 0 {
		n.Batch = slices.Delete(n.Batch, i, i+1)
	}
	return n, nil
}

// ExecutionUpdate reports an execution spawned by an algorithm at run time.
// NodeName is the synthetic execution node, ParentNodeName the spawning node.
type ExecutionUpdate struct {
	TaskID         string `json:"taskId"`
	NodeName       string `json:"nodeName"`
	ParentNodeName string `json:"parentNodeName"`
	AlgorithmName  string `json:"algorithmName,omitempty"`
	ExecID         string `json:"execId,omitempty"`
	Status         Status `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
	Result         any    `json:"result,omitempty"`
}

// UpdateAlgorithmExecution records an execution under a synthetic execution
// node, creating the node (one level below its parent) and the
// AlgorithmExecution edge on first use. A new task id becomes a new element;
// a known one has its status, error and result merged.
func (m *NodesMap) UpdateAlgorithmExecution(u ExecutionUpdate) (*Batch, error) {
	parent := m.GetNode(u.ParentNodeName)
	if parent == nil {
		return nil, apperrors.NodeNotFound(u.ParentNodeName)
	}
	level := parent.Level + 1

	exec := m.GetNode(u.NodeName)
	if exec == nil {
		exec = &Node{
			NodeName:           u.NodeName,
			AlgorithmName:      u.AlgorithmName,
			Status:             StatusCreating,
			Level:              level,
			Batch:              []*Batch{},
			AlgorithmExecution: true,
		}
		m.g.SetNode(u.NodeName, exec)
		m.g.SetEdge(u.ParentNodeName, u.NodeName, EdgeValue{Types: []EdgeType{EdgeAlgorithmExecution}})
		m.log.Debug("execution node created", logger.Fields(
			logger.FieldNode, u.NodeName,
			"parent", u.ParentNodeName,
		))
	}

	if i := slices.IndexFunc(exec.Batch, func(b *Batch) bool { return b.TaskID == u.TaskID }); i >= 0 {
		b := exec.Batch[i]
		if u.Status != "" {
			b.Status = u.Status
		}
		if u.Error != "" {
			b.Error = u.Error
		}
		if u.Result != nil {
			b.Result = u.Result
		}
		return b, nil
	}

	b := &Batch{
		TaskID:        u.TaskID,
		NodeName:      u.NodeName,
		BatchIndex:    len(exec.Batch) + 1,
		Status:        u.Status,
		AlgorithmName: u.AlgorithmName,
		ExecID:        u.ExecID,
		Level:         level,
	}
	exec.Batch = append(exec.Batch, b)
	return b, nil
}
