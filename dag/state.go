package dag

import (
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
)

// UpdateTaskState applies state to the node or batch element owning taskID
// and returns a snapshot of it. Batched nodes are only reachable through
// their elements.
func (m *NodesMap) UpdateTaskState(taskID string, state TaskState) (Task, error) {
	t, ok := m.taskByID(taskID)
	if !ok {
		return Task{}, apperrors.TaskNotFound(taskID)
	}
	if t.batch != nil {
		state.applyBatch(t.batch)
	} else {
		state.applyNode(t.node)
	}
	snap := t.snapshot()
	m.log.Debug("task state updated", logger.Fields(
		logger.FieldTaskID, taskID,
		logger.FieldNode, snap.NodeName,
		logger.FieldStatus, string(snap.Status),
	))
	return snap, nil
}

// TaskByID returns a snapshot of the task owning taskID.
func (m *NodesMap) TaskByID(taskID string) (Task, bool) {
	t, ok := m.taskByID(taskID)
	if !ok {
		return Task{}, false
	}
	return t.snapshot(), true
}

// NodeStates returns the statuses of the node's batch elements, or the
// node's own status when it has none.
func (m *NodesMap) NodeStates(name string) ([]Status, error) {
	n := m.GetNode(name)
	if n == nil {
		return nil, apperrors.NodeNotFound(name)
	}
	return nodeStates(n), nil
}

func nodeStates(n *Node) []Status {
	if !n.IsBatched() {
		return []Status{n.Status}
	}
	out := make([]Status, len(n.Batch))
	for i, b := range n.Batch {
		out[i] = b.Status
	}
	return out
}

// IsAllParentsFinished reports whether every state of every parent of name
// is completed or storing.
func (m *NodesMap) IsAllParentsFinished(name string) bool {
	for _, p := range m.Parents(name) {
		if n := m.GetNode(p); n != nil && !allCompletedOrStoring(nodeStates(n)) {
			return false
		}
	}
	return true
}

// IsAllParentsFinishedIndex reports whether target can run for batch index
// after source finished that index: every other WaitAny parent finished its
// element at index, and every WaitNode or WaitBatch parent finished as a
// whole. A WaitAny parent without an element at index does not block.
func (m *NodesMap) IsAllParentsFinishedIndex(source, target string, index int) bool {
	for _, p := range m.Parents(target) {
		n := m.GetNode(p)
		if n == nil {
			continue
		}
		e, _ := m.g.Edge(p, target)
		if e.Has(EdgeWaitAny) && p != source {
			if b := batchAt(n, index); b != nil && !b.Status.CompletedOrStoring() {
				return false
			}
		}
		if e.Has(EdgeWaitNode) || e.Has(EdgeWaitBatch) {
			if !allCompletedOrStoring(nodeStates(n)) {
				return false
			}
		}
	}
	return true
}

// IsAllNodesCompleted reports whether every task in the graph is succeed,
// failed or skipped. Unlike the parent checks, storing does not count.
func (m *NodesMap) IsAllNodesCompleted() bool {
	for _, t := range m.flatTasks() {
		if !t.snapshot().Status.Completed() {
			return false
		}
	}
	return true
}

// IsNodeCompleted reports whether every state of the node is completed.
func (m *NodesMap) IsNodeCompleted(name string) (bool, error) {
	states, err := m.NodeStates(name)
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if !s.Completed() {
			return false, nil
		}
	}
	return true, nil
}

func allCompletedOrStoring(states []Status) bool {
	for _, s := range states {
		if !s.CompletedOrStoring() {
			return false
		}
	}
	return true
}

func batchAt(n *Node, index int) *Batch {
	for _, b := range n.Batch {
		if b.BatchIndex == index {
			return b
		}
	}
	return nil
}
