package dag

import (
	"sort"

	"github.com/kbukum/jobgraph/logger"
)

// OnTaskCompleted evaluates every child of the task's node and returns, per
// child in successor order, the descriptors of the runs that became ready.
// A child with nothing ready has an empty entry. Pass the snapshot returned
// by UpdateTaskState.
func (m *NodesMap) OnTaskCompleted(t Task) [][]ReadyNode {
	children := m.Children(t.NodeName)
	if children == nil {
		return nil
	}
	out := make([][]ReadyNode, len(children))
	for i, child := range children {
		out[i] = m.checkChild(t.NodeName, child, t.BatchIndex)
	}
	return out
}

// ReadyNodes is OnTaskCompleted flattened into one list.
func (m *NodesMap) ReadyNodes(t Task) []ReadyNode {
	var out []ReadyNode
	for _, r := range m.OnTaskCompleted(t) {
		out = append(out, r...)
	}
	return out
}

func (m *NodesMap) checkChild(source, target string, index int) []ReadyNode {
	edge, _ := m.g.Edge(source, target)

	var nodes []ReadyNode
	switch classify(edge, index) {
	case modeExecution, modeNone:
		return nil
	case modeAnyMixed:
		if m.IsAllParentsFinished(target) {
			nodes = m.analyzeResults(target, 0)
		}
	case modeNode:
		if m.IsAllParentsFinished(target) {
			nodes = m.analyzeResults(target, 0)
		} else {
			nodes = m.resolveMarked(target, 0)
		}
	case modeAnyIndex:
		if m.IsAllParentsFinishedIndex(source, target, index) {
			nodes = m.analyzeResults(target, index)
		} else {
			m.markShouldRun(source, index)
		}
		nodes = append(nodes, m.resolveMarked(target, index)...)
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Index < nodes[j].Index })
	}

	for _, r := range nodes {
		m.log.Debug("node ready", logger.Fields(
			logger.FieldNode, r.NodeName,
			logger.FieldBatchIndex, r.Index,
			"parents", len(r.ParentOutput),
		))
	}
	return nodes
}

// resolveMarked emits target for every index other than skip that has a
// WaitAny parent element marked to run and whose parents have all finished
// that index. analyzeResults clears the marks.
func (m *NodesMap) resolveMarked(target string, skip int) []ReadyNode {
	checked := make(map[int]bool)
	var indexes []int
	for _, p := range m.Parents(target) {
		edge, _ := m.g.Edge(p, target)
		n := m.GetNode(p)
		if n == nil || !edge.Has(EdgeWaitAny) {
			continue
		}
		for _, b := range n.Batch {
			j := b.BatchIndex
			if !b.ShouldRun || j == skip || checked[j] {
				continue
			}
			checked[j] = true
			if m.IsAllParentsFinishedIndex(p, target, j) {
				indexes = append(indexes, j)
			}
		}
	}
	sort.Ints(indexes)

	var out []ReadyNode
	for _, j := range indexes {
		out = append(out, m.analyzeResults(target, j)...)
	}
	return out
}

func (m *NodesMap) markShouldRun(name string, index int) {
	if n := m.GetNode(name); n != nil {
		if b := batchAt(n, index); b != nil {
			b.ShouldRun = true
		}
	}
}

// analyzeResults collects the parent outputs of target and groups them by
// batch index. With index 0 every batch element of a WaitAny parent is
// included; otherwise only the elements at index. Whole-node entries are
// prepended to every indexed group.
func (m *NodesMap) analyzeResults(target string, index int) []ReadyNode {
	var whole []ParentOutput
	indexed := make(map[int][]ParentOutput)

	for _, p := range m.Parents(target) {
		n := m.GetNode(p)
		if n == nil {
			continue
		}
		edge, _ := m.g.Edge(p, target)
		if edge.Has(EdgeWaitNode) {
			whole = append(whole, ParentOutput{Type: EdgeWaitNode, Node: p, Result: nodeResults(n)})
		}
		if edge.Has(EdgeWaitBatch) {
			whole = append(whole, ParentOutput{Type: EdgeWaitBatch, Node: p, Result: nodeResults(n)})
		}
		if !edge.Has(EdgeWaitAny) {
			continue
		}
		if !n.IsBatched() {
			whole = append(whole, ParentOutput{Type: EdgeWaitAny, Node: n.NodeName, Result: n.Result})
			continue
		}
		for _, b := range n.Batch {
			if index > 0 && b.BatchIndex != index {
				continue
			}
			b.ShouldRun = false
			indexed[b.BatchIndex] = append(indexed[b.BatchIndex], ParentOutput{
				Type:   EdgeWaitAny,
				Node:   b.NodeName,
				Result: b.Result,
				Index:  b.BatchIndex,
			})
		}
	}

	if len(indexed) == 0 {
		if len(whole) == 0 {
			return nil
		}
		return []ReadyNode{{NodeName: target, ParentOutput: whole}}
	}

	keys := make([]int, 0, len(indexed))
	for k := range indexed {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]ReadyNode, 0, len(keys))
	for _, k := range keys {
		outputs := make([]ParentOutput, 0, len(whole)+len(indexed[k]))
		outputs = append(outputs, whole...)
		outputs = append(outputs, indexed[k]...)
		out = append(out, ReadyNode{NodeName: target, ParentOutput: outputs, Index: k})
	}
	return out
}

// nodeResults is the whole-node result of n: empty when skipped, the
// element results when batched, the node result otherwise.
func nodeResults(n *Node) any {
	switch {
	case n.Status == StatusSkipped:
		return []any{}
	case n.IsBatched():
		out := make([]any, len(n.Batch))
		for i, b := range n.Batch {
			out[i] = b.Result
		}
		return out
	default:
		return n.Result
	}
}
