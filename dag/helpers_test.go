package dag

import (
	"fmt"
	"testing"
)

func alg(name string, input ...any) NodeSpec {
	return NodeSpec{NodeName: name, AlgorithmName: name + "-alg", Input: input}
}

func sequentialIDs() Option {
	n := 0
	return WithTaskIDGenerator(func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	})
}

func mustBuild(t *testing.T, p *Pipeline, opts ...Option) *NodesMap {
	t.Helper()
	m, err := New(p, append([]Option{sequentialIDs()}, opts...)...)
	if err != nil {
		t.Fatalf("building %q: %v", p.Name, err)
	}
	return m
}

// green -> yellow -> black, white alone.
func simpleFlow() *Pipeline {
	return &Pipeline{
		Name: "simple-flow",
		Nodes: []NodeSpec{
			alg("green", "@flowInput.files"),
			alg("yellow", "@green"),
			alg("black", "@yellow.data"),
			alg("white", "hello"),
		},
		FlowInput: map[string]any{"files": []any{"a", "b"}},
	}
}

// black waits for green and yellow as whole nodes and per index.
func simpleWaitBatch() *Pipeline {
	return &Pipeline{
		Name: "simple-wait-batch",
		Nodes: []NodeSpec{
			alg("green", "#[1,2,3]"),
			alg("yellow", "#[4,5,6]"),
			alg("black", "@green", "@yellow", "*@green", "*@yellow"),
		},
	}
}

func doubleWaitAny() *Pipeline {
	return &Pipeline{
		Name: "double-wait-any",
		Nodes: []NodeSpec{
			alg("green", "#[1,2,3]"),
			alg("yellow", "#[4,5,6]"),
			alg("black", "*@green", "*@yellow"),
		},
	}
}

func complexWaitAny() *Pipeline {
	return &Pipeline{
		Name: "complex-wait-any",
		Nodes: []NodeSpec{
			alg("green", "#[1,2,3]"),
			alg("yellow", "#[4,5,6]"),
			alg("black", "@green", "*@green", "@yellow", "*@yellow"),
		},
	}
}

func simpleWaitAny() *Pipeline {
	return &Pipeline{
		Name: "simple-wait-any",
		Nodes: []NodeSpec{
			alg("green", "#[1,2,3]"),
			alg("yellow", "#[4,5,6]"),
			alg("black", "@green", "*@green", "*@yellow"),
		},
	}
}

// addBatches gives each named node count elements with task ids
// "<node>-<index>".
func addBatches(m *NodesMap, count int, names ...string) {
	for _, name := range names {
		for i := 1; i <= count; i++ {
			m.AddBatch(NewBatch(name, i, fmt.Sprintf("%s-%d", name, i)))
		}
	}
}

func complete(t *testing.T, m *NodesMap, taskID string, result any) [][]ReadyNode {
	t.Helper()
	task, err := m.UpdateTaskState(taskID, TaskState{Status: StatusPtr(StatusSucceed), Result: result})
	if err != nil {
		t.Fatalf("update %s: %v", taskID, err)
	}
	return m.OnTaskCompleted(task)
}

func flatten(r [][]ReadyNode) []ReadyNode {
	var out []ReadyNode
	for _, e := range r {
		out = append(out, e...)
	}
	return out
}

func assertOutput(t *testing.T, got ParentOutput, typ EdgeType, node string, index int) {
	t.Helper()
	if got.Type != typ || got.Node != node || got.Index != index {
		t.Fatalf("expected {%s %s %d}, got {%s %s %d}", typ, node, index, got.Type, got.Node, got.Index)
	}
}
