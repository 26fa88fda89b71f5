package dag

import (
	"errors"
	"reflect"
	"testing"
)

func TestBatchRegistry(t *testing.T) {
	m := mustBuild(t, simpleFlow())

	m.AddBatch(NewBatch("ghost", 1, "x"))
	m.AddBatchList("ghost", []*Batch{NewBatch("ghost", 1, "y")})
	m.RemoveBatch("ghost", "x")

	m.AddBatchList("green", []*Batch{NewBatch("green", 1, "g1"), NewBatch("green", 2, "g2")})
	m.AddBatch(NewBatch("green", 3, "g3"))
	if got := len(m.GetNode("green").Batch); got != 3 {
		t.Fatalf("expected 3 elements, got %d", got)
	}
	m.RemoveBatch("green", "g2")
	if got := len(m.GetNode("green").Batch); got != 2 {
		t.Fatalf("expected 2 elements, got %d", got)
	}

	if _, err := m.AddTaskToBatch(NewBatch("ghost", 1, "z")); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected node not found, got %v", err)
	}
	n, err := m.AddTaskToBatch(NewBatch("green", 3, "g3"))
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Batch) != 2 {
		t.Fatal("known task id must not be added twice")
	}
	if _, err := m.RemoveTaskFromBatch("ghost", "g1"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected node not found, got %v", err)
	}
	n, err = m.RemoveTaskFromBatch("green", "g1")
	if err != nil || len(n.Batch) != 1 {
		t.Fatalf("expected one element left, got %v (err=%v)", n.Batch, err)
	}
}

func TestUpdateTaskState(t *testing.T) {
	m := mustBuild(t, simpleFlow())
	green := m.GetNode("green")

	warn := "slow"
	task, err := m.UpdateTaskState(green.TaskID, TaskState{Status: StatusPtr(StatusActive), Warning: &warn})
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != StatusActive || green.Status != StatusActive {
		t.Fatalf("expected active, got %s", task.Status)
	}
	if _, err := m.UpdateTaskState(green.TaskID, TaskState{Warning: &warn}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(green.Warnings, []string{"slow", "slow"}) {
		t.Fatalf("warnings must accumulate, got %v", green.Warnings)
	}
	if green.Status != StatusActive {
		t.Fatal("nil status must leave status unchanged")
	}

	if _, err := m.UpdateTaskState("unknown", TaskState{}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected task not found, got %v", err)
	}

	m.AddBatch(NewBatch("green", 1, "g1"))
	if _, err := m.UpdateTaskState(green.TaskID, TaskState{}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatal("batched node must only be reachable through its elements")
	}
	task, err = m.UpdateTaskState("g1", TaskState{Status: StatusPtr(StatusFailed), Error: strPtr("boom")})
	if err != nil {
		t.Fatal(err)
	}
	if task.BatchIndex != 1 || task.NodeName != "green" || task.Error != "boom" {
		t.Fatalf("unexpected batch task %+v", task)
	}
	if got, ok := m.TaskByID("g1"); !ok || got.Status != StatusFailed {
		t.Fatalf("unexpected lookup %+v", got)
	}
}

func strPtr(s string) *string { return &s }

func TestNodeStates(t *testing.T) {
	m := mustBuild(t, simpleFlow())
	states, err := m.NodeStates("green")
	if err != nil || !reflect.DeepEqual(states, []Status{StatusCreating}) {
		t.Fatalf("unexpected states %v (err=%v)", states, err)
	}
	addBatches(m, 2, "green")
	complete(t, m, "green-1", nil)
	states, _ = m.NodeStates("green")
	if !reflect.DeepEqual(states, []Status{StatusSucceed, StatusCreating}) {
		t.Fatalf("unexpected batch states %v", states)
	}
	if done, _ := m.IsNodeCompleted("green"); done {
		t.Fatal("green is not completed")
	}
	if _, err := m.NodeStates("ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected node not found, got %v", err)
	}
}

func TestIsAllNodesCompleted(t *testing.T) {
	m := mustBuild(t, simpleFlow())
	if m.IsAllNodesCompleted() {
		t.Fatal("fresh graph is not completed")
	}
	for _, n := range m.AllNodes() {
		complete(t, m, n.TaskID, nil)
	}
	if !m.IsAllNodesCompleted() {
		t.Fatal("expected all nodes completed")
	}
}

func TestUpdateAlgorithmExecution(t *testing.T) {
	m := mustBuild(t, &Pipeline{Name: "one-node", Nodes: []NodeSpec{alg("green")}})

	u := ExecutionUpdate{
		NodeName:       "green:new-algorithm",
		ParentNodeName: "green",
		AlgorithmName:  "new-algorithm",
		TaskID:         "execId-1",
	}
	exec1, err := m.UpdateAlgorithmExecution(u)
	if err != nil {
		t.Fatal(err)
	}
	if exec1.Status != "" || exec1.BatchIndex != 1 || exec1.Level != 1 {
		t.Fatalf("unexpected first execution %+v", exec1)
	}
	execNode := m.GetNode(u.NodeName)
	if execNode == nil || !execNode.AlgorithmExecution || execNode.Level != 1 {
		t.Fatalf("unexpected execution node %+v", execNode)
	}
	if !reflect.DeepEqual(m.EdgeTypes("green", u.NodeName), []EdgeType{EdgeAlgorithmExecution}) {
		t.Fatal("expected execution edge")
	}

	u.Status = StatusSucceed
	u.Result = "done"
	exec2, err := m.UpdateAlgorithmExecution(u)
	if err != nil {
		t.Fatal(err)
	}
	if exec2 != exec1 || exec2.Status != StatusSucceed || exec2.Result != "done" {
		t.Fatalf("expected merged execution, got %+v", exec2)
	}

	u.TaskID = "execId-2"
	exec3, _ := m.UpdateAlgorithmExecution(u)
	if exec3.BatchIndex != 2 {
		t.Fatalf("expected second index, got %d", exec3.BatchIndex)
	}

	if _, err := m.UpdateAlgorithmExecution(ExecutionUpdate{ParentNodeName: "ghost"}); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected node not found, got %v", err)
	}
}

func TestPipelineResults(t *testing.T) {
	p := &Pipeline{
		Name: "batch",
		Nodes: []NodeSpec{
			{NodeName: "green", AlgorithmName: "g", IncludeInResults: true},
			alg("yellow", "@green"),
		},
	}
	m := mustBuild(t, p)
	if _, err := m.UpdateAlgorithmExecution(ExecutionUpdate{
		TaskID: "e1", NodeName: "yellow:sub", ParentNodeName: "yellow",
	}); err != nil {
		t.Fatal(err)
	}

	results := m.PipelineResults()
	if len(results) != 2 || results[0].NodeName != "green" || results[1].NodeName != "yellow" {
		t.Fatalf("unexpected results %+v", results)
	}

	addBatches(m, 2, "yellow")
	results = m.PipelineResults()
	if len(results) != 3 || results[1].BatchIndex != 1 || results[2].BatchIndex != 2 {
		t.Fatalf("expected one entry per element, got %+v", results)
	}
}

func TestPipelineResults_Diamond(t *testing.T) {
	diamond := func(includeB bool) *Pipeline {
		b := alg("b", "@a")
		b.IncludeInResults = includeB
		return &Pipeline{
			Name: "diamond",
			Nodes: []NodeSpec{
				alg("a"),
				b,
				alg("c", "@a"),
				alg("d", "@b", "@c"),
			},
		}
	}
	names := func(results []NodeResult) []string {
		out := make([]string, len(results))
		for i, r := range results {
			out[i] = r.NodeName
		}
		return out
	}

	m := mustBuild(t, diamond(false))
	complete(t, m, m.GetNode("d").TaskID, "done")
	results := m.PipelineResults()
	if got := names(results); !reflect.DeepEqual(got, []string{"d"}) {
		t.Fatalf("expected only the sink, got %v", got)
	}
	if results[0].Result != "done" {
		t.Fatalf("expected sink result, got %v", results[0].Result)
	}

	m = mustBuild(t, diamond(true))
	if got := names(m.PipelineResults()); !reflect.DeepEqual(got, []string{"b", "d"}) {
		t.Fatalf("flagged node must be added, got %v", got)
	}
}

func TestResultsQueries(t *testing.T) {
	m := mustBuild(t, simpleWaitBatch())
	addBatches(m, 2, "green", "yellow")
	complete(t, m, "green-1", "g1")
	complete(t, m, "yellow-1", "y1")

	got := m.ParentsResultsIndex("black", 1)
	want := []ParentResult{{Node: "green", Result: "g1"}, {Node: "yellow", Result: "y1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if r := m.ParentsResultsIndex("black", 9); r[0].Result != nil {
		t.Fatal("missing index must report nil")
	}

	res, err := m.NodeResults("green")
	if err != nil || !reflect.DeepEqual(res, []any{"g1", nil}) {
		t.Fatalf("unexpected node results %v (err=%v)", res, err)
	}
	if _, err := m.NodeResults("ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected node not found, got %v", err)
	}
}

func TestExtractPaths(t *testing.T) {
	p := &Pipeline{
		Name: "paths",
		Nodes: []NodeSpec{
			alg("a"),
			alg("b", "@a.data.items", "@a"),
			alg("c", map[string]any{"x": "*@a.meta"}),
		},
	}
	m := mustBuild(t, p)
	if got := m.ExtractPaths("a"); !reflect.DeepEqual(got, []string{"data.items", "meta"}) {
		t.Fatalf("unexpected paths %v", got)
	}
}

func TestSetNodeAndUpdateEdge(t *testing.T) {
	m := mustBuild(t, simpleFlow())
	id := "custom"
	if !m.SetNode("green", NodePatch{TaskID: &id, ExtraData: map[string]any{"k": 1}}) {
		t.Fatal("expected node to be patched")
	}
	if m.SetNode("ghost", NodePatch{}) {
		t.Fatal("unknown node must report false")
	}
	g := m.GetNode("green")
	if g.TaskID != "custom" || g.ExtraData["k"] != 1 || g.AlgorithmName != "green-alg" {
		t.Fatalf("unexpected merge result %+v", g)
	}

	m.UpdateEdge("green", "yellow", EdgeValue{Props: map[string]any{"prop": 5}})
	e, _ := m.GetEdge("green", "yellow")
	if e.Props["prop"] != 5 || !e.Has(EdgeWaitNode) {
		t.Fatalf("expected merged edge, got %+v", e)
	}
	edges := m.Edges()
	if len(edges) != 2 || edges[0].Source != "green" || edges[0].Target != "yellow" {
		t.Fatalf("unexpected edges %+v", edges)
	}
}
