package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/dispatch"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/persistence"
)

func alg(name string, input ...any) dag.NodeSpec {
	return dag.NodeSpec{NodeName: name, AlgorithmName: name + "-alg", Input: input}
}

// a -> b -> c
func chain() *dag.Pipeline {
	return &dag.Pipeline{
		Name:  "chain",
		Nodes: []dag.NodeSpec{alg("a", "@flowInput.x"), alg("b", "@a"), alg("c", "@b.data")},
	}
}

func doubleWaitAny() *dag.Pipeline {
	return &dag.Pipeline{
		Name: "double-wait-any",
		Nodes: []dag.NodeSpec{
			alg("green", "#[1,2]"),
			alg("yellow", "#[3,4]"),
			alg("black", "*@green", "*@yellow"),
		},
	}
}

func sequentialIDs() dag.Option {
	var mu sync.Mutex
	n := 0
	return dag.WithTaskIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("task-%d", n)
	})
}

type fixture struct {
	runner    *Runner
	store     *persistence.MemoryStore
	collector *dispatch.Collector
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := persistence.NewMemoryStore(0)
	collector := dispatch.NewCollector()
	bus := dispatch.NewBus(nil, nil)
	if err := bus.Subscribe("collector", "*", collector.Handle); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	opts = append([]Option{WithGraphOptions(sequentialIDs())}, opts...)
	return &fixture{runner: New(store, bus, opts...), store: store, collector: collector}
}

func succeed(jobID, node string, result any) TaskEvent {
	return TaskEvent{JobID: jobID, NodeName: node, Status: dag.StatusSucceed, Result: result}
}

func TestRunner_ChainToCompletion(t *testing.T) {
	var completed []dag.NodeResult
	f := newFixture(t, WithCompletionHandler(func(_ context.Context, jobID string, results []dag.NodeResult) {
		if jobID != "job-1" {
			t.Errorf("unexpected job %s", jobID)
		}
		completed = results
	}))
	ctx := context.Background()

	ready, err := f.runner.Submit(ctx, "job-1", chain())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(ready) != 1 || ready[0].NodeName != "a" {
		t.Fatalf("expected entry node a, got %+v", ready)
	}
	if got := f.collector.Drain("job-1"); len(got) != 1 {
		t.Fatalf("expected entry node dispatched, got %+v", got)
	}

	ready, err = f.runner.HandleEvent(ctx, succeed("job-1", "a", "A"))
	if err != nil {
		t.Fatalf("HandleEvent a: %v", err)
	}
	if len(ready) != 1 || ready[0].NodeName != "b" {
		t.Fatalf("expected b ready, got %+v", ready)
	}
	po := ready[0].ParentOutput
	if len(po) != 1 || po[0].Node != "a" || po[0].Result != "A" {
		t.Fatalf("unexpected parent output %+v", po)
	}

	if _, err := f.runner.HandleEvent(ctx, succeed("job-1", "b", "B")); err != nil {
		t.Fatalf("HandleEvent b: %v", err)
	}
	if completed != nil {
		t.Fatal("job must not complete before c")
	}
	ready, err = f.runner.HandleEvent(ctx, succeed("job-1", "c", "C"))
	if err != nil || len(ready) != 0 {
		t.Fatalf("sink completion should be quiet, ready=%+v err=%v", ready, err)
	}
	if len(completed) != 1 || completed[0].NodeName != "c" || completed[0].Result != "C" {
		t.Fatalf("unexpected results %+v", completed)
	}

	dispatched := f.collector.Ready("job-1")
	if len(dispatched) != 2 || dispatched[0].NodeName != "b" || dispatched[1].NodeName != "c" {
		t.Fatalf("unexpected dispatched nodes %+v", dispatched)
	}
}

func TestRunner_ActiveStatusDoesNotPropagate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.runner.Submit(ctx, "job", chain()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ready, err := f.runner.HandleEvent(ctx, TaskEvent{JobID: "job", TaskID: "task-1", Status: dag.StatusActive})
	if err != nil || len(ready) != 0 {
		t.Fatalf("active should not propagate, ready=%+v err=%v", ready, err)
	}
	st, err := f.runner.Inspect(ctx, "job")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if st.Nodes[0].Name != "a" || st.Nodes[0].Status != dag.StatusActive {
		t.Fatalf("expected a active, got %+v", st.Nodes[0])
	}
	if st.Completed || st.Results != nil {
		t.Fatal("job should not be completed")
	}
}

func TestRunner_BatchEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.runner.Submit(ctx, "job", doubleWaitAny()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, node := range []string{"green", "yellow"} {
		ev := TaskEvent{Type: EventBatch, JobID: "job", NodeName: node, Batch: []BatchTask{
			{TaskID: node + "-1", BatchIndex: 1},
			{TaskID: node + "-2", BatchIndex: 2},
		}}
		if _, err := f.runner.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("batch event %s: %v", node, err)
		}
	}

	if ready, err := f.runner.HandleEvent(ctx, TaskEvent{JobID: "job", TaskID: "green-1", Status: dag.StatusSucceed, Result: "g1"}); err != nil || len(ready) != 0 {
		t.Fatalf("black must wait for yellow-1, ready=%+v err=%v", ready, err)
	}
	ready, err := f.runner.HandleEvent(ctx, TaskEvent{JobID: "job", TaskID: "yellow-1", Status: dag.StatusSucceed, Result: "y1"})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(ready) != 1 || ready[0].NodeName != "black" || ready[0].Index != 1 {
		t.Fatalf("expected black at index 1, got %+v", ready)
	}

	st, _ := f.runner.Inspect(ctx, "job")
	if st.Nodes[0].Batch != 2 {
		t.Fatalf("expected two green batch elements, got %+v", st.Nodes[0])
	}
}

func TestRunner_ExecutionEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.runner.Submit(ctx, "job", chain()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ev := TaskEvent{Type: EventExecution, JobID: "job", Execution: &dag.ExecutionUpdate{
		TaskID: "exec-1", NodeName: "a:exec", ParentNodeName: "a", Status: dag.StatusActive,
	}}
	if _, err := f.runner.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	st, _ := f.runner.Inspect(ctx, "job")
	if len(st.Nodes) != 4 || st.Nodes[3].Name != "a:exec" || st.Nodes[3].Level != 1 {
		t.Fatalf("expected execution node below a, got %+v", st.Nodes)
	}
}

func TestRunner_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.runner.HandleEvent(ctx, succeed("missing", "a", nil)); !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown job, got %v", err)
	}
	if _, err := f.runner.Submit(ctx, "", chain()); !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input for empty job id, got %v", err)
	}
	if _, err := f.runner.Submit(ctx, "job", chain()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.runner.Submit(ctx, "job", chain()); !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected duplicate submit to fail, got %v", err)
	}
	if _, err := f.runner.HandleEvent(ctx, succeed("job", "nope", nil)); !apperrors.HasCode(err, apperrors.ErrCodeNodeNotFound) {
		t.Fatalf("expected NODE_NOT_FOUND, got %v", err)
	}
	if _, err := f.runner.HandleEvent(ctx, TaskEvent{JobID: "job", TaskID: "nope", Status: dag.StatusSucceed}); !apperrors.HasCode(err, apperrors.ErrCodeTaskNotFound) {
		t.Fatalf("expected TASK_NOT_FOUND, got %v", err)
	}
	if _, err := f.runner.HandleEvent(ctx, TaskEvent{JobID: "job"}); err == nil {
		t.Fatal("expected error for event without task")
	}

	bad := &dag.Pipeline{Name: "cycle", Nodes: []dag.NodeSpec{alg("a", "@b"), alg("b", "@a")}}
	if _, err := f.runner.Submit(ctx, "cyclic", bad); err == nil {
		t.Fatal("expected cyclic batch pipeline to be rejected")
	}
	if jobs, _ := f.runner.Jobs(ctx); len(jobs) != 1 || jobs[0] != "job" {
		t.Fatalf("rejected pipelines must not be stored, got %v", jobs)
	}
}

func TestRunner_DispatchFailureStillSaves(t *testing.T) {
	store := persistence.NewMemoryStore(0)
	bus := dispatch.NewBus(nil, nil)
	boom := errors.New("broker down")
	_ = bus.Subscribe("failing", "*", func(context.Context, string, []dag.ReadyNode) error { return boom })
	r := New(store, bus, WithGraphOptions(sequentialIDs()))
	ctx := context.Background()

	if _, err := r.Submit(ctx, "job", chain()); !errors.Is(err, boom) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatal("graph must be stored before dispatch")
	}
	ready, err := r.HandleEvent(ctx, succeed("job", "a", "A"))
	if !errors.Is(err, boom) || len(ready) != 1 {
		t.Fatalf("expected ready nodes with dispatch error, ready=%+v err=%v", ready, err)
	}
}

func TestRunner_DeleteOnComplete(t *testing.T) {
	f := newFixture(t, WithDeleteOnComplete(true))
	ctx := context.Background()
	p := &dag.Pipeline{Name: "single", Nodes: []dag.NodeSpec{alg("only")}}
	if _, err := f.runner.Submit(ctx, "job", p); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.runner.HandleEvent(ctx, succeed("job", "only", 1)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if f.store.Len() != 0 {
		t.Fatal("completed job should be removed")
	}
}

func TestRunner_ConcurrentEventsPerJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &dag.Pipeline{Name: "fan-in", Nodes: []dag.NodeSpec{alg("a"), alg("b"), alg("c"), alg("d", "@a", "@b", "@c")}}
	if _, err := f.runner.Submit(ctx, "job", p); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var wg sync.WaitGroup
	for _, n := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.runner.HandleEvent(ctx, succeed("job", n, n)); err != nil {
				t.Errorf("HandleEvent %s: %v", n, err)
			}
		}()
	}
	wg.Wait()

	ready := f.collector.Drain("job")
	var d int
	for _, r := range ready {
		if r.NodeName == "d" {
			d++
		}
	}
	if d != 1 {
		t.Fatalf("expected d dispatched exactly once, got %d in %+v", d, ready)
	}
}

func TestRunner_HandleMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.runner.Submit(ctx, "job", chain()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	msg := kafkago.Message{Key: []byte("job"), Value: []byte(`{"nodeName":"a","status":"succeed","result":"A"}`)}
	if err := f.runner.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if got := f.collector.Ready("job"); len(got) != 2 || got[1].NodeName != "b" {
		t.Fatalf("expected b dispatched, got %+v", got)
	}

	if err := f.runner.HandleMessage(ctx, kafkago.Message{Value: []byte("not json")}); !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input for garbage, got %v", err)
	}
}

func TestRunner_Forget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.runner.Submit(ctx, "job", chain())
	if err := f.runner.Forget(ctx, "job"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, err := f.runner.Inspect(ctx, "job"); !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND after Forget, got %v", err)
	}
}
