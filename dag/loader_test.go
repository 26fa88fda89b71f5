package dag

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadPipeline_FromFile(t *testing.T) {
	p, err := LoadPipeline("simple-wait-batch", filepath.Join("testdata", "simple-wait-batch.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "simple-wait-batch" || p.Kind != PipelineKindBatch {
		t.Fatalf("unexpected pipeline %q (%s)", p.Name, p.Kind)
	}
	if len(p.Nodes) != 3 || len(p.Edges) != 1 {
		t.Fatalf("expected 3 nodes and 1 edge, got %d/%d", len(p.Nodes), len(p.Edges))
	}
	if !reflect.DeepEqual(p.Edges[0].Types, []EdgeType{EdgeWaitAny}) {
		t.Fatalf("unexpected edge types %v", p.Edges[0].Types)
	}
	if _, ok := p.Nodes[1].Input[0].(map[string]any); !ok {
		t.Fatalf("expected object input decoded as map, got %T", p.Nodes[1].Input[0])
	}

	m, err := New(p, WithFlowInputCheck(true))
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	// The reference edge from yellow's inputs does not exist, so the
	// explicit edge is added with WaitNode first.
	if !reflect.DeepEqual(m.EdgeTypes("green", "yellow"), []EdgeType{EdgeWaitNode, EdgeWaitAny}) {
		t.Fatalf("unexpected explicit edge %v", m.EdgeTypes("green", "yellow"))
	}
}

func TestFilePipelineLoader_Load(t *testing.T) {
	loader := NewFilePipelineLoader("testdata")
	p, err := loader.Load("stream")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsStream() {
		t.Fatal("expected stream pipeline")
	}
	m, err := New(p)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if m.GetNode("gw").StateType != StateTypeStateful {
		t.Fatal("expected gateway default")
	}
}

func TestFilePipelineLoader_Subdirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "team")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "name: nested\nnodes:\n  - nodeName: a\n    algorithmName: a\n"
	if err := os.WriteFile(filepath.Join(sub, "nested.yml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFilePipelineLoader(dir).Load("nested")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "nested" || !p.IsBatch() {
		t.Fatalf("unexpected pipeline %+v", p)
	}
}

func TestFilePipelineLoader_NotFound(t *testing.T) {
	loader := NewFilePipelineLoader(t.TempDir())
	if _, err := loader.Load("nonexistent"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParsePipeline_Invalid(t *testing.T) {
	if _, err := ParsePipeline([]byte("nodes: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
