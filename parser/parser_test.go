package parser

import (
	"reflect"
	"testing"
)

func TestExtractNodesFromInput(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []Reference
	}{
		{"plain", "@green", []Reference{{NodeName: "green", Type: RelationWaitNode}}},
		{"path", "@green.data.items", []Reference{{NodeName: "green", Path: "data.items", Type: RelationWaitNode}}},
		{"batch", "#@green", []Reference{{NodeName: "green", Type: RelationWaitBatch}}},
		{"any", "*@green.x", []Reference{{NodeName: "green", Path: "x", Type: RelationWaitAny}}},
		{"literal", "hello", nil},
		{"number", 42, nil},
		{"flow input", "@flowInput.files", nil},
		{"data source", "@dataSource.name", nil},
		{"bare at", "@", nil},
		{"nested", []any{"@a", map[string]any{"y": "*@c", "x": []any{"#@b"}}}, []Reference{
			{NodeName: "a", Type: RelationWaitNode},
			{NodeName: "b", Type: RelationWaitBatch},
			{NodeName: "c", Type: RelationWaitAny},
		}},
	}
	p := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ExtractNodesFromInput(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckFlowInput(t *testing.T) {
	p := Default()
	flow := map[string]any{
		"files": map[string]any{"link": "x"},
		"list":  []any{1, 2},
	}

	if err := p.CheckFlowInput(flow, []any{"@flowInput.files.link", "@flowInput.list.1", "@green"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := p.CheckFlowInput(flow, "#@flowInput.missing")
	if err == nil || err.Error() != "unable to find flowInput.missing" {
		t.Fatalf("expected missing path error, got %v", err)
	}
	if err := p.CheckFlowInput(nil, "@flowInput.files"); err == nil {
		t.Fatal("expected error without flow input")
	}
}

func TestLookup(t *testing.T) {
	v := map[string]any{"a": []any{map[string]any{"b": "c"}}}
	got, ok := Lookup(v, "a.0.b")
	if !ok || got != "c" {
		t.Fatalf("expected c, got %v (ok=%v)", got, ok)
	}
	if _, ok := Lookup(v, "a.5"); ok {
		t.Fatal("expected out-of-range index to fail")
	}
	if _, ok := Lookup(v, "a.0.b.c"); ok {
		t.Fatal("expected descent into scalar to fail")
	}
}
