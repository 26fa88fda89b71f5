package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/jobgraph/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "green")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New().OneOf("type", "redis", "redis", "database")
	if v.HasErrors() {
		t.Errorf("unexpected errors: %v", v.Errors())
	}

	v2 := New().OneOf("type", "mongo", "redis", "database")
	err := v2.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "type: must be one of") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidatorDuration(t *testing.T) {
	if New().Duration("ttl", "").HasErrors() {
		t.Error("empty duration should pass")
	}
	if !New().Duration("ttl", "ten").HasErrors() {
		t.Error("expected invalid duration error")
	}
}

func TestValidatorCollectsAll(t *testing.T) {
	v := New()
	v.Required("a", "").Check(false, "b", "is wrong")
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
	if !stderrors.Is(v.Validate(), errors.Sentinel(errors.ErrCodeInvalidInput, "")) {
		t.Error("expected INVALID_INPUT app error")
	}
}

type testNode struct {
	NodeName string `json:"nodeName" validate:"required"`
}

type testPipeline struct {
	Name  string     `json:"name" validate:"required"`
	Kind  string     `json:"kind" validate:"omitempty,oneof=batch stream"`
	Nodes []testNode `json:"nodes" validate:"dive"`
}

func TestValidate_Struct(t *testing.T) {
	ok := testPipeline{Name: "p", Kind: "batch", Nodes: []testNode{{NodeName: "a"}}}
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := testPipeline{Kind: "other", Nodes: []testNode{{}}}
	err := Validate(bad)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"name: is required", "kind: must be one of: batch stream", "nodes[0].nodeName: is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	appErr, _ := errors.AsAppError(err)
	if fields, ok := appErr.Details["fields"].([]FieldError); !ok || len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
}
