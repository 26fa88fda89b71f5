package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	if New(ErrCodeStorage, "down").Retryable != true {
		t.Error("STORAGE_ERROR should be retryable")
	}
	if New(ErrCodeInvalidPipeline, "bad").Retryable {
		t.Error("INVALID_PIPELINE should not be retryable")
	}
}

func TestAppError_InvalidPipeline_Message(t *testing.T) {
	err := InvalidPipeline("duplicate_node", "found duplicate node %q", "green")
	if err.Code != ErrCodeInvalidPipeline {
		t.Errorf("expected INVALID_PIPELINE, got %s", err.Code)
	}
	if err.Message != `found duplicate node "green"` {
		t.Errorf("unexpected message %q", err.Message)
	}
	if !strings.Contains(err.Error(), "INVALID_PIPELINE") {
		t.Errorf("expected code in Error(), got %q", err.Error())
	}
}

func TestAppError_Is_Reason(t *testing.T) {
	err := InvalidPipeline("cyclic", "cyclic nodes are not allowed on batch pipeline")
	wrapped := fmt.Errorf("build: %w", err)

	if !stderrors.Is(wrapped, Sentinel(ErrCodeInvalidPipeline, "cyclic")) {
		t.Error("expected match on code and reason")
	}
	if !stderrors.Is(wrapped, Sentinel(ErrCodeInvalidPipeline, "")) {
		t.Error("expected match on code alone")
	}
	if stderrors.Is(wrapped, Sentinel(ErrCodeInvalidPipeline, "duplicate_node")) {
		t.Error("expected no match on different reason")
	}
	if stderrors.Is(wrapped, Sentinel(ErrCodeNodeNotFound, "")) {
		t.Error("expected no match on different code")
	}
}

func TestAppError_NotFoundConstructors(t *testing.T) {
	if err := NodeNotFound("green"); err.Message != "unable to find node green" || err.Details["node"] != "green" {
		t.Errorf("unexpected node error: %+v", err)
	}
	if err := TaskNotFound("t1"); err.Message != "unable to find task t1" || err.Code != ErrCodeTaskNotFound {
		t.Errorf("unexpected task error: %+v", err)
	}
	if err := NotFound("graph", ""); err.Details["id"] != nil {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_StorageError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := StorageError("save", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find cause")
	}
	if !IsRetryable(fmt.Errorf("wrap: %w", err)) {
		t.Error("expected wrapped storage error to be retryable")
	}
	if !HasCode(err, ErrCodeStorage) {
		t.Error("expected STORAGE_ERROR code")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAsAppError_Plain(t *testing.T) {
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected plain error not to convert")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil error has no code")
	}
}
