package runner

import (
	"encoding/json"

	"github.com/kbukum/jobgraph/dag"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/validation"
)

// EventType selects what a TaskEvent does to the graph.
type EventType string

const (
	// EventState reports a task state change. It is the default.
	EventState EventType = "state"
	// EventBatch registers the batch elements a node was split into.
	EventBatch EventType = "batch"
	// EventExecution records an execution spawned by an algorithm.
	EventExecution EventType = "execution"
)

// TaskEvent is one message from the task runtime.
type TaskEvent struct {
	Type  EventType `json:"type,omitempty" validate:"omitempty,oneof=state batch execution"`
	JobID string    `json:"jobId" validate:"required"`

	// TaskID names the task for state events. When empty, NodeName selects
	// the node's own task.
	TaskID   string     `json:"taskId,omitempty"`
	NodeName string     `json:"nodeName,omitempty"`
	Status   dag.Status `json:"status,omitempty"`
	Result   any        `json:"result,omitempty"`
	Error    string     `json:"error,omitempty"`
	Warning  string     `json:"warning,omitempty"`

	Batch     []BatchTask          `json:"batch,omitempty" validate:"dive"`
	Execution *dag.ExecutionUpdate `json:"execution,omitempty"`
}

// BatchTask is one batch element of a batch event.
type BatchTask struct {
	TaskID     string `json:"taskId" validate:"required"`
	BatchIndex int    `json:"batchIndex" validate:"min=1"`
	Input      []any  `json:"input,omitempty"`
}

// DecodeEvent parses and validates a JSON task event.
func DecodeEvent(data []byte) (TaskEvent, error) {
	var ev TaskEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return TaskEvent{}, apperrors.InvalidInput("event", err.Error())
	}
	return ev, ev.Validate()
}

// Validate checks the fields the event type needs.
func (e TaskEvent) Validate() error {
	if err := validation.Validate(e); err != nil {
		return err
	}
	switch e.kind() {
	case EventState:
		if e.TaskID == "" && e.NodeName == "" {
			return apperrors.InvalidInput("taskId", "taskId or nodeName is required")
		}
	case EventBatch:
		if e.NodeName == "" || len(e.Batch) == 0 {
			return apperrors.InvalidInput("batch", "nodeName and batch are required")
		}
	case EventExecution:
		if e.Execution == nil {
			return apperrors.InvalidInput("execution", "is required")
		}
	}
	return nil
}

func (e TaskEvent) kind() EventType {
	if e.Type == "" {
		return EventState
	}
	return e.Type
}

// state converts the event's fields to a patch. Empty fields are left out.
func (e TaskEvent) state() dag.TaskState {
	var s dag.TaskState
	if e.Status != "" {
		s.Status = dag.StatusPtr(e.Status)
	}
	s.Result = e.Result
	if e.Error != "" {
		s.Error = &e.Error
	}
	if e.Warning != "" {
		s.Warning = &e.Warning
	}
	return s
}
