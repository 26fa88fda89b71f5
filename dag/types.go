package dag

import "github.com/kbukum/jobgraph/parser"

// PipelineKind selects batch or streaming semantics.
type PipelineKind string

const (
	PipelineKindBatch  PipelineKind = "batch"
	PipelineKindStream PipelineKind = "stream"
)

// NodeKind is the role of a node in the pipeline.
type NodeKind string

const (
	NodeKindAlgorithm  NodeKind = "algorithm"
	NodeKindPipeline   NodeKind = "pipeline"
	NodeKindOutput     NodeKind = "output"
	NodeKindDataSource NodeKind = "dataSource"
	NodeKindGateway    NodeKind = "gateway"
	NodeKindDebug      NodeKind = "debug"
)

// StateType tells whether a node keeps state between inputs.
type StateType string

const (
	StateTypeStateless StateType = "stateless"
	StateTypeStateful  StateType = "stateful"
)

// EdgeType labels the relation between a parent and a child.
type EdgeType string

const (
	EdgeInput              = EdgeType(parser.RelationInput)
	EdgeWaitNode           = EdgeType(parser.RelationWaitNode)
	EdgeWaitBatch          = EdgeType(parser.RelationWaitBatch)
	EdgeWaitAny            = EdgeType(parser.RelationWaitAny)
	EdgeAlgorithmExecution = EdgeType(parser.RelationAlgorithmExecution)
)

// Status is the lifecycle state of a node, batch element or execution.
type Status string

const (
	StatusCreating Status = "creating"
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusStoring  Status = "storing"
	StatusSucceed  Status = "succeed"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusStalled  Status = "stalled"
	StatusCrashed  Status = "crashed"
	StatusWarning  Status = "warning"
)

// Completed reports whether the status is succeed, failed or skipped.
// Stalled and crashed tasks are retried by the runtime and do not count.
func (s Status) Completed() bool {
	switch s {
	case StatusSucceed, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// CompletedOrStoring is Completed or StatusStoring. Readiness checks treat a
// storing parent as finished.
func (s Status) CompletedOrStoring() bool {
	return s == StatusStoring || s.Completed()
}

// StatusPtr returns a pointer to s, for building TaskState patches.
func StatusPtr(s Status) *Status { return &s }
