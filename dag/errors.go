package dag

import apperrors "github.com/kbukum/jobgraph/errors"

// Rejection reasons carried by INVALID_PIPELINE errors.
const (
	ReasonStatefulOnBatch   = "stateful_on_batch"
	ReasonMissingAlgorithm  = "missing_algorithm"
	ReasonMissingPipeline   = "missing_pipeline"
	ReasonDuplicateNode     = "duplicate_node"
	ReasonReservedName      = "reserved_name"
	ReasonFlowInput         = "flow_input"
	ReasonMissingNode       = "missing_node"
	ReasonStreamReference   = "stream_reference"
	ReasonOutputOnStream    = "output_on_stream"
	ReasonOutputHasChildren = "output_has_children"
	ReasonOutputNoParents   = "output_no_parents"
	ReasonStatelessEntry    = "stateless_entry"
	ReasonCycleOnBatch      = "cycle_on_batch"
)

// Sentinels for errors.Is.
var (
	ErrInvalidPipeline   = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, "")
	ErrStatefulOnBatch   = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonStatefulOnBatch)
	ErrMissingAlgorithm  = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonMissingAlgorithm)
	ErrMissingPipeline   = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonMissingPipeline)
	ErrDuplicateNode     = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonDuplicateNode)
	ErrReservedName      = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonReservedName)
	ErrFlowInput         = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonFlowInput)
	ErrMissingNode       = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonMissingNode)
	ErrStreamReference   = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonStreamReference)
	ErrOutputOnStream    = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonOutputOnStream)
	ErrOutputHasChildren = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonOutputHasChildren)
	ErrOutputNoParents   = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonOutputNoParents)
	ErrStatelessEntry    = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonStatelessEntry)
	ErrCycleOnBatch      = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline, ReasonCycleOnBatch)

	ErrNodeNotFound = apperrors.Sentinel(apperrors.ErrCodeNodeNotFound, "")
	ErrTaskNotFound = apperrors.Sentinel(apperrors.ErrCodeTaskNotFound, "")
)
