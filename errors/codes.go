package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Definition errors (user-facing pipeline rejections)
const (
	// ErrCodeInvalidPipeline indicates the pipeline definition violates a structural rule.
	ErrCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"
	// ErrCodeInvalidInput indicates a malformed argument or descriptor field.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Lookup errors (internal-consistency faults)
const (
	// ErrCodeNodeNotFound indicates a node name that is not part of the graph.
	ErrCodeNodeNotFound ErrorCode = "NODE_NOT_FOUND"
	// ErrCodeTaskNotFound indicates a task id that no node or batch element owns.
	ErrCodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"
	// ErrCodeNotFound indicates a generic missing resource.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Infrastructure errors
const (
	// ErrCodeStorage indicates a persistence backend failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeConnectionFailed indicates a failed connection to a backend.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage:          true,
	ErrCodeConnectionFailed: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
