package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Reason narrows Code to a specific rule, e.g. "duplicate_node".
	Reason string `json:"reason,omitempty"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code. A target
// with a reason only matches errors carrying that reason.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinel returns a matcher for errors.Is with the given code and reason.
// It is never returned as an error itself.
func Sentinel(code ErrorCode, reason string) *AppError {
	return &AppError{Code: code, Reason: reason}
}

// --- Common Error Constructors ---

// InvalidPipeline creates an error for a rejected pipeline definition.
func InvalidPipeline(reason, format string, args ...any) *AppError {
	return &AppError{
		Code: ErrCodeInvalidPipeline, Reason: reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// NodeNotFound creates an error for an unknown node name.
func NodeNotFound(name string) *AppError {
	return &AppError{
		Code: ErrCodeNodeNotFound, Message: fmt.Sprintf("unable to find node %s", name),
		Details: map[string]any{"node": name},
	}
}

// TaskNotFound creates an error for an unknown task id.
func TaskNotFound(taskID string) *AppError {
	return &AppError{
		Code: ErrCodeTaskNotFound, Message: fmt.Sprintf("unable to find task %s", taskID),
		Details: map[string]any{"task": taskID},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("the requested %s was not found", resource),
		Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for struct validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// StorageError wraps a persistence backend failure.
func StorageError(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("storage %s failed", op),
		Retryable: true, Cause: cause,
		Details: map[string]any{"operation": op},
	}
}

// ConnectionFailed creates a new AppError for a failed connection to a backend.
func ConnectionFailed(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("unable to connect to %s", service),
		Retryable: true, Cause: cause,
		Details: map[string]any{"service": service},
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Cause: cause,
	}
}

// --- Helpers ---

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain contains an *AppError with the code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err's chain contains a retryable *AppError.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}
