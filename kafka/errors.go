package kafka

import (
	"strings"

	apperrors "github.com/kbukum/jobgraph/errors"
)

var (
	connectionPatterns = []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection closed",
		"dial tcp",
	}
	retryablePatterns = []string{
		"temporary",
		"request timed out",
		"not enough replicas",
	}
)

func matchAny(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsConnectionError checks if a Kafka error is a connection-level error.
func IsConnectionError(err error) bool {
	return matchAny(err, connectionPatterns)
}

// IsRetryableError determines if a Kafka error should trigger a retry.
func IsRetryableError(err error) bool {
	return IsConnectionError(err) || matchAny(err, retryablePatterns)
}

// FromKafka converts a Kafka error into an AppError tagged with the topic.
func FromKafka(err error, topic string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if IsConnectionError(err) {
		return apperrors.ConnectionFailed("kafka", err).WithDetail("topic", topic)
	}
	appErr := apperrors.New(apperrors.ErrCodeInternal, "kafka operation failed").
		WithCause(err).
		WithDetail("topic", topic)
	appErr.Retryable = IsRetryableError(err)
	return appErr
}
