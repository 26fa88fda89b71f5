package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/jobgraph/errors"
)

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"connection closed",
	"driver: bad connection",
	"database is locked",
}

// IsConnectionError reports whether err looks like a transient connection
// failure that a retry might resolve.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range connectionPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a database error into an AppError. op names the
// operation that failed and resource the entity it touched.
func FromDatabase(err error, op, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if IsNotFoundError(err) {
		return apperrors.NotFound(resource, "").WithCause(err)
	}
	if IsConnectionError(err) {
		return apperrors.ConnectionFailed("database", err)
	}
	return apperrors.StorageError(op, err).WithDetail("resource", resource)
}
