// Package errors provides the standardized error taxonomy for the
// conversational pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeAggregationDegraded ErrorCode = "AGGREGATION_DEGRADED"

	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"

	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable unknown-session error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAggregationDegradedError records a failed domain aggregation query. It is
// handled locally by substituting a zero-valued summary and never surfaces to
// the caller.
func NewAggregationDegradedError(domain string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAggregationDegraded,
		Message:   "Domain aggregation query failed",
		Details:   fmt.Sprintf("domain: %s, error: %s", domain, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a non-retryable model invocation error.
// The turn is lost; the caller must resubmit the prompt.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Model invocation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a model invocation timeout error.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Model invocation timed out",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a retryable persistence error. All writes
// of the failed atomic unit have been rolled back.
func NewPersistenceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Conversation persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// AsStandard extracts a *StandardError from err, or nil.
func AsStandard(err error) *StandardError {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se
	}
	return nil
}

// Code returns the error code of err, or empty when err carries none.
func Code(err error) ErrorCode {
	if se := AsStandard(err); se != nil {
		return se.Code
	}
	return ""
}

// HTTPStatus maps an error to the status code returned by the API layer.
// Validation and generation failures are client-facing; persistence failures
// are server-side and retryable.
func HTTPStatus(err error) int {
	switch Code(err) {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeGenerationFailed, ErrCodeGenerationTimeout:
		return http.StatusBadGateway
	case ErrCodePersistenceFailed, ErrCodeDatabaseConnectionFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
