// Package errors provides standardized error handling for the matching engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePlanNotFound     ErrorCode = "PLAN_NOT_FOUND"
	ErrCodeTaskNotFound     ErrorCode = "TASK_NOT_FOUND"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidTaskState ErrorCode = "INVALID_TASK_STATE"
	ErrCodeTaskNotCompleted ErrorCode = "TASK_NOT_COMPLETED"
	ErrCodeNoCandidates     ErrorCode = "NO_CANDIDATES"
	ErrCodeTaskFailed       ErrorCode = "TASK_FAILED"
	ErrCodeSearchFailed     ErrorCode = "CANDIDATE_SEARCH_FAILED"
	ErrCodeStoreUnavailable ErrorCode = "TASK_STORE_UNAVAILABLE"
	ErrCodeMLUnavailable    ErrorCode = "ML_ENDPOINT_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if stderrors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// CodeOf extracts the error code, or "" for non-standard errors.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNotFound reports whether err is a plan or task lookup miss.
func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code == ErrCodePlanNotFound || code == ErrCodeTaskNotFound
}

// NewPlanNotFoundError creates a non-retryable lookup error.
func NewPlanNotFoundError(planID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanNotFound,
		Message:   "planting plan not found",
		Details:   planID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskNotFoundError creates a non-retryable lookup error.
func NewTaskNotFoundError(taskID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskNotFound,
		Message:   "match task not found",
		Details:   taskID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError marks an operation attempted by a non-owner.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "requester does not own this resource",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTaskStateError marks a state transition the task lifecycle forbids,
// such as cancelling a terminal task.
func NewInvalidTaskStateError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTaskState,
		Message:   "operation not allowed in current task state",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskNotCompletedError is returned when a result is requested before the
// task reaches COMPLETED.
func NewTaskNotCompletedError(taskID, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskNotCompleted,
		Message:   "match task has not completed",
		Details:   fmt.Sprintf("task %s is %s", taskID, status),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoCandidatesError marks a task failure caused by an empty search result.
func NewNoCandidatesError(planID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoCandidates,
		Message:   "no candidates found for plan",
		Details:   planID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchFailedError wraps a candidate-search collaborator failure.
func NewSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchFailed,
		Message:   "candidate search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskFailedError normalizes an unclassified processing failure into the
// standard shape; classified errors keep their own code.
func NewTaskFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskFailed,
		Message:   "match task processing failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError marks a task-store access failure, as opposed to a
// lookup miss.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "task store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMLUnavailableError marks external model scoring as unavailable; callers
// fall back to rule scoring.
func NewMLUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMLUnavailable,
		Message:   "external model scoring unavailable",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
