// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_Error(t *testing.T) {
	err := NewPlanNotFoundError("plan-1")

	assert.Contains(t, err.Error(), "PLAN_NOT_FOUND")
	assert.Contains(t, err.Error(), "planting plan not found")
}

func TestStandardError_IsMatchesByCode(t *testing.T) {
	a := NewTaskNotFoundError("t1")
	b := NewTaskNotFoundError("t2")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, NewPlanNotFoundError("p1")))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeUnauthorized, CodeOf(NewUnauthorizedError("nope")))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain error")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestCodeOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("loading plan: %w", NewPlanNotFoundError("plan-1"))

	assert.Equal(t, ErrCodePlanNotFound, CodeOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewPlanNotFoundError("p")))
	assert.True(t, IsNotFound(NewTaskNotFoundError("t")))
	assert.False(t, IsNotFound(NewUnauthorizedError("u")))
	assert.False(t, IsNotFound(nil))
}

func TestRetryableFlags(t *testing.T) {
	assert.False(t, NewPlanNotFoundError("p").Retryable)
	assert.False(t, NewInvalidTaskStateError("s").Retryable)
	assert.False(t, NewTaskFailedError(stderrors.New("boom")).Retryable)
	assert.True(t, NewTaskNotCompletedError("t", "PROCESSING").Retryable)
	assert.True(t, NewSearchFailedError(stderrors.New("es down")).Retryable)
	assert.True(t, NewStoreUnavailableError(stderrors.New("redis down")).Retryable)
	assert.True(t, NewMLUnavailableError().Retryable)
}

func TestNormalizingConstructorsKeepDetails(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	assert.Equal(t, ErrCodeTaskFailed, NewTaskFailedError(cause).Code)
	assert.Equal(t, cause.Error(), NewTaskFailedError(cause).Details)
	assert.Equal(t, ErrCodeStoreUnavailable, NewStoreUnavailableError(cause).Code)
	assert.Equal(t, cause.Error(), NewStoreUnavailableError(cause).Details)
	assert.Equal(t, ErrCodeMLUnavailable, NewMLUnavailableError().Code)
}
