// internal/matching/task/task.go
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the match task lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// MatchTask is the state of one asynchronous matching request. A task is
// mutated only by its owning worker and by user-initiated cancellation.
type MatchTask struct {
	ID           string       `json:"id"`
	PlanID       string       `json:"planId"`
	UserID       string       `json:"userId"`
	Status       Status       `json:"status"`
	Progress     int          `json:"progress"` // integer percent, monotonic while PROCESSING
	TotalCount   int          `json:"totalCount"`
	MatchedCount int          `json:"matchedCount"`
	Result       *MatchResult `json:"result,omitempty"` // set only when COMPLETED
	Error        string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	StartedAt    *time.Time   `json:"startedAt,omitempty"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`

	// QueuePosition is filled on status reads while PENDING; -1 when the task
	// is not found in the queue. Not persisted.
	QueuePosition int `json:"queuePosition,omitempty"`
}

// NewTask creates a PENDING task with a fresh id.
func NewTask(planID, userID string) *MatchTask {
	return &MatchTask{
		ID:        NewTaskID(),
		PlanID:    planID,
		UserID:    userID,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTaskID combines a millisecond timestamp with a random suffix for
// practical collision avoidance without coordination.
func NewTaskID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("mt%d%s", time.Now().UnixMilli(), suffix)
}
