// internal/events/events.go
package events

import (
	"context"
	"time"

	"agrimatch/internal/common/logger"
)

// TaskEvent is emitted after a match task reaches a terminal state. It is an
// explicit audit signal; matching itself never depends on it.
type TaskEvent struct {
	TaskID         string    `json:"taskId"`
	PlanID         string    `json:"planId"`
	UserID         string    `json:"userId"`
	Status         string    `json:"status"`
	TotalEvaluated int       `json:"totalEvaluated,omitempty"`
	BestScore      float64   `json:"bestScore,omitempty"`
	Error          string    `json:"error,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher delivers task events to an audit sink. Publishing is best-effort;
// failures must not affect task processing.
type Publisher interface {
	PublishTaskEvent(ctx context.Context, event TaskEvent) error
}

// NoopPublisher discards all events.
type NoopPublisher struct{}

func (NoopPublisher) PublishTaskEvent(context.Context, TaskEvent) error { return nil }

// LogPublisher writes events to the structured log, the default sink when no
// external topic is configured.
type LogPublisher struct {
	logger logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log.WithFields(map[string]interface{}{"component": "audit-events"})}
}

func (p *LogPublisher) PublishTaskEvent(_ context.Context, event TaskEvent) error {
	p.logger.Info("task event", map[string]interface{}{
		"taskId":         event.TaskID,
		"planId":         event.PlanID,
		"status":         event.Status,
		"totalEvaluated": event.TotalEvaluated,
		"bestScore":      event.BestScore,
	})
	return nil
}
