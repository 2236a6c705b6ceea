// internal/matching/task/failover_store.go
package task

import (
	"context"
	"errors"

	"agrimatch/internal/common/logger"
	"agrimatch/internal/common/metrics"
)

// FailoverStore keeps tasks in an external primary store and degrades to an
// in-process fallback whenever the primary is unreachable. Read and write
// fallback paths are independent: a write that fell back is still readable
// even while later primary reads succeed, because misses on the primary are
// re-checked against the fallback.
type FailoverStore struct {
	primary  Store
	fallback Store
	logger   logger.Logger
}

func NewFailoverStore(primary, fallback Store, log logger.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"component": "task-store"}),
	}
}

func (s *FailoverStore) SaveTask(ctx context.Context, t *MatchTask) error {
	if err := s.primary.SaveTask(ctx, t); err != nil {
		s.degrade("save", err)
		return s.fallback.SaveTask(ctx, t)
	}
	return nil
}

func (s *FailoverStore) GetTask(ctx context.Context, id string) (*MatchTask, error) {
	t, err := s.primary.GetTask(ctx, id)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrTaskNotFound) {
		s.degrade("get", err)
	}
	// A primary miss may still be a task that was written to the fallback.
	return s.fallback.GetTask(ctx, id)
}

func (s *FailoverStore) Enqueue(ctx context.Context, id string) error {
	if err := s.primary.Enqueue(ctx, id); err != nil {
		s.degrade("enqueue", err)
		return s.fallback.Enqueue(ctx, id)
	}
	return nil
}

func (s *FailoverStore) RemoveQueued(ctx context.Context, id string) error {
	if err := s.primary.RemoveQueued(ctx, id); err != nil {
		s.degrade("remove_queued", err)
	}
	// Always clear the fallback too; the id may have been enqueued there.
	return s.fallback.RemoveQueued(ctx, id)
}

func (s *FailoverStore) QueueLen(ctx context.Context) (int, error) {
	n, err := s.primary.QueueLen(ctx)
	if err != nil {
		s.degrade("queue_len", err)
		return s.fallback.QueueLen(ctx)
	}
	fn, ferr := s.fallback.QueueLen(ctx)
	if ferr == nil {
		n += fn
	}
	return n, nil
}

func (s *FailoverStore) QueuePosition(ctx context.Context, id string) (int, error) {
	pos, err := s.primary.QueuePosition(ctx, id)
	if err != nil {
		s.degrade("queue_position", err)
		return s.fallback.QueuePosition(ctx, id)
	}
	if pos >= 0 {
		return pos, nil
	}
	return s.fallback.QueuePosition(ctx, id)
}

func (s *FailoverStore) degrade(operation string, err error) {
	metrics.StoreFallbacks.WithLabelValues(operation).Inc()
	s.logger.Warn("primary task store unavailable, using fallback", map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	})
}
