// internal/matching/service/async.go
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"agrimatch/internal/catalog"
	"agrimatch/internal/common/config"
	apperrors "agrimatch/internal/common/errors"
	"agrimatch/internal/common/logger"
	"agrimatch/internal/common/metrics"
	"agrimatch/internal/common/observability"
	"agrimatch/internal/events"
	"agrimatch/internal/matching/feature"
	"agrimatch/internal/matching/task"
	"agrimatch/internal/models"
)

// progressSaveInterval is how many candidates are scored between progress
// persists.
const progressSaveInterval = 10

// Scorer produces a fully populated MatchFeature for one pair. Implemented by
// the hybrid service.
type Scorer interface {
	Score(ctx context.Context, plan *models.PlantingPlan, product *models.Product) feature.MatchFeature
}

// Deps bundles the collaborators of the async service.
type Deps struct {
	Store  task.Store
	Plans  catalog.PlanRepository
	Search catalog.CandidateSearcher
	Scorer Scorer
	Events events.Publisher
	Obs    *observability.Observability
	Logger logger.Logger
}

// AsyncService orchestrates submission, background matching, progress,
// cancellation and result assembly. Submit never blocks on matching work.
type AsyncService struct {
	cfg    config.MatchingConfig
	store  task.Store
	plans  catalog.PlanRepository
	search catalog.CandidateSearcher
	scorer Scorer
	events events.Publisher
	obs    *observability.Observability
	pool   *Pool
	logger logger.Logger
}

func NewAsyncService(cfg config.MatchingConfig, deps Deps) *AsyncService {
	ev := deps.Events
	if ev == nil {
		ev = events.NoopPublisher{}
	}
	log := deps.Logger.WithFields(map[string]interface{}{"component": "async-match"})
	return &AsyncService{
		cfg:    cfg,
		store:  deps.Store,
		plans:  deps.Plans,
		search: deps.Search,
		scorer: deps.Scorer,
		events: ev,
		obs:    deps.Obs,
		pool:   NewPool(cfg.Pool, deps.Logger),
		logger: log,
	}
}

// Submit validates the plan synchronously, persists a PENDING task, enqueues
// it and schedules background matching. It returns the new task and the
// current queue length.
func (s *AsyncService) Submit(ctx context.Context, planID, userID string) (*task.MatchTask, int, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, 0, err
	}
	if plan.UserID != userID {
		return nil, 0, apperrors.NewUnauthorizedError(fmt.Sprintf("plan %s is not owned by %s", planID, userID))
	}

	t := task.NewTask(planID, userID)
	if err := s.store.SaveTask(ctx, t); err != nil {
		return nil, 0, fmt.Errorf("persist task: %w", err)
	}
	if err := s.store.Enqueue(ctx, t.ID); err != nil {
		return nil, 0, fmt.Errorf("enqueue task: %w", err)
	}

	metrics.TasksSubmitted.Inc()
	queueLen, err := s.store.QueueLen(ctx)
	if err != nil {
		queueLen = -1
	} else {
		metrics.QueueLength.Set(float64(queueLen))
	}

	taskID := t.ID
	s.pool.Submit(func() { s.run(taskID) })

	s.logger.Info("task submitted", map[string]interface{}{
		"taskId":   taskID,
		"planId":   planID,
		"queueLen": queueLen,
	})
	return t, queueLen, nil
}

// Status returns the task, filling the 0-based queue position while PENDING.
func (s *AsyncService) Status(ctx context.Context, taskID string) (*task.MatchTask, error) {
	t, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == task.StatusPending {
		pos, err := s.store.QueuePosition(ctx, taskID)
		if err != nil {
			pos = -1
		}
		t.QueuePosition = pos
	}
	return t, nil
}

// Result returns the match result of a COMPLETED task, or an explicit
// not-completed error otherwise.
func (s *AsyncService) Result(ctx context.Context, taskID string) (*task.MatchResult, error) {
	t, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != task.StatusCompleted || t.Result == nil {
		return nil, apperrors.NewTaskNotCompletedError(taskID, string(t.Status))
	}
	return t.Result, nil
}

// Cancel sets a cooperative cancellation signal. It fails for unknown tasks,
// non-owners and terminal tasks; it never interrupts work already in flight.
func (s *AsyncService) Cancel(ctx context.Context, taskID, userID string) error {
	t, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return apperrors.NewUnauthorizedError(fmt.Sprintf("task %s is not owned by %s", taskID, userID))
	}
	if t.Status.Terminal() {
		return apperrors.NewInvalidTaskStateError(fmt.Sprintf("task %s is already %s", taskID, t.Status))
	}

	now := time.Now().UTC()
	t.Status = task.StatusCancelled
	t.FinishedAt = &now
	if err := s.store.SaveTask(ctx, t); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}
	_ = s.store.RemoveQueued(ctx, taskID)

	metrics.TasksFinished.WithLabelValues(string(task.StatusCancelled)).Inc()
	s.publish(ctx, t)
	s.logger.Info("task cancelled", map[string]interface{}{"taskId": taskID})
	return nil
}

// QueueSize returns the current FIFO length.
func (s *AsyncService) QueueSize(ctx context.Context) (int, error) {
	return s.store.QueueLen(ctx)
}

// Shutdown drains the worker pool.
func (s *AsyncService) Shutdown() {
	s.pool.Shutdown()
}

func (s *AsyncService) getTask(ctx context.Context, taskID string) (*task.MatchTask, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if stderrors.Is(err, task.ErrTaskNotFound) {
		return nil, apperrors.NewTaskNotFoundError(taskID)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}
	return t, nil
}

// run executes one task on a pool worker. Every exit path leaves the task in
// a terminal state; a task is never left PROCESSING.
func (s *AsyncService) run(taskID string) {
	ctx := context.Background()
	log := s.logger.WithFields(map[string]interface{}{"taskId": taskID})

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		log.Error("task vanished before processing", map[string]interface{}{"error": err.Error()})
		return
	}
	_ = s.store.RemoveQueued(ctx, taskID)
	if t.Status == task.StatusCancelled {
		// Cancelled before the worker started; no scoring happens.
		return
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.markFailed(ctx, t, fmt.Errorf("panic during matching: %v", r), start)
		}
	}()

	plan, err := s.plans.GetPlan(ctx, t.PlanID)
	if err != nil {
		s.markFailed(ctx, t, fmt.Errorf("load plan: %w", err), start)
		return
	}

	products, err := s.search.SearchCandidates(ctx, plan.Variety, plan.Region, s.cfg.MaxCandidates)
	if err != nil {
		s.markFailed(ctx, t, apperrors.NewSearchFailedError(err), start)
		return
	}
	if len(products) == 0 {
		s.markFailed(ctx, t, apperrors.NewNoCandidatesError(t.PlanID), start)
		return
	}

	now := time.Now().UTC()
	t.Status = task.StatusProcessing
	t.TotalCount = len(products)
	t.StartedAt = &now
	if err := s.store.SaveTask(ctx, t); err != nil {
		s.markFailed(ctx, t, fmt.Errorf("persist processing state: %w", err), start)
		return
	}

	features := make([]feature.MatchFeature, 0, len(products))
	for i := range products {
		// Cooperative cancellation: abandon all further writes once the user
		// cancelled. Work already done is not rolled back.
		if s.isCancelled(ctx, taskID) {
			log.Info("task cancelled during processing", map[string]interface{}{
				"scored": len(features),
			})
			return
		}

		if f, ok := s.scoreCandidate(log, plan, &products[i]); ok {
			features = append(features, f)
			t.MatchedCount = len(features)
			metrics.CandidatesScored.Inc()
		}

		// Progress stays below 100 until the task actually completes.
		if processed := i + 1; processed < len(products) {
			t.Progress = processed * 100 / len(products)
			if processed%progressSaveInterval == 0 {
				// Re-check right before the write so a cancel landing
				// mid-iteration is not overwritten by a stale PROCESSING
				// snapshot.
				if s.isCancelled(ctx, taskID) {
					log.Info("task cancelled during processing", map[string]interface{}{
						"scored": len(features),
					})
					return
				}
				if err := s.store.SaveTask(ctx, t); err != nil {
					log.Warn("persist progress failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}

	sort.SliceStable(features, func(i, j int) bool {
		return features[i].TotalScore > features[j].TotalScore
	})

	duration := time.Since(start)
	finished := time.Now().UTC()
	t.Result = task.BuildResult(t.PlanID, len(products), features, s.cfg.TopN, duration)
	t.Status = task.StatusCompleted
	t.Progress = 100
	t.FinishedAt = &finished
	if err := s.store.SaveTask(ctx, t); err != nil {
		log.Error("persist completed task failed", map[string]interface{}{"error": err.Error()})
		return
	}

	metrics.TasksFinished.WithLabelValues(string(task.StatusCompleted)).Inc()
	metrics.TaskDuration.Observe(duration.Seconds())
	if s.obs != nil {
		s.obs.RecordTaskProcessed(ctx, string(task.StatusCompleted))
		s.obs.RecordTaskDuration(ctx, duration, string(task.StatusCompleted))
	}
	s.publish(ctx, t)

	log.Info("task completed", map[string]interface{}{
		"evaluated":  len(products),
		"matched":    len(features),
		"durationMs": duration.Milliseconds(),
	})
}

// scoreCandidate guards one scoring call; a per-candidate failure is logged
// and the candidate skipped, never aborting the task.
func (s *AsyncService) scoreCandidate(log logger.Logger, plan *models.PlantingPlan, product *models.Product) (f feature.MatchFeature, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("scoring candidate failed, skipping", map[string]interface{}{
				"productId": product.ID,
				"error":     fmt.Sprintf("%v", r),
			})
			ok = false
		}
	}()
	return s.scorer.Score(context.Background(), plan, product), true
}

func (s *AsyncService) isCancelled(ctx context.Context, taskID string) bool {
	latest, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return false
	}
	return latest.Status == task.StatusCancelled
}

func (s *AsyncService) markFailed(ctx context.Context, t *task.MatchTask, cause error, start time.Time) {
	latest, err := s.store.GetTask(ctx, t.ID)
	if err == nil && latest.Status == task.StatusCancelled {
		return
	}

	// Normalize unclassified failures so the stored error always carries a
	// stable code-backed message.
	var se *apperrors.StandardError
	if !stderrors.As(cause, &se) {
		se = apperrors.NewTaskFailedError(cause)
	}
	msg := se.Message
	if se.Details != "" {
		msg = se.Message + ": " + se.Details
	}

	now := time.Now().UTC()
	t.Status = task.StatusFailed
	t.Error = msg
	t.FinishedAt = &now
	if err := s.store.SaveTask(ctx, t); err != nil {
		s.logger.Error("persist failed task", map[string]interface{}{
			"taskId": t.ID,
			"error":  err.Error(),
		})
	}

	metrics.TasksFinished.WithLabelValues(string(task.StatusFailed)).Inc()
	if s.obs != nil {
		s.obs.RecordTaskProcessed(ctx, string(task.StatusFailed))
		s.obs.RecordTaskDuration(ctx, time.Since(start), string(task.StatusFailed))
	}
	s.publish(ctx, t)

	s.logger.Warn("task failed", map[string]interface{}{
		"taskId": t.ID,
		"reason": msg,
	})
}

func (s *AsyncService) publish(ctx context.Context, t *task.MatchTask) {
	event := events.TaskEvent{
		TaskID:     t.ID,
		PlanID:     t.PlanID,
		UserID:     t.UserID,
		Status:     string(t.Status),
		Error:      t.Error,
		OccurredAt: time.Now().UTC(),
	}
	if t.Result != nil {
		event.TotalEvaluated = t.Result.TotalEvaluated
		if best := t.Result.BestMatch(); best != nil {
			event.BestScore = best.TotalScore
		}
	}
	if err := s.events.PublishTaskEvent(ctx, event); err != nil {
		s.logger.Warn("publish task event failed", map[string]interface{}{
			"taskId": t.ID,
			"error":  err.Error(),
		})
	}
}
