// internal/matching/task/store.go
package task

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTaskNotFound marks a task id absent from the store (or expired).
var ErrTaskNotFound = errors.New("task not found in store")

// maxQueueScan bounds the linear scan used for queue position lookups.
const maxQueueScan = 1000

// Store is the durable task registry plus the FIFO queue of pending ids.
// Implementations must keep dequeue order equal to insertion order.
type Store interface {
	SaveTask(ctx context.Context, t *MatchTask) error
	GetTask(ctx context.Context, id string) (*MatchTask, error)
	Enqueue(ctx context.Context, id string) error
	// RemoveQueued pops the given id from the queue; a no-op when absent.
	RemoveQueued(ctx context.Context, id string) error
	QueueLen(ctx context.Context) (int, error)
	// QueuePosition returns the 0-based position of id, or -1 when not queued.
	QueuePosition(ctx context.Context, id string) (int, error)
}

// ---- In-process fallback backend ----

type memoryEntry struct {
	task      *MatchTask
	expiresAt time.Time
}

// MemoryStore is the in-process fallback backend. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]memoryEntry
	queue []string
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]memoryEntry),
		ttl:   ttl,
	}
}

func (s *MemoryStore) SaveTask(_ context.Context, t *MatchTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = memoryEntry{task: cloneTask(t), expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) GetTask(_ context.Context, id string) (*MatchTask, error) {
	s.mu.RLock()
	entry, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrTaskNotFound
	}
	return cloneTask(entry.task), nil
}

func (s *MemoryStore) Enqueue(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, id)
	return nil
}

func (s *MemoryStore) RemoveQueued(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, queued := range s.queue {
		if queued == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) QueueLen(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue), nil
}

func (s *MemoryStore) QueuePosition(_ context.Context, id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit := len(s.queue)
	if limit > maxQueueScan {
		limit = maxQueueScan
	}
	for i := 0; i < limit; i++ {
		if s.queue[i] == id {
			return i, nil
		}
	}
	return -1, nil
}

// cloneTask copies a task so callers never share mutable state with the store.
func cloneTask(t *MatchTask) *MatchTask {
	cp := *t
	if t.Result != nil {
		res := *t.Result
		res.Items = append([]MatchResultItem(nil), t.Result.Items...)
		cp.Result = &res
	}
	return &cp
}
