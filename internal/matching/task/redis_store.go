// internal/matching/task/redis_store.go
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	taskKeyPrefix = "match:task:"
	queueKey      = "match:task:queue"
)

// RedisStore is the external persistent backend: task records with per-entry
// TTL plus a Redis list as the FIFO queue.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) SaveTask(ctx context.Context, t *MatchTask) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", t.ID, err)
	}
	return s.client.Set(ctx, taskKeyPrefix+t.ID, data, s.ttl).Err()
}

func (s *RedisStore) GetTask(ctx context.Context, id string) (*MatchTask, error) {
	val, err := s.client.Get(ctx, taskKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	var t MatchTask
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return nil, fmt.Errorf("unmarshal task %s: %w", id, err)
	}
	return &t, nil
}

func (s *RedisStore) Enqueue(ctx context.Context, id string) error {
	return s.client.RPush(ctx, queueKey, id).Err()
}

func (s *RedisStore) RemoveQueued(ctx context.Context, id string) error {
	return s.client.LRem(ctx, queueKey, 1, id).Err()
}

func (s *RedisStore) QueueLen(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, queueKey).Result()
	return int(n), err
}

func (s *RedisStore) QueuePosition(ctx context.Context, id string) (int, error) {
	ids, err := s.client.LRange(ctx, queueKey, 0, maxQueueScan-1).Result()
	if err != nil {
		return -1, err
	}
	for i, queued := range ids {
		if queued == id {
			return i, nil
		}
	}
	return -1, nil
}
