// internal/matching/task/redis_store_test.go
package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, time.Minute), mr
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	task := NewTask("plan-1", "user-1")
	task.Status = StatusProcessing
	task.Progress = 40

	assert.NoError(t, store.SaveTask(ctx, task))

	got, err := store.GetTask(ctx, task.ID)
	assert.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, 40, got.Progress)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupRedisStore(t)

	_, err := store.GetTask(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	task := NewTask("plan-1", "user-1")
	assert.NoError(t, store.SaveTask(ctx, task))

	mr.FastForward(2 * time.Minute)

	_, err := store.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRedisStore_RoundTripPreservesResult(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	task := NewTask("plan-1", "user-1")
	task.Status = StatusCompleted
	task.Progress = 100
	task.Result = &MatchResult{
		PlanID:         "plan-1",
		TotalEvaluated: 3,
		Items: []MatchResultItem{
			{Rank: 1, ProductID: "a", TotalScore: 92.5, Grade: "A"},
			{Rank: 2, ProductID: "b", TotalScore: 71, Grade: "B"},
		},
	}

	assert.NoError(t, store.SaveTask(ctx, task))

	got, err := store.GetTask(ctx, task.ID)
	assert.NoError(t, err)
	assert.NotNil(t, got.Result)
	assert.Len(t, got.Result.Items, 2)
	assert.Equal(t, "a", got.Result.Items[0].ProductID)
	assert.Equal(t, 92.5, got.Result.Items[0].TotalScore)
}

func TestRedisStore_QueueFIFO(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	assert.NoError(t, store.Enqueue(ctx, "t1"))
	assert.NoError(t, store.Enqueue(ctx, "t2"))
	assert.NoError(t, store.Enqueue(ctx, "t3"))

	n, err := store.QueueLen(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	pos, err := store.QueuePosition(ctx, "t2")
	assert.NoError(t, err)
	assert.Equal(t, 1, pos)

	assert.NoError(t, store.RemoveQueued(ctx, "t1"))

	pos, _ = store.QueuePosition(ctx, "t2")
	assert.Equal(t, 0, pos)

	pos, _ = store.QueuePosition(ctx, "t1")
	assert.Equal(t, -1, pos)
}

func TestRedisStore_QueuePosition_AbsentIsMinusOne(t *testing.T) {
	store, _ := setupRedisStore(t)

	pos, err := store.QueuePosition(context.Background(), "absent")
	assert.NoError(t, err)
	assert.Equal(t, -1, pos)
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	mr.Close()

	task := NewTask("plan-1", "user-1")
	assert.Error(t, store.SaveTask(ctx, task))

	_, err := store.GetTask(ctx, task.ID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTaskNotFound)
}

// ==========================
// Command-level failures
// ==========================

func TestRedisStore_CommandErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	mock.ExpectLLen(queueKey).SetErr(errors.New("READONLY You can't write against a read only replica"))
	_, err := store.QueueLen(ctx)
	assert.ErrorContains(t, err, "READONLY")

	mock.ExpectLRange(queueKey, 0, maxQueueScan-1).SetErr(errors.New("connection reset"))
	pos, err := store.QueuePosition(ctx, "t1")
	assert.Error(t, err)
	assert.Equal(t, -1, pos)

	mock.ExpectLRem(queueKey, 1, "t1").SetErr(errors.New("connection reset"))
	assert.Error(t, store.RemoveQueued(ctx, "t1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
