package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nalar/internal/domain"
	"nalar/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTaskQueue implements domain.TaskQueue on a Redis list. Producers LPUSH
// JSON-encoded tasks; consumers BRPOP with a poll timeout so worker shutdown
// is not blocked indefinitely.
type RedisTaskQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
}

// NewRedisTaskQueue creates a queue over the given list key.
func NewRedisTaskQueue(client *redis.Client, key string, pollTimeout time.Duration) *RedisTaskQueue {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisTaskQueue{
		client:      client,
		key:         key,
		pollTimeout: pollTimeout,
	}
}

// Enqueue pushes a task and returns without waiting for execution.
func (q *RedisTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}

	if err := q.client.LPush(ctx, q.key, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", task.ID, err)
	}

	logger.Get().Info("Task enqueued",
		zap.String("task_id", task.ID),
		zap.String("task_type", string(task.Type)),
		zap.String("queue", q.key),
	)
	return nil
}

// Dequeue blocks up to the poll timeout and returns the next task, or
// (nil, nil) when the queue stayed empty.
func (q *RedisTaskQueue) Dequeue(ctx context.Context) (*domain.Task, error) {
	result, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue from %s: %w", q.key, err)
	}

	// BRPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(result))
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	return &task, nil
}

var _ domain.TaskQueue = (*RedisTaskQueue)(nil)
