package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"nalar/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueueKey = "nalar:generation:tasks"

func testTask() *domain.Task {
	payload, _ := json.Marshal(domain.QuizGenerationPayload{QuizID: "quiz-1", Topic: "channels"})
	return &domain.Task{
		ID:      "01HZTESTTASK",
		Type:    domain.TaskGenerateQuiz,
		Payload: payload,
	}
}

func TestRedisTaskQueue_Enqueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewRedisTaskQueue(db, testQueueKey, 5*time.Second)
	ctx := context.Background()

	task := testTask()
	data, err := json.Marshal(task)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectLPush(testQueueKey, string(data)).SetVal(1)
		assert.NoError(t, q.Enqueue(ctx, task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		mock.ExpectLPush(testQueueKey, string(data)).SetErr(errors.New("connection reset"))
		assert.Error(t, q.Enqueue(ctx, task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisTaskQueue_Dequeue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewRedisTaskQueue(db, testQueueKey, 5*time.Second)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		task := testTask()
		data, err := json.Marshal(task)
		require.NoError(t, err)
		mock.ExpectBRPop(5*time.Second, testQueueKey).SetVal([]string{testQueueKey, string(data)})

		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, domain.TaskGenerateQuiz, got.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyQueue", func(t *testing.T) {
		mock.ExpectBRPop(5*time.Second, testQueueKey).SetErr(redis.Nil)

		got, err := q.Dequeue(ctx)
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CorruptPayload", func(t *testing.T) {
		mock.ExpectBRPop(5*time.Second, testQueueKey).SetVal([]string{testQueueKey, "not json"})

		got, err := q.Dequeue(ctx)
		assert.Error(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		mock.ExpectBRPop(5*time.Second, testQueueKey).SetErr(errors.New("connection reset"))

		got, err := q.Dequeue(ctx)
		assert.Error(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewRedisTaskQueue_DefaultPollTimeout(t *testing.T) {
	db, _ := redismock.NewClientMock()
	q := NewRedisTaskQueue(db, testQueueKey, 0)
	assert.Equal(t, 5*time.Second, q.pollTimeout)
}
