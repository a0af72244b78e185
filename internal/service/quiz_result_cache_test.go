package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nalar/internal/domain"
	"nalar/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizResultCache(t *testing.T) {
	ctx := context.Background()
	key := "nalar:quiz:result:quiz-1"
	result := &dto.CompleteQuizResponse{Score: 80, TotalQuestions: 5, CorrectAnswers: 4, TotalTimeSpent: 120}

	t.Run("put then get", func(t *testing.T) {
		cache := new(MockCache)
		svc := NewQuizResultCacheService(cache, 10*time.Minute)

		raw, _ := json.Marshal(result)
		cache.On("Set", ctx, key, string(raw), 10*time.Minute).Return(nil)
		cache.On("Get", ctx, key).Return(string(raw), nil)

		svc.PutResult(ctx, "quiz-1", result)
		got := svc.GetResult(ctx, "quiz-1")

		require.NotNil(t, got)
		assert.Equal(t, result, got)
		cache.AssertExpectations(t)
	})

	t.Run("miss returns nil", func(t *testing.T) {
		cache := new(MockCache)
		svc := NewQuizResultCacheService(cache, time.Minute)

		cache.On("Get", ctx, key).Return("", domain.ErrCacheMiss)

		assert.Nil(t, svc.GetResult(ctx, "quiz-1"))
	})

	t.Run("backend failure degrades to miss", func(t *testing.T) {
		cache := new(MockCache)
		svc := NewQuizResultCacheService(cache, time.Minute)

		cache.On("Get", ctx, key).Return("", assert.AnError)

		assert.Nil(t, svc.GetResult(ctx, "quiz-1"))
	})

	t.Run("corrupt entry degrades to miss", func(t *testing.T) {
		cache := new(MockCache)
		svc := NewQuizResultCacheService(cache, time.Minute)

		cache.On("Get", ctx, key).Return("{broken", nil)

		assert.Nil(t, svc.GetResult(ctx, "quiz-1"))
	})

	t.Run("write failure is swallowed", func(t *testing.T) {
		cache := new(MockCache)
		svc := NewQuizResultCacheService(cache, time.Minute)

		raw, _ := json.Marshal(result)
		cache.On("Set", ctx, key, string(raw), time.Minute).Return(assert.AnError)

		svc.PutResult(ctx, "quiz-1", result)
		cache.AssertExpectations(t)
	})

	t.Run("nil cache is a no-op", func(t *testing.T) {
		svc := NewQuizResultCacheService(nil, time.Minute)
		svc.PutResult(ctx, "quiz-1", result)
		assert.Nil(t, svc.GetResult(ctx, "quiz-1"))
	})
}
