package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"nalar/internal/cache"
	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/logger"

	"go.uber.org/zap"
)

// QuizResultCacheService keeps completed quiz outcomes in the cache so the
// results screen right after completion does not re-read the rows. The cache
// is an optimization only: every method degrades to a miss on failure.
type QuizResultCacheService interface {
	GetResult(ctx context.Context, quizID string) *dto.CompleteQuizResponse
	PutResult(ctx context.Context, quizID string, result *dto.CompleteQuizResponse)
}

type quizResultCacheImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewQuizResultCacheService creates a new instance of QuizResultCacheService.
func NewQuizResultCacheService(c domain.Cache, ttl time.Duration) QuizResultCacheService {
	return &quizResultCacheImpl{cache: c, ttl: ttl}
}

func resultCacheKey(quizID string) string {
	return cache.Key("quiz", "result", quizID)
}

func (s *quizResultCacheImpl) GetResult(ctx context.Context, quizID string) *dto.CompleteQuizResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, resultCacheKey(quizID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("quiz result cache read failed", zap.Error(err), zap.String("quizID", quizID))
		}
		return nil
	}
	var result dto.CompleteQuizResponse
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.Get().Warn("quiz result cache entry corrupt", zap.Error(err), zap.String("quizID", quizID))
		return nil
	}
	return &result
}

func (s *quizResultCacheImpl) PutResult(ctx context.Context, quizID string, result *dto.CompleteQuizResponse) {
	if s.cache == nil || result == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		logger.Get().Warn("failed to marshal quiz result for cache", zap.Error(err), zap.String("quizID", quizID))
		return
	}
	if err := s.cache.Set(ctx, resultCacheKey(quizID), string(raw), s.ttl); err != nil {
		logger.Get().Warn("quiz result cache write failed", zap.Error(err), zap.String("quizID", quizID))
	}
}
