package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nalar/internal/domain"
	"nalar/internal/logger"

	"go.uber.org/zap"
)

// taskTimeout bounds one generation run, LLM call included.
const taskTimeout = 3 * time.Minute

// GenerationWorker drains the task queue and runs generation. Tasks are
// fire-and-forget: a failed task is logged and dropped, not retried; the
// user can request the generation again.
type GenerationWorker struct {
	queue           domain.TaskQueue
	quizService     QuizService
	learningService LearningService
}

// NewGenerationWorker creates a new instance of GenerationWorker.
func NewGenerationWorker(queue domain.TaskQueue, quizService QuizService, learningService LearningService) *GenerationWorker {
	return &GenerationWorker{
		queue:           queue,
		quizService:     quizService,
		learningService: learningService,
	}
}

// Run polls the queue until the context is canceled.
func (w *GenerationWorker) Run(ctx context.Context) error {
	appLogger := logger.Get()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			appLogger.Error("failed to dequeue task", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
		if err := w.Process(taskCtx, task); err != nil {
			appLogger.Error("task failed",
				zap.Error(err),
				zap.String("taskID", task.ID),
				zap.String("type", string(task.Type)))
		}
		cancel()
	}
}

// Process runs a single task to completion.
func (w *GenerationWorker) Process(ctx context.Context, task *domain.Task) error {
	appLogger := logger.Get()
	appLogger.Info("processing task",
		zap.String("taskID", task.ID),
		zap.String("type", string(task.Type)))

	switch task.Type {
	case domain.TaskGenerateQuiz:
		var payload domain.QuizGenerationPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("invalid quiz generation payload: %w", err)
		}
		return w.quizService.GenerateQuestionsForQuiz(ctx, payload.QuizID)

	case domain.TaskGeneratePlan:
		var payload domain.PlanGenerationPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("invalid plan generation payload: %w", err)
		}
		return w.learningService.GeneratePlanForUser(ctx, payload.UserID)

	default:
		return fmt.Errorf("unknown task type %q", task.Type)
	}
}
