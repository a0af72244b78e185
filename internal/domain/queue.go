package domain

import (
	"context"
	"encoding/json"
)

// TaskType names a kind of background generation work.
type TaskType string

const (
	TaskGenerateQuiz TaskType = "quiz_generation"
	TaskGeneratePlan TaskType = "plan_generation"
)

// Task is one unit of fire-and-forget background work. The enqueueing
// mutation returns immediately; a worker performs the generation later and
// writes results back through the repositories. There is no cancellation
// handle: an enqueued task runs to completion or fails.
type Task struct {
	ID      string          `json:"id"`
	Type    TaskType        `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// QuizGenerationPayload carries everything the worker needs to generate and
// persist questions for an already created pending quiz.
type QuizGenerationPayload struct {
	QuizID      string     `json:"quizId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Topic       string     `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
}

// PlanGenerationPayload identifies the user whose profile drives plan
// generation.
type PlanGenerationPayload struct {
	UserID string `json:"userId"`
}

// TaskQueue is the port for the background work queue.
type TaskQueue interface {
	// Enqueue pushes a task and returns without waiting for execution.
	Enqueue(ctx context.Context, task *Task) error

	// Dequeue blocks up to the implementation's poll timeout and returns the
	// next task, or (nil, nil) when none arrived in time.
	Dequeue(ctx context.Context) (*Task, error)
}
