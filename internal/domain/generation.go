package domain

import "context"

// GeneratedQuestion is the shape the structured generation call must return
// for each quiz question.
type GeneratedQuestion struct {
	QuestionNumber     int          `json:"questionNumber"`
	Question           string       `json:"question"`
	Options            []string     `json:"options"`
	CorrectOptionIndex int          `json:"correctOptionIndex"`
	Explanation        string       `json:"explanation"`
	Type               QuestionType `json:"type"`
	Difficulty         Difficulty   `json:"difficulty"`
}

// QuizGenerationService requests a structured set of questions from the
// language model. Implementations must return between 1 and 20 questions;
// per-question constraints are re-validated by the caller.
type QuizGenerationService interface {
	GenerateQuestions(ctx context.Context, title, description, topic string, difficulty Difficulty) ([]GeneratedQuestion, error)
}

// GeneratedPlan mirrors the structured learning plan the model returns.
type GeneratedPlan struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Steps       []LearningPlanStep `json:"steps"`
}

// PlanGenerationService requests a structured learning plan built from the
// user's onboarding profile.
type PlanGenerationService interface {
	GeneratePlan(ctx context.Context, goals []string, studyReason string, level LearningLevel) (*GeneratedPlan, error)
}

// ResourceSearchService is a best-effort resource enrichment lookup. Failures
// are degraded to an empty result by implementations, never propagated.
type ResourceSearchService interface {
	Search(ctx context.Context, query string, limit int) ([]StepResource, error)
}
