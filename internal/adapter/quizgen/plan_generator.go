package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nalar/internal/config"
	"nalar/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// LLMPlanGenerator implements domain.PlanGenerationService.
type LLMPlanGenerator struct {
	llm    llms.Model
	cfg    config.LLMConfig
	logger *zap.Logger
}

// NewLLMPlanGenerator creates a new instance of LLMPlanGenerator.
func NewLLMPlanGenerator(llm llms.Model, cfg config.LLMConfig, logger *zap.Logger) domain.PlanGenerationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLLMTimeout
	}
	return &LLMPlanGenerator{llm: llm, cfg: cfg, logger: logger}
}

// GeneratePlan asks the model for a step-by-step learning plan tailored to
// the user's goals and level.
func (g *LLMPlanGenerator) GeneratePlan(ctx context.Context, goals []string, studyReason string, level domain.LearningLevel) (*domain.GeneratedPlan, error) {
	if len(goals) == 0 {
		return nil, domain.NewError(domain.CodeValidation, "no learning goals to build a plan from", nil)
	}

	var goalLines strings.Builder
	for _, goal := range goals {
		goalLines.WriteString("- ")
		goalLines.WriteString(goal)
		goalLines.WriteString("\n")
	}
	if level == "" {
		level = "not specified"
	}
	if studyReason == "" {
		studyReason = "not specified"
	}

	prompt := fmt.Sprintf(`You are an expert curriculum designer. Create a personalized learning plan for a user based on their stated goals.
The user's current level is %s.
The user wants to learn about the following topics:
%s
The user is studying for this reason: %s.

Generate a comprehensive, step-by-step learning plan broken into logical sections. For each step provide a clear title, a detailed description of the concepts to be learned, and optionally a few high-quality online resources.

Respond with ONLY a JSON object in this format:
{
  "title": "plan title",
  "description": "what the user will achieve",
  "steps": [
    {
      "title": "step title",
      "description": "what this step covers",
      "status": "not-started",
      "resources": [
        {"title": "resource title", "url": "https://example.com", "type": "Article"}
      ]
    }
  ]
}`, level, goalLines.String(), studyReason)

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	raw, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		g.logger.Error("Plan generation call failed", zap.Error(err))
		return nil, domain.NewLLMServiceError(fmt.Errorf("plan generation call failed: %w", err))
	}

	extracted, err := extractJSONObject(raw)
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}

	var plan domain.GeneratedPlan
	if err := json.Unmarshal([]byte(extracted), &plan); err != nil {
		g.logger.Error("Failed to unmarshal plan generation response",
			zap.Error(err),
			zap.String("json", extracted),
		)
		return nil, domain.NewLLMServiceError(fmt.Errorf("failed to parse plan generation response: %w", err))
	}

	if plan.Title == "" || len(plan.Steps) == 0 {
		return nil, domain.NewLLMServiceError(fmt.Errorf("generator returned an empty plan"))
	}

	for i := range plan.Steps {
		if !plan.Steps[i].Status.IsValid() {
			plan.Steps[i].Status = domain.StepStatusNotStarted
		}
	}

	g.logger.Info("Learning plan generated",
		zap.String("title", plan.Title),
		zap.Int("steps", len(plan.Steps)),
	)
	return &plan, nil
}

var _ domain.PlanGenerationService = (*LLMPlanGenerator)(nil)
