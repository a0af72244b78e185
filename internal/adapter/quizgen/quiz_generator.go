package quizgen

import (
	"context"
	"encoding/json"
	"fmt"

	"nalar/internal/config"
	"nalar/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// LLMQuizGenerator implements domain.QuizGenerationService using a
// langchaingo model client.
type LLMQuizGenerator struct {
	llm     llms.Model
	timeout config.LLMConfig
	logger  *zap.Logger
}

// NewLLMQuizGenerator creates a new instance of LLMQuizGenerator.
func NewLLMQuizGenerator(llm llms.Model, cfg config.LLMConfig, logger *zap.Logger) domain.QuizGenerationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLLMTimeout
	}
	return &LLMQuizGenerator{llm: llm, timeout: cfg, logger: logger}
}

// GenerateQuestions builds a generation prompt, requests the structured
// question set and re-validates every constraint the model must honor. The
// number of questions is bounded to [1, 20].
func (g *LLMQuizGenerator) GenerateQuestions(ctx context.Context, title, description, topic string, difficulty domain.Difficulty) ([]domain.GeneratedQuestion, error) {
	prompt := buildQuizPrompt(title, description, topic, difficulty)

	ctx, cancel := context.WithTimeout(ctx, g.timeout.Timeout)
	defer cancel()

	raw, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		g.logger.Error("Quiz generation call failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return nil, domain.NewLLMServiceError(fmt.Errorf("quiz generation call failed: %w", err))
	}

	extracted, err := extractJSONObject(raw)
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}

	var payload struct {
		Questions []domain.GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extracted), &payload); err != nil {
		g.logger.Error("Failed to unmarshal quiz generation response",
			zap.Error(err),
			zap.String("json", extracted),
		)
		return nil, domain.NewLLMServiceError(fmt.Errorf("failed to parse quiz generation response: %w", err))
	}

	if len(payload.Questions) < 1 || len(payload.Questions) > 20 {
		return nil, domain.NewLLMServiceError(fmt.Errorf("generator returned %d questions, expected 1-20", len(payload.Questions)))
	}

	for i := range payload.Questions {
		q := payload.Questions[i]
		check := domain.QuizQuestion{
			QuestionNumber:     q.QuestionNumber,
			Question:           q.Question,
			Options:            q.Options,
			CorrectOptionIndex: q.CorrectOptionIndex,
			Explanation:        q.Explanation,
			Type:               q.Type,
			Difficulty:         q.Difficulty,
		}
		if err := check.Validate(); err != nil {
			return nil, domain.NewLLMServiceError(fmt.Errorf("generated question %d invalid: %w", i+1, err))
		}
	}

	g.logger.Info("Quiz questions generated",
		zap.String("topic", topic),
		zap.Int("count", len(payload.Questions)),
	)
	return payload.Questions, nil
}

func buildQuizPrompt(title, description, topic string, difficulty domain.Difficulty) string {
	prompt := fmt.Sprintf(`You are an expert quiz author. Create a comprehensive quiz with the following details:
- Title: %q
- Topic: %s
- Difficulty: %s
`, title, topic, difficulty)
	if description != "" {
		prompt += fmt.Sprintf("- Description: %s\n", description)
	}

	prompt += `
Requirements:
1. Create 5-10 questions with increasing difficulty.
2. Mix multiple-choice and true/false question types.
3. Options must be plausible and exactly one must be correct.
4. Include a detailed explanation for every answer.
5. Avoid ambiguous or trick questions.
6. Focus on testing conceptual understanding, not memorization.

Respond with ONLY a JSON object in the following format:
{
  "questions": [
    {
      "questionNumber": 1,
      "question": "What does the 'console.log()' function do in JavaScript?",
      "options": [
        "Prints a message to the console",
        "Declares a new variable",
        "Stops code execution",
        "Imports a module"
      ],
      "correctOptionIndex": 0,
      "explanation": "'console.log()' writes a message or value to the browser or terminal console, which is useful for debugging.",
      "type": "multiple_choice",
      "difficulty": "easy"
    }
  ]
}

Rules:
- questionNumber is a 1-based sequence number.
- options holds 2 to 6 non-empty strings; true/false questions use exactly two.
- correctOptionIndex is the zero-based index of the correct option.
- question and explanation are each at least 10 characters.
- type is "multiple_choice" or "true_false".
- difficulty is "easy", "medium" or "hard".`

	return prompt
}

var _ domain.QuizGenerationService = (*LLMQuizGenerator)(nil)
