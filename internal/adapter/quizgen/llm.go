package quizgen

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"nalar/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewLLM builds the langchaingo model client selected by configuration.
// "ollama" talks to a local server, "openai" to any OpenAI-compatible API.
func NewLLM(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Source {
	case "ollama":
		httpClient := &http.Client{Timeout: cfg.Timeout}
		return ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported llm source: %s", cfg.Source)
	}
}

// extractJSONObject pulls the first top-level JSON object out of a raw model
// response. Reasoning models may wrap their output in <think> blocks or prose;
// everything outside the outermost braces is discarded.
func extractJSONObject(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			cleaned = cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):]
			cleaned = strings.TrimSpace(cleaned)
		}
	}

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return "", fmt.Errorf("no JSON object found in LLM response: %s", cleaned)
	}
	return cleaned[jsonStart : jsonEnd+1], nil
}

const defaultLLMTimeout = 60 * time.Second
