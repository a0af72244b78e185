package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/logger"
	"nalar/internal/util"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const (
	toolCreateQuiz           = "create_quiz"
	toolUpdateKnowledgeGraph = "update_knowledge_graph"

	// maxToolRounds bounds the dispatch loop so a model that keeps asking
	// for tools cannot spin forever.
	maxToolRounds = 5

	defaultThreadTitleLen = 50
)

const tutorSystemPrompt = `You are Nalar, a personal AI tutor. You explain concepts clearly, adapt to the learner's level, and keep answers focused.

You have two tools:
- create_quiz: create a quiz when the learner wants to test their understanding of a topic.
- update_knowledge_graph: record a topic the learner has just studied or demonstrated understanding of, with an understanding level from 0 to 100 and related topics.

After explaining a substantial concept, record it with update_knowledge_graph. When you create a quiz, tell the learner it is ready and include the link you are given.`

// ChatService runs tutoring conversations, dispatching the model's tool
// calls against the quiz and knowledge services.
type ChatService interface {
	// SendMessage appends one user turn and returns the assistant's reply.
	// An empty threadID starts a new thread.
	SendMessage(ctx context.Context, caller *domain.User, threadID string, message string) (*dto.ChatResponse, error)

	GetThreads(ctx context.Context, caller *domain.User) ([]*dto.ThreadResponse, error)
	GetMessages(ctx context.Context, caller *domain.User, threadID string) ([]*dto.ChatMessageResponse, error)
}

type chatServiceImpl struct {
	model            llms.Model
	chatRepo         domain.ChatRepository
	quizService      QuizService
	knowledgeService KnowledgeService
}

// NewChatService creates a new instance of ChatService.
func NewChatService(
	model llms.Model,
	chatRepo domain.ChatRepository,
	quizService QuizService,
	knowledgeService KnowledgeService,
) ChatService {
	return &chatServiceImpl{
		model:            model,
		chatRepo:         chatRepo,
		quizService:      quizService,
		knowledgeService: knowledgeService,
	}
}

// createQuizArgs is the JSON argument shape of the create_quiz tool.
type createQuizArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Topic       string `json:"topic"`
	Difficulty  string `json:"difficulty"`
}

func chatTools() []llms.Tool {
	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        toolCreateQuiz,
				Description: "Create a quiz for the learner on a given topic. Returns a markdown link to the ready quiz.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string", "description": "Quiz title, 5 to 100 characters"},
						"description": map[string]any{"type": "string", "description": "Short description of what the quiz covers"},
						"topic":       map[string]any{"type": "string", "description": "The topic the questions are about"},
						"difficulty":  map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
					},
					"required": []string{"title", "topic", "difficulty"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        toolUpdateKnowledgeGraph,
				Description: "Record a topic the learner studied, with understanding level and related topics.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic":               map[string]any{"type": "string", "description": "The topic that was studied"},
						"description":         map[string]any{"type": "string", "description": "One sentence describing the topic"},
						"understanding_level": map[string]any{"type": "integer", "description": "Estimated understanding from 0 to 100; omit when unknown"},
						"connections": map[string]any{
							"type":        "array",
							"description": "Related topics and how they relate",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"topic":        map[string]any{"type": "string"},
									"relationship": map[string]any{"type": "string"},
								},
								"required": []string{"topic"},
							},
						},
					},
					"required": []string{"topic"},
				},
			},
		},
	}
}

func (s *chatServiceImpl) SendMessage(ctx context.Context, caller *domain.User, threadID string, message string) (*dto.ChatResponse, error) {
	req := &dto.ChatRequest{ThreadID: threadID, Message: message}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	thread, err := s.resolveThread(ctx, caller, threadID, message)
	if err != nil {
		return nil, err
	}

	history, err := s.chatRepo.GetMessagesByThread(ctx, thread.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load thread history", err)
	}

	userMsg := &domain.ChatMessage{
		ID:       util.NewULID(),
		ThreadID: thread.ID,
		Role:     domain.ChatRoleUser,
		Content:  message,
	}
	if err := s.chatRepo.AppendMessage(ctx, userMsg); err != nil {
		return nil, domain.NewInternalError("failed to store user message", err)
	}

	contents := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, tutorSystemPrompt)}
	for _, m := range history {
		switch m.Role {
		case domain.ChatRoleUser:
			contents = append(contents, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case domain.ChatRoleAssistant:
			contents = append(contents, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		}
	}
	contents = append(contents, llms.TextParts(llms.ChatMessageTypeHuman, message))

	reply, err := s.runToolLoop(ctx, caller, thread, contents)
	if err != nil {
		return nil, err
	}

	assistantMsg := &domain.ChatMessage{
		ID:       util.NewULID(),
		ThreadID: thread.ID,
		Role:     domain.ChatRoleAssistant,
		Content:  reply,
	}
	if err := s.chatRepo.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, domain.NewInternalError("failed to store assistant message", err)
	}
	if err := s.chatRepo.TouchThread(ctx, thread.ID); err != nil {
		logger.Get().Warn("failed to touch thread", zap.Error(err), zap.String("threadID", thread.ID))
	}

	return &dto.ChatResponse{ThreadID: thread.ID, Reply: reply}, nil
}

func (s *chatServiceImpl) resolveThread(ctx context.Context, caller *domain.User, threadID, firstMessage string) (*domain.ChatThread, error) {
	if threadID == "" {
		// Truncate on rune boundaries so a multi-byte first message never
		// produces an invalid title.
		title := firstMessage
		if runes := []rune(title); len(runes) > defaultThreadTitleLen {
			title = string(runes[:defaultThreadTitleLen])
		}
		thread := &domain.ChatThread{
			ID:     util.NewULID(),
			UserID: caller.ID,
			Title:  title,
		}
		if err := s.chatRepo.CreateThread(ctx, thread); err != nil {
			return nil, domain.NewInternalError("failed to create thread", err)
		}
		return thread, nil
	}

	thread, err := s.chatRepo.GetThreadByID(ctx, threadID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load thread", err)
	}
	if thread == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("thread %s not found", threadID))
	}
	if !caller.Owns(thread.UserID) {
		return nil, domain.NewForbiddenError(fmt.Sprintf("thread %s does not belong to the caller", threadID))
	}
	return thread, nil
}

// runToolLoop calls the model, dispatching tool calls and feeding their
// results back until the model answers in plain text.
func (s *chatServiceImpl) runToolLoop(ctx context.Context, caller *domain.User, thread *domain.ChatThread, contents []llms.MessageContent) (string, error) {
	tools := chatTools()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.model.GenerateContent(ctx, contents, llms.WithTools(tools))
		if err != nil {
			return "", domain.NewLLMServiceError(err)
		}
		if len(resp.Choices) == 0 {
			return "", domain.NewLLMServiceError(fmt.Errorf("model returned no choices"))
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			return strings.TrimSpace(choice.Content), nil
		}

		assistantTurn := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choice.ToolCalls {
			assistantTurn.Parts = append(assistantTurn.Parts, tc)
		}
		contents = append(contents, assistantTurn)

		for _, tc := range choice.ToolCalls {
			result := s.dispatchTool(ctx, caller, thread, tc)
			contents = append(contents, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    result,
				}},
			})
		}
	}

	return "", domain.NewLLMServiceError(fmt.Errorf("tool loop did not settle within %d rounds", maxToolRounds))
}

// dispatchTool executes one tool call. Failures are reported back to the
// model as tool output rather than aborting the conversation.
func (s *chatServiceImpl) dispatchTool(ctx context.Context, caller *domain.User, thread *domain.ChatThread, tc llms.ToolCall) string {
	if tc.FunctionCall == nil {
		return "Error: malformed tool call"
	}

	switch tc.FunctionCall.Name {
	case toolCreateQuiz:
		var args createQuizArgs
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
			return fmt.Sprintf("Error: invalid create_quiz arguments: %v", err)
		}
		quiz, err := s.quizService.CreateQuizNow(ctx, caller, &dto.CreateQuizRequest{
			Title:       args.Title,
			Description: args.Description,
			Topic:       args.Topic,
			Difficulty:  args.Difficulty,
			ThreadID:    thread.ID,
		})
		if err != nil {
			logger.Get().Warn("create_quiz tool call failed", zap.Error(err), zap.String("userID", caller.ID))
			return fmt.Sprintf("Error: could not create the quiz: %v", err)
		}
		return fmt.Sprintf("Quiz created. Share this link with the learner: [%s](/quiz/%s)", quiz.Title, quiz.ID)

	case toolUpdateKnowledgeGraph:
		var args dto.UpdateKnowledgeGraphRequest
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
			return fmt.Sprintf("Error: invalid update_knowledge_graph arguments: %v", err)
		}
		confirmation, err := s.knowledgeService.UpdateGraph(ctx, caller, &args)
		if err != nil {
			logger.Get().Warn("update_knowledge_graph tool call failed", zap.Error(err), zap.String("userID", caller.ID))
			return fmt.Sprintf("Error: could not update the knowledge graph: %v", err)
		}
		return confirmation

	default:
		return fmt.Sprintf("Error: unknown tool %q", tc.FunctionCall.Name)
	}
}

func (s *chatServiceImpl) GetThreads(ctx context.Context, caller *domain.User) ([]*dto.ThreadResponse, error) {
	threads, err := s.chatRepo.GetThreadsByUser(ctx, caller.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load threads", err)
	}
	out := make([]*dto.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, dto.NewThreadResponse(t))
	}
	return out, nil
}

func (s *chatServiceImpl) GetMessages(ctx context.Context, caller *domain.User, threadID string) ([]*dto.ChatMessageResponse, error) {
	thread, err := s.chatRepo.GetThreadByID(ctx, threadID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load thread", err)
	}
	if thread == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("thread %s not found", threadID))
	}
	if !caller.Owns(thread.UserID) {
		return nil, domain.NewForbiddenError(fmt.Sprintf("thread %s does not belong to the caller", threadID))
	}

	messages, err := s.chatRepo.GetMessagesByThread(ctx, threadID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load messages", err)
	}
	out := make([]*dto.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.NewChatMessageResponse(m))
	}
	return out, nil
}
