package service

import (
	"context"
	"os"
	"testing"
	"time"

	"nalar/internal/config"
	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/logger"

	"github.com/stretchr/testify/mock"
	"github.com/tmc/langchaingo/llms"
)

// TestMain initializes the logger once for the whole package.
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "info", Env: "test"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

// passthroughTxManager runs transactional functions directly, without a
// database underneath.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- MockUserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserBySubject(ctx context.Context, subject string) (*domain.User, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- MockQuizRepository ---

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuizStatus(ctx context.Context, quizID string, status domain.QuizStatus) error {
	args := m.Called(ctx, quizID, status)
	return args.Error(0)
}

func (m *MockQuizRepository) CompleteQuiz(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetCompletedQuizzesByUser(ctx context.Context, userID string) ([]*domain.Quiz, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) CreateQuestion(ctx context.Context, question *domain.QuizQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuestionByID(ctx context.Context, questionID string) (*domain.QuizQuestion, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizQuestion), args.Error(1)
}

func (m *MockQuizRepository) GetQuestionsByQuiz(ctx context.Context, quizID string) ([]*domain.QuizQuestion, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuizQuestion), args.Error(1)
}

func (m *MockQuizRepository) UpsertResponse(ctx context.Context, response *domain.QuizResponse) (*domain.QuizResponse, error) {
	args := m.Called(ctx, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizResponse), args.Error(1)
}

func (m *MockQuizRepository) GetResponses(ctx context.Context, userID, quizID string) ([]*domain.QuizResponse, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuizResponse), args.Error(1)
}

// --- MockKnowledgeRepository ---

type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) GetNodeByTopic(ctx context.Context, userID, topic string) (*domain.KnowledgeNode, error) {
	args := m.Called(ctx, userID, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeNode), args.Error(1)
}

func (m *MockKnowledgeRepository) CreateNode(ctx context.Context, node *domain.KnowledgeNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) UpdateNode(ctx context.Context, node *domain.KnowledgeNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) UpdateNodeUnderstanding(ctx context.Context, nodeID string, level int) error {
	args := m.Called(ctx, nodeID, level)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) FindEdge(ctx context.Context, userID, sourceID, targetID, label string) (*domain.KnowledgeEdge, error) {
	args := m.Called(ctx, userID, sourceID, targetID, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEdge), args.Error(1)
}

func (m *MockKnowledgeRepository) CreateEdge(ctx context.Context, edge *domain.KnowledgeEdge) error {
	args := m.Called(ctx, edge)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) GetGraph(ctx context.Context, userID string) (*domain.Graph, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Graph), args.Error(1)
}

// --- MockLearningPlanRepository ---

type MockLearningPlanRepository struct {
	mock.Mock
}

func (m *MockLearningPlanRepository) CreatePlan(ctx context.Context, plan *domain.LearningPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockLearningPlanRepository) GetPlanByID(ctx context.Context, planID string) (*domain.LearningPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningPlan), args.Error(1)
}

func (m *MockLearningPlanRepository) GetLatestPlanByUser(ctx context.Context, userID string) (*domain.LearningPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningPlan), args.Error(1)
}

func (m *MockLearningPlanRepository) UpdatePlanSteps(ctx context.Context, planID string, steps []domain.LearningPlanStep) error {
	args := m.Called(ctx, planID, steps)
	return args.Error(0)
}

// --- MockChatRepository ---

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateThread(ctx context.Context, thread *domain.ChatThread) error {
	args := m.Called(ctx, thread)
	return args.Error(0)
}

func (m *MockChatRepository) GetThreadByID(ctx context.Context, threadID string) (*domain.ChatThread, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatThread), args.Error(1)
}

func (m *MockChatRepository) GetThreadsByUser(ctx context.Context, userID string) ([]*domain.ChatThread, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatThread), args.Error(1)
}

func (m *MockChatRepository) TouchThread(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

func (m *MockChatRepository) AppendMessage(ctx context.Context, message *domain.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) GetMessagesByThread(ctx context.Context, threadID string) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

// --- MockTaskQueue ---

type MockTaskQueue struct {
	mock.Mock
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskQueue) Dequeue(ctx context.Context) (*domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

// --- MockQuizGenerator ---

type MockQuizGenerator struct {
	mock.Mock
}

func (m *MockQuizGenerator) GenerateQuestions(ctx context.Context, title, description, topic string, difficulty domain.Difficulty) ([]domain.GeneratedQuestion, error) {
	args := m.Called(ctx, title, description, topic, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeneratedQuestion), args.Error(1)
}

// --- MockPlanGenerator ---

type MockPlanGenerator struct {
	mock.Mock
}

func (m *MockPlanGenerator) GeneratePlan(ctx context.Context, goals []string, studyReason string, level domain.LearningLevel) (*domain.GeneratedPlan, error) {
	args := m.Called(ctx, goals, studyReason, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedPlan), args.Error(1)
}

// --- MockSearchService ---

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, limit int) ([]domain.StepResource, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StepResource), args.Error(1)
}

// --- MockResultCache ---

type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) GetResult(ctx context.Context, quizID string) *dto.CompleteQuizResponse {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*dto.CompleteQuizResponse)
}

func (m *MockResultCache) PutResult(ctx context.Context, quizID string, result *dto.CompleteQuizResponse) {
	m.Called(ctx, quizID, result)
}

// --- MockCache ---

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockChatService ---

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) SendMessage(ctx context.Context, caller *domain.User, threadID string, message string) (*dto.ChatResponse, error) {
	args := m.Called(ctx, caller, threadID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChatResponse), args.Error(1)
}

func (m *MockChatService) GetThreads(ctx context.Context, caller *domain.User) ([]*dto.ThreadResponse, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.ThreadResponse), args.Error(1)
}

func (m *MockChatService) GetMessages(ctx context.Context, caller *domain.User, threadID string) ([]*dto.ChatMessageResponse, error) {
	args := m.Called(ctx, caller, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.ChatMessageResponse), args.Error(1)
}

// --- MockQuizService ---

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) RequestQuiz(ctx context.Context, caller *domain.User, req *dto.CreateQuizRequest) (*dto.QuizSummary, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuizSummary), args.Error(1)
}

func (m *MockQuizService) CreateQuizNow(ctx context.Context, caller *domain.User, req *dto.CreateQuizRequest) (*domain.Quiz, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizService) GenerateQuestionsForQuiz(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockQuizService) GetQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizDetailResponse, error) {
	args := m.Called(ctx, caller, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuizDetailResponse), args.Error(1)
}

func (m *MockQuizService) StartQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizSummary, error) {
	args := m.Called(ctx, caller, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuizSummary), args.Error(1)
}

func (m *MockQuizService) SubmitAnswer(ctx context.Context, caller *domain.User, quizID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	args := m.Called(ctx, caller, quizID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubmitAnswerResponse), args.Error(1)
}

func (m *MockQuizService) CompleteQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.CompleteQuizResponse, error) {
	args := m.Called(ctx, caller, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CompleteQuizResponse), args.Error(1)
}

func (m *MockQuizService) GetQuizResults(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizResultResponse, error) {
	args := m.Called(ctx, caller, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuizResultResponse), args.Error(1)
}

func (m *MockQuizService) GetHistory(ctx context.Context, caller *domain.User, threadID string) ([]*dto.QuizSummary, error) {
	args := m.Called(ctx, caller, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.QuizSummary), args.Error(1)
}

// --- MockKnowledgeService ---

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) UpdateGraph(ctx context.Context, caller *domain.User, req *dto.UpdateKnowledgeGraphRequest) (string, error) {
	args := m.Called(ctx, caller, req)
	return args.String(0), args.Error(1)
}

func (m *MockKnowledgeService) GetGraph(ctx context.Context, caller *domain.User) (*dto.GraphResponse, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GraphResponse), args.Error(1)
}

func (m *MockKnowledgeService) SetUnderstanding(ctx context.Context, caller *domain.User, topic string, level int) error {
	args := m.Called(ctx, caller, topic, level)
	return args.Error(0)
}

// --- MockLearningService ---

type MockLearningService struct {
	mock.Mock
}

func (m *MockLearningService) RequestPlan(ctx context.Context, caller *domain.User) error {
	args := m.Called(ctx, caller)
	return args.Error(0)
}

func (m *MockLearningService) GeneratePlanForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLearningService) GetMyPlan(ctx context.Context, caller *domain.User) (*dto.LearningPlanResponse, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LearningPlanResponse), args.Error(1)
}

func (m *MockLearningService) UpdateStepStatus(ctx context.Context, caller *domain.User, planID string, req *dto.UpdateStepStatusRequest) (*dto.LearningPlanResponse, error) {
	args := m.Called(ctx, caller, planID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LearningPlanResponse), args.Error(1)
}

func (m *MockLearningService) AskTutor(ctx context.Context, caller *domain.User, planID string, req *dto.AskTutorRequest) (*dto.AskTutorResponse, error) {
	args := m.Called(ctx, caller, planID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AskTutorResponse), args.Error(1)
}

// --- MockLLM ---

// MockLLM returns scripted content responses in sequence.
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func intPtr(v int) *int { return &v }
