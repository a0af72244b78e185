package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/logger"
	"nalar/internal/util"

	"go.uber.org/zap"
)

// QuizService implements the quiz lifecycle: request, generate, start,
// answer, complete, review. All operations take the resolved caller and
// enforce ownership before touching quiz data.
type QuizService interface {
	// RequestQuiz creates a pending quiz and queues question generation.
	// It returns as soon as the task is enqueued.
	RequestQuiz(ctx context.Context, caller *domain.User, req *dto.CreateQuizRequest) (*dto.QuizSummary, error)

	// CreateQuizNow creates a quiz and generates its questions synchronously.
	// The chat tool path uses this so the reply can link a ready quiz.
	CreateQuizNow(ctx context.Context, caller *domain.User, req *dto.CreateQuizRequest) (*domain.Quiz, error)

	// GenerateQuestionsForQuiz runs generation for an already created quiz.
	// The background worker drives this from dequeued tasks.
	GenerateQuestionsForQuiz(ctx context.Context, quizID string) error

	GetQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizDetailResponse, error)
	StartQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizSummary, error)
	SubmitAnswer(ctx context.Context, caller *domain.User, quizID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)

	// CompleteQuiz scores the quiz and freezes it. Completing an already
	// completed quiz returns the stored outcome without rescoring.
	CompleteQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.CompleteQuizResponse, error)

	GetQuizResults(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizResultResponse, error)

	// GetHistory lists the caller's completed quizzes, most recently
	// completed first. A non-empty threadID narrows the list to quizzes
	// created from that chat thread.
	GetHistory(ctx context.Context, caller *domain.User, threadID string) ([]*dto.QuizSummary, error)
}

type quizServiceImpl struct {
	quizRepo    domain.QuizRepository
	generator   domain.QuizGenerationService
	queue       domain.TaskQueue
	resultCache QuizResultCacheService
	txManager   domain.TransactionManager
}

// NewQuizService creates a new instance of QuizService.
func NewQuizService(
	quizRepo domain.QuizRepository,
	generator domain.QuizGenerationService,
	queue domain.TaskQueue,
	resultCache QuizResultCacheService,
	txManager domain.TransactionManager,
) QuizService {
	return &quizServiceImpl{
		quizRepo:    quizRepo,
		generator:   generator,
		queue:       queue,
		resultCache: resultCache,
		txManager:   txManager,
	}
}

// getOwnedQuiz loads a quiz and verifies the caller owns it.
func (s *quizServiceImpl) getOwnedQuiz(ctx context.Context, caller *domain.User, quizID string) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if !caller.Owns(quiz.UserID) {
		return nil, domain.NewForbiddenError(fmt.Sprintf("quiz %s does not belong to the caller", quizID))
	}
	return quiz, nil
}

func (s *quizServiceImpl) RequestQuiz(ctx context.Context, caller *domain.User, req *dto.CreateQuizRequest) (*dto.QuizSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quiz := domain.NewQuiz(util.NewULID(), caller.ID, req.ThreadID, req.Title, req.Description, req.Topic, domain.Difficulty(req.Difficulty))
	if err := s.quizRepo.CreateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to create quiz", err)
	}

	payload, err := json.Marshal(domain.QuizGenerationPayload{
		QuizID:      quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Topic:       quiz.Topic,
		Difficulty:  quiz.Difficulty,
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to marshal quiz generation payload", err)
	}
	task := &domain.Task{
		ID:      util.NewULID(),
		Type:    domain.TaskGenerateQuiz,
		Payload: payload,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to queue generation for quiz %s", quiz.ID), err)
	}

	logger.Get().Info("Quiz requested, generation queued",
		zap.String("quizID", quiz.ID),
		zap.String("userID", caller.ID),
		zap.String("topic", quiz.Topic))

	return dto.NewQuizSummary(quiz), nil
}

func (s *quizServiceImpl) CreateQuizNow(ctx context.Context, caller *domain.User, req *dto.CreateQuizRequest) (*domain.Quiz, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quiz := domain.NewQuiz(util.NewULID(), caller.ID, req.ThreadID, req.Title, req.Description, req.Topic, domain.Difficulty(req.Difficulty))
	if err := s.quizRepo.CreateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to create quiz", err)
	}

	if err := s.generateAndStore(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *quizServiceImpl) GenerateQuestionsForQuiz(ctx context.Context, quizID string) error {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return domain.NewInternalError("failed to load quiz for generation", err)
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(quizID)
	}
	if quiz.IsCompleted() {
		return domain.NewInvalidStateError(fmt.Sprintf("quiz %s is already completed", quizID))
	}

	existing, err := s.quizRepo.GetQuestionsByQuiz(ctx, quizID)
	if err != nil {
		return domain.NewInternalError("failed to check existing questions", err)
	}
	if len(existing) > 0 {
		// A redelivered task; the quiz already has its questions.
		logger.Get().Warn("Skipping generation for quiz that already has questions",
			zap.String("quizID", quizID),
			zap.Int("questions", len(existing)))
		return nil
	}

	return s.generateAndStore(ctx, quiz)
}

func (s *quizServiceImpl) generateAndStore(ctx context.Context, quiz *domain.Quiz) error {
	generated, err := s.generator.GenerateQuestions(ctx, quiz.Title, quiz.Description, quiz.Topic, quiz.Difficulty)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, g := range generated {
			question := &domain.QuizQuestion{
				ID:                 util.NewULID(),
				QuizID:             quiz.ID,
				QuestionNumber:     g.QuestionNumber,
				Question:           g.Question,
				Options:            g.Options,
				CorrectOptionIndex: g.CorrectOptionIndex,
				Explanation:        g.Explanation,
				Type:               g.Type,
				Difficulty:         g.Difficulty,
			}
			if err := question.Validate(); err != nil {
				return err
			}
			if err := s.quizRepo.CreateQuestion(txCtx, question); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to store questions for quiz %s", quiz.ID), err)
	}

	logger.Get().Info("Quiz questions generated",
		zap.String("quizID", quiz.ID),
		zap.Int("questions", len(generated)))
	return nil
}

func (s *quizServiceImpl) GetQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizDetailResponse, error) {
	quiz, err := s.getOwnedQuiz(ctx, caller, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}

	detail := &dto.QuizDetailResponse{
		Quiz:      dto.NewQuizSummary(quiz),
		Questions: make([]*dto.QuestionView, 0, len(questions)),
	}
	for _, q := range questions {
		detail.Questions = append(detail.Questions, dto.NewQuestionView(q))
	}
	return detail, nil
}

// StartQuiz moves a pending quiz to in_progress. Starting an in_progress
// quiz again is a no-op so a page reload can resume; starting a completed
// quiz is an invalid state.
func (s *quizServiceImpl) StartQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizSummary, error) {
	quiz, err := s.getOwnedQuiz(ctx, caller, quizID)
	if err != nil {
		return nil, err
	}
	if err := quiz.CanStart(); err != nil {
		return nil, err
	}

	if quiz.Status == domain.QuizStatusPending {
		if err := s.quizRepo.UpdateQuizStatus(ctx, quizID, domain.QuizStatusInProgress); err != nil {
			return nil, domain.NewInternalError("failed to start quiz", err)
		}
		quiz.Status = domain.QuizStatusInProgress
	}

	return dto.NewQuizSummary(quiz), nil
}

func (s *quizServiceImpl) SubmitAnswer(ctx context.Context, caller *domain.User, quizID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quiz, err := s.getOwnedQuiz(ctx, caller, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsCompleted() {
		return nil, domain.NewInvalidStateError(fmt.Sprintf("quiz %s is completed; answers are frozen", quizID))
	}

	question, err := s.quizRepo.GetQuestionByID(ctx, req.QuestionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load question", err)
	}
	if question == nil || question.QuizID != quizID {
		return nil, domain.NewQuestionNotFoundError(req.QuestionID)
	}
	if req.SelectedOptionIndex >= len(question.Options) {
		return nil, domain.ValidationErrors{
			domain.NewOutOfRangeError("selected_option_index", req.SelectedOptionIndex, 0, len(question.Options)-1),
		}
	}

	response := &domain.QuizResponse{
		ID:                  util.NewULID(),
		UserID:              caller.ID,
		QuizID:              quizID,
		QuestionID:          question.ID,
		SelectedOptionIndex: req.SelectedOptionIndex,
		IsCorrect:           req.SelectedOptionIndex == question.CorrectOptionIndex,
		TimeSpentSeconds:    req.TimeSpentSeconds,
	}
	stored, err := s.quizRepo.UpsertResponse(ctx, response)
	if err != nil {
		return nil, domain.NewInternalError("failed to store response", err)
	}

	return &dto.SubmitAnswerResponse{
		ResponseID:  stored.ID,
		IsCorrect:   stored.IsCorrect,
		Explanation: question.Explanation,
	}, nil
}

func (s *quizServiceImpl) CompleteQuiz(ctx context.Context, caller *domain.User, quizID string) (*dto.CompleteQuizResponse, error) {
	quiz, err := s.getOwnedQuiz(ctx, caller, quizID)
	if err != nil {
		return nil, err
	}

	if quiz.IsCompleted() {
		if cached := s.resultCache.GetResult(ctx, quizID); cached != nil {
			return cached, nil
		}
	}

	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}
	responses, err := s.quizRepo.GetResponses(ctx, caller.ID, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load responses", err)
	}

	correct := 0
	for _, r := range responses {
		if r.IsCorrect {
			correct++
		}
	}

	if quiz.IsCompleted() {
		// Completion is idempotent: the stored score is authoritative and a
		// second call never rescores.
		result := &dto.CompleteQuizResponse{
			TotalQuestions: len(questions),
			CorrectAnswers: correct,
		}
		if quiz.Score != nil {
			result.Score = *quiz.Score
		}
		if quiz.TimeSpentSeconds != nil {
			result.TotalTimeSpent = *quiz.TimeSpentSeconds
		}
		return result, nil
	}

	total := len(questions)
	score := util.CalculateScore(correct, total)
	spentSeconds := make([]int, 0, len(responses))
	for _, r := range responses {
		spentSeconds = append(spentSeconds, r.TimeSpentSeconds)
	}
	timeSpent := util.SumTimeSpent(spentSeconds)

	now := time.Now()
	quiz.Status = domain.QuizStatusCompleted
	quiz.Score = &score
	quiz.TimeSpentSeconds = &timeSpent
	quiz.CompletedAt = &now

	if err := s.quizRepo.CompleteQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to complete quiz", err)
	}

	result := &dto.CompleteQuizResponse{
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		TotalTimeSpent: timeSpent,
	}
	s.resultCache.PutResult(ctx, quizID, result)

	logger.Get().Info("Quiz completed",
		zap.String("quizID", quizID),
		zap.String("userID", caller.ID),
		zap.Int("score", score),
		zap.Int("correct", correct),
		zap.Int("total", total))

	return result, nil
}

func (s *quizServiceImpl) GetQuizResults(ctx context.Context, caller *domain.User, quizID string) (*dto.QuizResultResponse, error) {
	quiz, err := s.getOwnedQuiz(ctx, caller, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCompleted() {
		return nil, domain.NewInvalidStateError(fmt.Sprintf("quiz %s is not completed yet", quizID))
	}

	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}
	responses, err := s.quizRepo.GetResponses(ctx, caller.ID, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load responses", err)
	}

	byQuestion := make(map[string]*domain.QuizResponse, len(responses))
	correct := 0
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
		if r.IsCorrect {
			correct++
		}
	}

	result := &dto.QuizResultResponse{
		QuizID:         quiz.ID,
		Title:          quiz.Title,
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		CompletedAt:    quiz.CompletedAt,
		Questions:      make([]*dto.QuestionResult, 0, len(questions)),
	}
	if quiz.Score != nil {
		result.Score = *quiz.Score
	}
	if quiz.TimeSpentSeconds != nil {
		result.TotalTimeSpent = *quiz.TimeSpentSeconds
	}

	// Questions come back ordered by question number; unanswered ones keep
	// nil response fields.
	for _, q := range questions {
		item := &dto.QuestionResult{
			ID:                 q.ID,
			QuestionNumber:     q.QuestionNumber,
			Question:           q.Question,
			Options:            q.Options,
			CorrectOptionIndex: q.CorrectOptionIndex,
			Explanation:        q.Explanation,
		}
		if r, ok := byQuestion[q.ID]; ok {
			selected := r.SelectedOptionIndex
			isCorrect := r.IsCorrect
			spent := r.TimeSpentSeconds
			item.SelectedOptionIndex = &selected
			item.IsCorrect = &isCorrect
			item.TimeSpentSeconds = &spent
		}
		result.Questions = append(result.Questions, item)
	}

	return result, nil
}

func (s *quizServiceImpl) GetHistory(ctx context.Context, caller *domain.User, threadID string) ([]*dto.QuizSummary, error) {
	quizzes, err := s.quizRepo.GetCompletedQuizzesByUser(ctx, caller.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz history", err)
	}
	summaries := make([]*dto.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		if threadID != "" && q.ThreadID != threadID {
			continue
		}
		summaries = append(summaries, dto.NewQuizSummary(q))
	}
	return summaries, nil
}
