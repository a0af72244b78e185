package service

import (
	"context"
	"encoding/json"
	"fmt"

	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/logger"
	"nalar/internal/util"

	"go.uber.org/zap"
)

// LearningService manages generated learning plans and the per-step tutor
// conversations.
type LearningService interface {
	// RequestPlan queues generation of a fresh plan from the caller's
	// onboarding profile.
	RequestPlan(ctx context.Context, caller *domain.User) error

	// GeneratePlanForUser generates and stores a plan synchronously. The
	// background worker drives this from dequeued tasks.
	GeneratePlanForUser(ctx context.Context, userID string) error

	// GetMyPlan returns the caller's most recent plan.
	GetMyPlan(ctx context.Context, caller *domain.User) (*dto.LearningPlanResponse, error)

	UpdateStepStatus(ctx context.Context, caller *domain.User, planID string, req *dto.UpdateStepStatusRequest) (*dto.LearningPlanResponse, error)

	// AskTutor sends a question about one step. The step's thread is created
	// on first use and reused afterwards.
	AskTutor(ctx context.Context, caller *domain.User, planID string, req *dto.AskTutorRequest) (*dto.AskTutorResponse, error)
}

type learningServiceImpl struct {
	planRepo      domain.LearningPlanRepository
	userRepo      domain.UserRepository
	chatRepo      domain.ChatRepository
	planGenerator domain.PlanGenerationService
	search        domain.ResourceSearchService
	chatService   ChatService
	queue         domain.TaskQueue
	searchLimit   int
}

// NewLearningService creates a new instance of LearningService.
func NewLearningService(
	planRepo domain.LearningPlanRepository,
	userRepo domain.UserRepository,
	chatRepo domain.ChatRepository,
	planGenerator domain.PlanGenerationService,
	search domain.ResourceSearchService,
	chatService ChatService,
	queue domain.TaskQueue,
	searchLimit int,
) LearningService {
	return &learningServiceImpl{
		planRepo:      planRepo,
		userRepo:      userRepo,
		chatRepo:      chatRepo,
		planGenerator: planGenerator,
		search:        search,
		chatService:   chatService,
		queue:         queue,
		searchLimit:   searchLimit,
	}
}

func (s *learningServiceImpl) RequestPlan(ctx context.Context, caller *domain.User) error {
	if !caller.Onboarded || len(caller.LearningGoals) == 0 {
		return domain.NewInvalidStateError("complete onboarding before requesting a plan")
	}

	payload, err := json.Marshal(domain.PlanGenerationPayload{UserID: caller.ID})
	if err != nil {
		return domain.NewInternalError("failed to marshal plan generation payload", err)
	}
	task := &domain.Task{
		ID:      util.NewULID(),
		Type:    domain.TaskGeneratePlan,
		Payload: payload,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to queue plan generation for user %s", caller.ID), err)
	}
	return nil
}

func (s *learningServiceImpl) GeneratePlanForUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return domain.NewInternalError("failed to load user for plan generation", err)
	}
	if user == nil {
		return domain.NewUserNotFoundError(userID)
	}
	if len(user.LearningGoals) == 0 {
		return domain.NewInvalidStateError(fmt.Sprintf("user %s has no learning goals", userID))
	}

	generated, err := s.planGenerator.GeneratePlan(ctx, user.LearningGoals, user.StudyReason, user.Level)
	if err != nil {
		return err
	}

	// Resource search is best-effort enrichment; a failed or disabled search
	// leaves the step without resources.
	for i := range generated.Steps {
		resources, err := s.search.Search(ctx, generated.Steps[i].Title, s.searchLimit)
		if err == nil && len(resources) > 0 {
			generated.Steps[i].Resources = resources
		}
	}

	plan := domain.NewLearningPlan(util.NewULID(), user.ID, generated.Title, generated.Description, generated.Steps)
	if err := s.planRepo.CreatePlan(ctx, plan); err != nil {
		return domain.NewInternalError("failed to store learning plan", err)
	}

	logger.Get().Info("Learning plan generated",
		zap.String("userID", user.ID),
		zap.String("planID", plan.ID),
		zap.Int("steps", len(plan.Steps)))
	return nil
}

func (s *learningServiceImpl) GetMyPlan(ctx context.Context, caller *domain.User) (*dto.LearningPlanResponse, error) {
	plan, err := s.planRepo.GetLatestPlanByUser(ctx, caller.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load learning plan", err)
	}
	if plan == nil {
		return nil, domain.NewPlanNotFoundError("latest")
	}
	return dto.NewLearningPlanResponse(plan), nil
}

// getOwnedPlan loads a plan and verifies the caller owns it.
func (s *learningServiceImpl) getOwnedPlan(ctx context.Context, caller *domain.User, planID string) (*domain.LearningPlan, error) {
	plan, err := s.planRepo.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load learning plan", err)
	}
	if plan == nil {
		return nil, domain.NewPlanNotFoundError(planID)
	}
	if !caller.Owns(plan.UserID) {
		return nil, domain.NewForbiddenError(fmt.Sprintf("plan %s does not belong to the caller", planID))
	}
	return plan, nil
}

func (s *learningServiceImpl) UpdateStepStatus(ctx context.Context, caller *domain.User, planID string, req *dto.UpdateStepStatusRequest) (*dto.LearningPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.getOwnedPlan(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	if req.StepIndex >= len(plan.Steps) {
		return nil, domain.ValidationErrors{
			domain.NewOutOfRangeError("step_index", req.StepIndex, 0, len(plan.Steps)-1),
		}
	}

	// Any transition between the three statuses is allowed; learners mark
	// steps back to in-progress when revisiting them.
	plan.Steps[req.StepIndex].Status = domain.StepStatus(req.Status)
	if err := s.planRepo.UpdatePlanSteps(ctx, planID, plan.Steps); err != nil {
		return nil, domain.NewInternalError("failed to update plan steps", err)
	}

	return dto.NewLearningPlanResponse(plan), nil
}

func (s *learningServiceImpl) AskTutor(ctx context.Context, caller *domain.User, planID string, req *dto.AskTutorRequest) (*dto.AskTutorResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.getOwnedPlan(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	if req.StepIndex >= len(plan.Steps) {
		return nil, domain.ValidationErrors{
			domain.NewOutOfRangeError("step_index", req.StepIndex, 0, len(plan.Steps)-1),
		}
	}

	step := &plan.Steps[req.StepIndex]
	threadID := step.ThreadID
	if threadID == "" {
		thread := &domain.ChatThread{
			ID:     util.NewULID(),
			UserID: caller.ID,
			Title:  step.Title,
		}
		if err := s.chatRepo.CreateThread(ctx, thread); err != nil {
			return nil, domain.NewInternalError("failed to create step thread", err)
		}
		step.ThreadID = thread.ID
		if err := s.planRepo.UpdatePlanSteps(ctx, planID, plan.Steps); err != nil {
			return nil, domain.NewInternalError("failed to bind thread to step", err)
		}
		threadID = thread.ID
	}

	question := fmt.Sprintf("Regarding the study plan step %q: %s", step.Title, req.Question)
	reply, err := s.chatService.SendMessage(ctx, caller, threadID, question)
	if err != nil {
		return nil, err
	}

	return &dto.AskTutorResponse{ThreadID: threadID, Reply: reply.Reply}, nil
}
