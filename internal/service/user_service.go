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

// UserService resolves caller identity and manages the user profile. Every
// service operation that touches owned data starts from an explicit subject
// string; there is no ambient caller state.
type UserService interface {
	// ResolveUser maps an identity subject to the stored user. An empty
	// subject is unauthenticated; an unknown one is a missing user record.
	ResolveUser(ctx context.Context, subject string) (*domain.User, error)

	GetProfile(ctx context.Context, subject string) (*dto.UserProfileResponse, error)

	// CompleteOnboarding stores the learning profile and queues plan
	// generation. Re-running onboarding overwrites the profile and queues a
	// fresh plan.
	CompleteOnboarding(ctx context.Context, subject string, req *dto.OnboardingRequest) (*dto.UserProfileResponse, error)
}

type userServiceImpl struct {
	userRepo domain.UserRepository
	queue    domain.TaskQueue
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository, queue domain.TaskQueue) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		queue:    queue,
	}
}

func (s *userServiceImpl) ResolveUser(ctx context.Context, subject string) (*domain.User, error) {
	if subject == "" {
		return nil, domain.NewUnauthenticatedError()
	}
	user, err := s.userRepo.GetUserBySubject(ctx, subject)
	if err != nil {
		return nil, domain.NewInternalError("failed to resolve user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(subject)
	}
	return user, nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, subject string) (*dto.UserProfileResponse, error) {
	user, err := s.ResolveUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	return dto.NewUserProfileResponse(user), nil
}

func (s *userServiceImpl) CompleteOnboarding(ctx context.Context, subject string, req *dto.OnboardingRequest) (*dto.UserProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.ResolveUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	user.LearningGoals = req.LearningGoals
	user.StudyReason = req.StudyReason
	user.Level = domain.LearningLevel(req.Level)
	user.Onboarded = true

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to save onboarding profile", err)
	}

	payload, err := json.Marshal(domain.PlanGenerationPayload{UserID: user.ID})
	if err != nil {
		return nil, domain.NewInternalError("failed to marshal plan generation payload", err)
	}
	task := &domain.Task{
		ID:      util.NewULID(),
		Type:    domain.TaskGeneratePlan,
		Payload: payload,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to queue plan generation for user %s", user.ID), err)
	}

	logger.Get().Info("Onboarding completed, plan generation queued",
		zap.String("userID", user.ID),
		zap.String("taskID", task.ID))

	return dto.NewUserProfileResponse(user), nil
}
