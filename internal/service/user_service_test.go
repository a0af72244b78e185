package service

import (
	"context"
	"testing"

	"nalar/internal/domain"
	"nalar/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("known subject", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockTaskQueue))

		user := domain.NewUser("user-1", "google-sub-1", "learner@example.com")
		repo.On("GetUserBySubject", ctx, "google-sub-1").Return(user, nil)

		resolved, err := svc.ResolveUser(ctx, "google-sub-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", resolved.ID)
	})

	t.Run("empty subject is unauthenticated", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockTaskQueue))

		_, err := svc.ResolveUser(ctx, "")
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeUnauthenticated, domainErr.Code)
		repo.AssertNotCalled(t, "GetUserBySubject", mock.Anything, mock.Anything)
	})

	t.Run("unknown subject", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockTaskQueue))

		repo.On("GetUserBySubject", ctx, "ghost").Return(nil, nil)

		_, err := svc.ResolveUser(ctx, "ghost")
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeUserNotFound, domainErr.Code)
	})
}

func TestCompleteOnboarding(t *testing.T) {
	ctx := context.Background()

	validReq := func() *dto.OnboardingRequest {
		return &dto.OnboardingRequest{
			Username:      "gopher",
			LearningGoals: []string{"concurrency", "testing"},
			StudyReason:   "backend role",
			Level:         "intermediate",
		}
	}

	t.Run("saves profile and queues plan generation", func(t *testing.T) {
		repo := new(MockUserRepository)
		queue := new(MockTaskQueue)
		svc := NewUserService(repo, queue)

		user := domain.NewUser("user-1", "google-sub-1", "learner@example.com")
		repo.On("GetUserBySubject", ctx, "google-sub-1").Return(user, nil)
		repo.On("UpdateUser", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Onboarded && u.Username == "gopher" && u.Level == domain.LevelIntermediate
		})).Return(nil)
		queue.On("Enqueue", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Type == domain.TaskGeneratePlan
		})).Return(nil)

		profile, err := svc.CompleteOnboarding(ctx, "google-sub-1", validReq())

		require.NoError(t, err)
		assert.True(t, profile.Onboarded)
		assert.Equal(t, []string{"concurrency", "testing"}, profile.LearningGoals)
		repo.AssertExpectations(t)
		queue.AssertExpectations(t)
	})

	t.Run("rejects missing goals", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockTaskQueue))

		req := validReq()
		req.LearningGoals = nil

		_, err := svc.CompleteOnboarding(ctx, "google-sub-1", req)
		var errs domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
		repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), new(MockTaskQueue))

		req := validReq()
		req.Level = "wizard"

		_, err := svc.CompleteOnboarding(ctx, "google-sub-1", req)
		var errs domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
	})

	t.Run("enqueue failure fails the request", func(t *testing.T) {
		repo := new(MockUserRepository)
		queue := new(MockTaskQueue)
		svc := NewUserService(repo, queue)

		user := domain.NewUser("user-1", "google-sub-1", "learner@example.com")
		repo.On("GetUserBySubject", ctx, "google-sub-1").Return(user, nil)
		repo.On("UpdateUser", ctx, mock.Anything).Return(nil)
		queue.On("Enqueue", ctx, mock.Anything).Return(assert.AnError)

		_, err := svc.CompleteOnboarding(ctx, "google-sub-1", validReq())
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeInternal, domainErr.Code)
	})
}
