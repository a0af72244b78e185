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

type learningFixture struct {
	planRepo    *MockLearningPlanRepository
	userRepo    *MockUserRepository
	chatRepo    *MockChatRepository
	generator   *MockPlanGenerator
	search      *MockSearchService
	chatService *MockChatService
	queue       *MockTaskQueue
	svc         LearningService
}

func newLearningFixture() *learningFixture {
	f := &learningFixture{
		planRepo:    new(MockLearningPlanRepository),
		userRepo:    new(MockUserRepository),
		chatRepo:    new(MockChatRepository),
		generator:   new(MockPlanGenerator),
		search:      new(MockSearchService),
		chatService: new(MockChatService),
		queue:       new(MockTaskQueue),
	}
	f.svc = NewLearningService(f.planRepo, f.userRepo, f.chatRepo, f.generator, f.search, f.chatService, f.queue, 3)
	return f
}

func onboardedCaller() *domain.User {
	caller := testCaller()
	caller.Onboarded = true
	caller.LearningGoals = []string{"concurrency"}
	caller.StudyReason = "backend role"
	caller.Level = domain.LevelIntermediate
	return caller
}

func TestRequestPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("queues generation for onboarded caller", func(t *testing.T) {
		f := newLearningFixture()
		f.queue.On("Enqueue", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Type == domain.TaskGeneratePlan
		})).Return(nil)

		require.NoError(t, f.svc.RequestPlan(ctx, onboardedCaller()))
		f.queue.AssertExpectations(t)
	})

	t.Run("rejects caller who skipped onboarding", func(t *testing.T) {
		f := newLearningFixture()

		err := f.svc.RequestPlan(ctx, testCaller())
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeInvalidState, domainErr.Code)
		f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})
}

func TestGeneratePlanForUser(t *testing.T) {
	ctx := context.Background()

	generatedPlan := func() *domain.GeneratedPlan {
		return &domain.GeneratedPlan{
			Title:       "Go backend path",
			Description: "From basics to production services",
			Steps: []domain.LearningPlanStep{
				{Title: "Syntax and types", Description: "Start here"},
				{Title: "Concurrency", Description: "Goroutines and channels"},
			},
		}
	}

	t.Run("generates, enriches and stores a plan", func(t *testing.T) {
		f := newLearningFixture()

		user := onboardedCaller()
		f.userRepo.On("GetUserByID", ctx, user.ID).Return(user, nil)
		f.generator.On("GeneratePlan", ctx, user.LearningGoals, user.StudyReason, user.Level).Return(generatedPlan(), nil)
		f.search.On("Search", ctx, "Syntax and types", 3).Return([]domain.StepResource{
			{Title: "Tour of Go", URL: "https://go.dev/tour", Type: "tutorial"},
		}, nil)
		f.search.On("Search", ctx, "Concurrency", 3).Return([]domain.StepResource{}, nil)
		f.planRepo.On("CreatePlan", ctx, mock.MatchedBy(func(p *domain.LearningPlan) bool {
			return p.UserID == user.ID &&
				len(p.Steps) == 2 &&
				len(p.Steps[0].Resources) == 1 &&
				p.Steps[0].Status == domain.StepStatusNotStarted
		})).Return(nil)

		require.NoError(t, f.svc.GeneratePlanForUser(ctx, user.ID))
		f.planRepo.AssertExpectations(t)
	})

	t.Run("search failure leaves steps without resources", func(t *testing.T) {
		f := newLearningFixture()

		user := onboardedCaller()
		f.userRepo.On("GetUserByID", ctx, user.ID).Return(user, nil)
		f.generator.On("GeneratePlan", ctx, user.LearningGoals, user.StudyReason, user.Level).Return(generatedPlan(), nil)
		f.search.On("Search", ctx, mock.Anything, 3).Return(nil, assert.AnError)
		f.planRepo.On("CreatePlan", ctx, mock.MatchedBy(func(p *domain.LearningPlan) bool {
			return len(p.Steps[0].Resources) == 0
		})).Return(nil)

		require.NoError(t, f.svc.GeneratePlanForUser(ctx, user.ID))
	})

	t.Run("user without goals cannot get a plan", func(t *testing.T) {
		f := newLearningFixture()

		user := testCaller()
		f.userRepo.On("GetUserByID", ctx, user.ID).Return(user, nil)

		err := f.svc.GeneratePlanForUser(ctx, user.ID)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeInvalidState, domainErr.Code)
	})
}

func TestGetMyPlan(t *testing.T) {
	ctx := context.Background()
	caller := testCaller()

	t.Run("returns the latest plan", func(t *testing.T) {
		f := newLearningFixture()

		plan := domain.NewLearningPlan("plan-1", caller.ID, "Go path", "", []domain.LearningPlanStep{
			{Title: "Basics"},
		})
		f.planRepo.On("GetLatestPlanByUser", ctx, caller.ID).Return(plan, nil)

		resp, err := f.svc.GetMyPlan(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, "plan-1", resp.ID)
		require.Len(t, resp.Steps, 1)
		assert.Equal(t, 0, resp.Steps[0].Index)
	})

	t.Run("no plan yet", func(t *testing.T) {
		f := newLearningFixture()
		f.planRepo.On("GetLatestPlanByUser", ctx, caller.ID).Return(nil, nil)

		_, err := f.svc.GetMyPlan(ctx, caller)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodePlanNotFound, domainErr.Code)
	})
}

func TestUpdateStepStatus(t *testing.T) {
	ctx := context.Background()
	caller := testCaller()

	planWithSteps := func() *domain.LearningPlan {
		return domain.NewLearningPlan("plan-1", caller.ID, "Go path", "", []domain.LearningPlanStep{
			{Title: "Basics"},
			{Title: "Concurrency"},
		})
	}

	t.Run("updates one step", func(t *testing.T) {
		f := newLearningFixture()

		f.planRepo.On("GetPlanByID", ctx, "plan-1").Return(planWithSteps(), nil)
		f.planRepo.On("UpdatePlanSteps", ctx, "plan-1", mock.MatchedBy(func(steps []domain.LearningPlanStep) bool {
			return steps[1].Status == domain.StepStatusCompleted && steps[0].Status == domain.StepStatusNotStarted
		})).Return(nil)

		resp, err := f.svc.UpdateStepStatus(ctx, caller, "plan-1", &dto.UpdateStepStatusRequest{
			StepIndex: 1,
			Status:    "completed",
		})
		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Steps[1].Status)
	})

	t.Run("completed step can move back to in-progress", func(t *testing.T) {
		f := newLearningFixture()

		plan := planWithSteps()
		plan.Steps[0].Status = domain.StepStatusCompleted
		f.planRepo.On("GetPlanByID", ctx, "plan-1").Return(plan, nil)
		f.planRepo.On("UpdatePlanSteps", ctx, "plan-1", mock.Anything).Return(nil)

		resp, err := f.svc.UpdateStepStatus(ctx, caller, "plan-1", &dto.UpdateStepStatusRequest{
			StepIndex: 0,
			Status:    "in-progress",
		})
		require.NoError(t, err)
		assert.Equal(t, "in-progress", resp.Steps[0].Status)
	})

	t.Run("index out of bounds", func(t *testing.T) {
		f := newLearningFixture()
		f.planRepo.On("GetPlanByID", ctx, "plan-1").Return(planWithSteps(), nil)

		_, err := f.svc.UpdateStepStatus(ctx, caller, "plan-1", &dto.UpdateStepStatusRequest{
			StepIndex: 5,
			Status:    "completed",
		})
		var errs domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
		f.planRepo.AssertNotCalled(t, "UpdatePlanSteps", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newLearningFixture()

		_, err := f.svc.UpdateStepStatus(ctx, caller, "plan-1", &dto.UpdateStepStatusRequest{
			StepIndex: 0,
			Status:    "paused",
		})
		var errs domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
	})

	t.Run("foreign plan is forbidden", func(t *testing.T) {
		f := newLearningFixture()

		plan := planWithSteps()
		plan.UserID = "someone-else"
		f.planRepo.On("GetPlanByID", ctx, "plan-1").Return(plan, nil)

		_, err := f.svc.UpdateStepStatus(ctx, caller, "plan-1", &dto.UpdateStepStatusRequest{
			StepIndex: 0,
			Status:    "completed",
		})
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeForbidden, domainErr.Code)
	})
}

func TestAskTutor(t *testing.T) {
	ctx := context.Background()
	caller := testCaller()

	t.Run("first question creates and binds a thread", func(t *testing.T) {
		f := newLearningFixture()

		plan := domain.NewLearningPlan("plan-1", caller.ID, "Go path", "", []domain.LearningPlanStep{
			{Title: "Concurrency"},
		})
		f.planRepo.On("GetPlanByID", ctx, "plan-1").Return(plan, nil)
		f.chatRepo.On("CreateThread", ctx, mock.MatchedBy(func(th *domain.ChatThread) bool {
			return th.UserID == caller.ID && th.Title == "Concurrency"
		})).Return(nil)
		f.planRepo.On("UpdatePlanSteps", ctx, "plan-1", mock.MatchedBy(func(steps []domain.LearningPlanStep) bool {
			return steps[0].ThreadID != ""
		})).Return(nil)
		f.chatService.On("SendMessage", ctx, caller, mock.AnythingOfType("string"),
			`Regarding the study plan step "Concurrency": What is a channel?`).
			Return(&dto.ChatResponse{ThreadID: "thread-1", Reply: "A channel is a typed conduit."}, nil)

		resp, err := f.svc.AskTutor(ctx, caller, "plan-1", &dto.AskTutorRequest{
			StepIndex: 0,
			Question:  "What is a channel?",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ThreadID)
		assert.Equal(t, "A channel is a typed conduit.", resp.Reply)
		f.chatRepo.AssertExpectations(t)
		f.planRepo.AssertExpectations(t)
	})

	t.Run("later questions reuse the bound thread", func(t *testing.T) {
		f := newLearningFixture()

		plan := domain.NewLearningPlan("plan-1", caller.ID, "Go path", "", []domain.LearningPlanStep{
			{Title: "Concurrency", ThreadID: "thread-1"},
		})
		f.planRepo.On("GetPlanByID", ctx, "plan-1").Return(plan, nil)
		f.chatService.On("SendMessage", ctx, caller, "thread-1", mock.AnythingOfType("string")).
			Return(&dto.ChatResponse{ThreadID: "thread-1", Reply: "Buffered channels have capacity."}, nil)

		resp, err := f.svc.AskTutor(ctx, caller, "plan-1", &dto.AskTutorRequest{
			StepIndex: 0,
			Question:  "What about buffered ones?",
		})

		require.NoError(t, err)
		assert.Equal(t, "thread-1", resp.ThreadID)
		f.chatRepo.AssertNotCalled(t, "CreateThread", mock.Anything, mock.Anything)
	})

	t.Run("step index out of bounds", func(t *testing.T) {
		f := newLearningFixture()

		plan := domain.NewLearningPlan("plan-1", caller.ID, "Go path", "", []domain.LearningPlanStep{
			{Title: "Concurrency"},
		})
		f.planRepo.On("GetPlanByID", ctx, "plan-1").Return(plan, nil)

		_, err := f.svc.AskTutor(ctx, caller, "plan-1", &dto.AskTutorRequest{
			StepIndex: 3,
			Question:  "Where am I?",
		})
		var errs domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
	})
}
