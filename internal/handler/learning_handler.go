package handler

import (
	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/middleware"
	"nalar/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LearningHandler handles learning plan HTTP requests.
type LearningHandler struct {
	userService     service.UserService
	learningService service.LearningService
}

// NewLearningHandler creates a new LearningHandler instance.
func NewLearningHandler(userService service.UserService, learningService service.LearningService) *LearningHandler {
	return &LearningHandler{
		userService:     userService,
		learningService: learningService,
	}
}

func (h *LearningHandler) caller(c *fiber.Ctx) (*domain.User, error) {
	return h.userService.ResolveUser(c.Context(), middleware.Subject(c))
}

// RequestPlan queues generation of a fresh learning plan.
// @Summary Request a learning plan
// @Description Queues generation of a new plan from the caller's onboarding profile.
// @Tags learning
// @Produce json
// @Security BearerAuth
// @Success 202 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /learning/plan [post]
func (h *LearningHandler) RequestPlan(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	if err := h.learningService.RequestPlan(c.Context(), caller); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: "plan generation queued"})
}

// GetMyPlan returns the caller's most recent plan.
// @Summary Get my learning plan
// @Description Returns the caller's latest generated plan.
// @Tags learning
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.LearningPlanResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /learning/plan [get]
func (h *LearningHandler) GetMyPlan(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	plan, err := h.learningService.GetMyPlan(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(plan)
}

// UpdateStepStatus changes one step's status.
// @Summary Update a plan step status
// @Description Sets the status of one step of the caller's plan.
// @Tags learning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param request body dto.UpdateStepStatusRequest true "Step status"
// @Success 200 {object} dto.LearningPlanResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /learning/plan/{id}/steps [patch]
func (h *LearningHandler) UpdateStepStatus(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStepStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := h.learningService.UpdateStepStatus(c.Context(), caller, c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(plan)
}

// AskTutor sends a question about one plan step.
// @Summary Ask the tutor about a step
// @Description Sends a question scoped to one plan step; the step's thread is created on first use.
// @Tags learning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param request body dto.AskTutorRequest true "Question"
// @Success 200 {object} dto.AskTutorResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /learning/plan/{id}/ask [post]
func (h *LearningHandler) AskTutor(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req dto.AskTutorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.learningService.AskTutor(c.Context(), caller, c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
