package handler

import (
	"nalar/internal/dto"
	"nalar/internal/middleware"
	"nalar/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and onboarding endpoints.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the caller's profile.
// @Summary Get my profile
// @Description Returns the authenticated user's profile.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	profile, err := h.userService.GetProfile(c.Context(), middleware.Subject(c))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// CompleteOnboarding stores the learning profile and queues plan generation.
// @Summary Complete onboarding
// @Description Stores learning goals, study reason and level, then queues learning plan generation.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OnboardingRequest true "Onboarding form"
// @Success 200 {object} dto.UserProfileResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me/onboarding [post]
func (h *UserHandler) CompleteOnboarding(c *fiber.Ctx) error {
	var req dto.OnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.userService.CompleteOnboarding(c.Context(), middleware.Subject(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
