package handler

import (
	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/middleware"
	"nalar/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz lifecycle HTTP requests.
type QuizHandler struct {
	userService service.UserService
	quizService service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance.
func NewQuizHandler(userService service.UserService, quizService service.QuizService) *QuizHandler {
	return &QuizHandler{
		userService: userService,
		quizService: quizService,
	}
}

func (h *QuizHandler) caller(c *fiber.Ctx) (*domain.User, error) {
	return h.userService.ResolveUser(c.Context(), middleware.Subject(c))
}

// CreateQuiz requests generation of a new quiz.
// @Summary Request a quiz
// @Description Creates a pending quiz and queues question generation.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuizRequest true "Quiz parameters"
// @Success 202 {object} dto.QuizSummary
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.quizService.RequestQuiz(c.Context(), caller, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(summary)
}

// GetQuiz returns a quiz with its questions in take view.
// @Summary Get a quiz
// @Description Returns the quiz and its questions without answers.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizDetailResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	detail, err := h.quizService.GetQuiz(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// StartQuiz moves a pending quiz to in_progress.
// @Summary Start a quiz
// @Description Transitions the quiz to in_progress. Starting again is a no-op; a completed quiz cannot be restarted.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizSummary
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/start [post]
func (h *QuizHandler) StartQuiz(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	summary, err := h.quizService.StartQuiz(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// SubmitAnswer records an answer and returns immediate feedback.
// @Summary Submit an answer
// @Description Records the selected option; resubmitting a question replaces the earlier answer.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param request body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/answers [post]
func (h *QuizHandler) SubmitAnswer(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.quizService.SubmitAnswer(c.Context(), caller, c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CompleteQuiz scores the quiz and freezes it.
// @Summary Complete a quiz
// @Description Scores the quiz and freezes it; completing again returns the stored outcome.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.CompleteQuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/complete [post]
func (h *QuizHandler) CompleteQuiz(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	result, err := h.quizService.CompleteQuiz(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetQuizResults returns the full results view of a completed quiz.
// @Summary Get quiz results
// @Description Returns score and per-question outcomes for a completed quiz.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResultResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/results [get]
func (h *QuizHandler) GetQuizResults(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	result, err := h.quizService.GetQuizResults(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetHistory lists the caller's completed quizzes, most recently completed first.
// @Summary List my quizzes
// @Description Returns all of the caller's quizzes, newest first.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param threadId query string false "Only quizzes created from this chat thread"
// @Success 200 {array} dto.QuizSummary
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	summaries, err := h.quizService.GetHistory(c.Context(), caller, c.Query("threadId"))
	if err != nil {
		return err
	}
	return c.JSON(summaries)
}
