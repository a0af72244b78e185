package handler

import (
	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/middleware"
	"nalar/internal/service"

	"github.com/gofiber/fiber/v2"
)

// KnowledgeHandler handles knowledge graph HTTP requests.
type KnowledgeHandler struct {
	userService      service.UserService
	knowledgeService service.KnowledgeService
}

// NewKnowledgeHandler creates a new KnowledgeHandler instance.
func NewKnowledgeHandler(userService service.UserService, knowledgeService service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{
		userService:      userService,
		knowledgeService: knowledgeService,
	}
}

func (h *KnowledgeHandler) caller(c *fiber.Ctx) (*domain.User, error) {
	return h.userService.ResolveUser(c.Context(), middleware.Subject(c))
}

// GetGraph returns the caller's full knowledge graph.
// @Summary Get my knowledge graph
// @Description Returns every node and edge of the caller's knowledge graph.
// @Tags knowledge
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.GraphResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /knowledge/graph [get]
func (h *KnowledgeHandler) GetGraph(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	graph, err := h.knowledgeService.GetGraph(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(graph)
}

// UpdateGraph upserts one topic with its connections.
// @Summary Update my knowledge graph
// @Description Upserts a topic node, refreshing understanding and connecting related topics.
// @Tags knowledge
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateKnowledgeGraphRequest true "Topic update"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /knowledge/graph [post]
func (h *KnowledgeHandler) UpdateGraph(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req dto.UpdateKnowledgeGraphRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	confirmation, err := h.knowledgeService.UpdateGraph(c.Context(), caller, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: confirmation})
}

// SetUnderstanding adjusts the understanding level of one existing topic.
// @Summary Set topic understanding
// @Description Sets the understanding level of an existing topic node, clamped to 0-100.
// @Tags knowledge
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetUnderstandingRequest true "Understanding update"
// @Success 204
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /knowledge/graph/understanding [patch]
func (h *KnowledgeHandler) SetUnderstanding(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req dto.SetUnderstandingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.knowledgeService.SetUnderstanding(c.Context(), caller, req.Topic, req.UnderstandingLevel); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
