package handler

import (
	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/middleware"
	"nalar/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles tutoring conversation HTTP requests.
type ChatHandler struct {
	userService service.UserService
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler instance.
func NewChatHandler(userService service.UserService, chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		userService: userService,
		chatService: chatService,
	}
}

func (h *ChatHandler) caller(c *fiber.Ctx) (*domain.User, error) {
	return h.userService.ResolveUser(c.Context(), middleware.Subject(c))
}

// SendMessage appends one user turn and returns the assistant's reply.
// @Summary Send a chat message
// @Description Sends a message to the tutor; omit thread_id to start a new thread.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChatRequest true "Message"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.chatService.SendMessage(c.Context(), caller, req.ThreadID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetThreads lists the caller's threads by recent activity.
// @Summary List my chat threads
// @Description Returns the caller's threads, most recently active first.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ThreadResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /chat/threads [get]
func (h *ChatHandler) GetThreads(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	threads, err := h.chatService.GetThreads(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(threads)
}

// GetMessages returns the messages of one thread oldest first.
// @Summary Get thread messages
// @Description Returns the full message history of one thread.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Thread ID"
// @Success 200 {array} dto.ChatMessageResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /chat/threads/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	messages, err := h.chatService.GetMessages(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(messages)
}
