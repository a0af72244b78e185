package dto

import (
	"strings"
	"time"

	"nalar/internal/domain"
)

// ChatRequest is the request body for sending one chat turn. ThreadID is
// empty for the first turn of a new conversation.
// @Description Request body for a chat message
type ChatRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Message  string `json:"message" validate:"required"`
}

// Validate checks the chat turn fields.
func (r *ChatRequest) Validate() error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(r.Message) == "" {
		errs = append(errs, domain.NewMissingFieldError("message"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ChatResponse is the assistant's reply for one chat turn.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
}

// ThreadResponse is the list view of a chat thread.
type ThreadResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewThreadResponse maps a domain thread to its API representation.
func NewThreadResponse(t *domain.ChatThread) *ThreadResponse {
	return &ThreadResponse{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ChatMessageResponse is one persisted turn of a thread.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessageResponse maps a domain message to its API representation.
func NewChatMessageResponse(m *domain.ChatMessage) *ChatMessageResponse {
	return &ChatMessageResponse{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
