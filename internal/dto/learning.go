package dto

import (
	"strings"
	"time"

	"nalar/internal/domain"
)

// StepResourceResponse is one external resource attached to a plan step.
type StepResourceResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// PlanStepResponse is one step of the plan view.
type PlanStepResponse struct {
	Index       int                    `json:"index"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      string                 `json:"status"`
	Resources   []StepResourceResponse `json:"resources,omitempty"`
	ThreadID    string                 `json:"thread_id,omitempty"`
}

// LearningPlanResponse is the full plan view.
type LearningPlanResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Steps       []*PlanStepResponse `json:"steps"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewLearningPlanResponse maps a domain plan to its API representation.
func NewLearningPlanResponse(p *domain.LearningPlan) *LearningPlanResponse {
	resp := &LearningPlanResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Steps:       make([]*PlanStepResponse, 0, len(p.Steps)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i, s := range p.Steps {
		step := &PlanStepResponse{
			Index:       i,
			Title:       s.Title,
			Description: s.Description,
			Status:      string(s.Status),
			ThreadID:    s.ThreadID,
		}
		for _, res := range s.Resources {
			step.Resources = append(step.Resources, StepResourceResponse{
				Title: res.Title,
				URL:   res.URL,
				Type:  res.Type,
			})
		}
		resp.Steps = append(resp.Steps, step)
	}
	return resp
}

// UpdateStepStatusRequest is the request body for changing a step's status.
// @Description Request body for updating a plan step status
type UpdateStepStatusRequest struct {
	StepIndex int    `json:"step_index"`
	Status    string `json:"status" validate:"required"`
}

// Validate checks the status value. The index upper bound depends on the
// plan and is enforced in the service.
func (r *UpdateStepStatusRequest) Validate() error {
	var errs domain.ValidationErrors
	if r.StepIndex < 0 {
		errs = append(errs, domain.NewOutOfRangeError("step_index", r.StepIndex, 0, 1<<31-1))
	}
	if !domain.StepStatus(r.Status).IsValid() {
		errs = append(errs, domain.NewInvalidFormatError("status", r.Status))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AskTutorRequest is the request body for asking the tutor about a step.
// @Description Request body for a tutor question on a plan step
type AskTutorRequest struct {
	StepIndex int    `json:"step_index"`
	Question  string `json:"question" validate:"required"`
}

// Validate checks the question fields.
func (r *AskTutorRequest) Validate() error {
	var errs domain.ValidationErrors
	if r.StepIndex < 0 {
		errs = append(errs, domain.NewOutOfRangeError("step_index", r.StepIndex, 0, 1<<31-1))
	}
	if strings.TrimSpace(r.Question) == "" {
		errs = append(errs, domain.NewMissingFieldError("question"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AskTutorResponse carries the tutor's reply and the thread now bound to
// the step.
type AskTutorResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
}
