package domain

import "time"

// StepStatus is the progress state of one learning plan step. Transitions are
// intentionally permissive: the UI may move a step to any of the three states.
type StepStatus string

const (
	StepStatusNotStarted StepStatus = "not-started"
	StepStatusInProgress StepStatus = "in-progress"
	StepStatusCompleted  StepStatus = "completed"
)

func (s StepStatus) IsValid() bool {
	switch s {
	case StepStatusNotStarted, StepStatusInProgress, StepStatusCompleted:
		return true
	}
	return false
}

// StepResource is an optional external resource attached to a plan step.
type StepResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// LearningPlanStep is one ordered step of a plan. ThreadID is set lazily the
// first time the user asks the tutor about the step.
type LearningPlanStep struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      StepStatus     `json:"status"`
	Resources   []StepResource `json:"resources,omitempty"`
	ThreadID    string         `json:"threadId,omitempty"`
}

// LearningPlan is a generated, ordered study plan owned by a user.
type LearningPlan struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Steps       []LearningPlanStep
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewLearningPlan creates a plan with all steps reset to not-started.
func NewLearningPlan(id, userID, title, description string, steps []LearningPlanStep) *LearningPlan {
	now := time.Now()
	for i := range steps {
		if !steps[i].Status.IsValid() {
			steps[i].Status = StepStatusNotStarted
		}
	}
	return &LearningPlan{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
		Steps:       steps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
