package dto

import (
	"strings"
	"time"

	"nalar/internal/domain"
)

const (
	titleMinLen       = 5
	titleMaxLen       = 100
	descriptionMaxLen = 500
	topicMinLen       = 3
)

// CreateQuizRequest is the request body for requesting quiz generation.
// @Description Request body for creating a quiz
type CreateQuizRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Topic       string `json:"topic" validate:"required"`
	Difficulty  string `json:"difficulty" validate:"required"`
	ThreadID    string `json:"thread_id,omitempty"`
}

// Validate checks field-level constraints before any work is queued.
func (r *CreateQuizRequest) Validate() error {
	var errs domain.ValidationErrors
	title := strings.TrimSpace(r.Title)
	if title == "" {
		errs = append(errs, domain.NewMissingFieldError("title"))
	} else if len(title) < titleMinLen || len(title) > titleMaxLen {
		errs = append(errs, domain.NewLengthError("title", len(title), titleMinLen, titleMaxLen))
	}
	if len(r.Description) > descriptionMaxLen {
		errs = append(errs, domain.NewLengthError("description", len(r.Description), 0, descriptionMaxLen))
	}
	topic := strings.TrimSpace(r.Topic)
	if topic == "" {
		errs = append(errs, domain.NewMissingFieldError("topic"))
	} else if len(topic) < topicMinLen {
		errs = append(errs, domain.NewLengthError("topic", len(topic), topicMinLen, 1<<31-1))
	}
	if !domain.Difficulty(r.Difficulty).IsValid() {
		errs = append(errs, domain.NewInvalidFormatError("difficulty", r.Difficulty))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Topic            string     `json:"topic"`
	Difficulty       string     `json:"difficulty"`
	Status           string     `json:"status"`
	Score            *int       `json:"score,omitempty"`
	TimeSpentSeconds *int       `json:"time_spent_seconds,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewQuizSummary maps a domain quiz to its list representation.
func NewQuizSummary(q *domain.Quiz) *QuizSummary {
	return &QuizSummary{
		ID:               q.ID,
		Title:            q.Title,
		Topic:            q.Topic,
		Difficulty:       string(q.Difficulty),
		Status:           string(q.Status),
		Score:            q.Score,
		TimeSpentSeconds: q.TimeSpentSeconds,
		CompletedAt:      q.CompletedAt,
		CreatedAt:        q.CreatedAt,
	}
}

// QuestionView is a question as shown while taking a quiz. The correct
// option and the explanation are withheld until the answer is submitted.
type QuestionView struct {
	ID             string   `json:"id"`
	QuestionNumber int      `json:"question_number"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Type           string   `json:"type"`
	Difficulty     string   `json:"difficulty"`
}

// NewQuestionView maps a domain question to its take-view representation.
func NewQuestionView(q *domain.QuizQuestion) *QuestionView {
	return &QuestionView{
		ID:             q.ID,
		QuestionNumber: q.QuestionNumber,
		Question:       q.Question,
		Options:        q.Options,
		Type:           string(q.Type),
		Difficulty:     string(q.Difficulty),
	}
}

// QuizDetailResponse is a quiz with its questions in take-view form.
type QuizDetailResponse struct {
	Quiz      *QuizSummary    `json:"quiz"`
	Questions []*QuestionView `json:"questions"`
}

// SubmitAnswerRequest is the request body for answering one question.
// @Description Request body for submitting an answer
type SubmitAnswerRequest struct {
	QuestionID          string `json:"question_id" validate:"required"`
	SelectedOptionIndex int    `json:"selected_option_index"`
	TimeSpentSeconds    int    `json:"time_spent_seconds"`
}

// Validate checks the submission fields that do not need the question row.
// The option index upper bound depends on the question and is enforced in
// the service.
func (r *SubmitAnswerRequest) Validate() error {
	var errs domain.ValidationErrors
	if r.QuestionID == "" {
		errs = append(errs, domain.NewMissingFieldError("question_id"))
	}
	if r.SelectedOptionIndex < 0 {
		errs = append(errs, domain.NewOutOfRangeError("selected_option_index", r.SelectedOptionIndex, 0, 1<<31-1))
	}
	if r.TimeSpentSeconds < 0 {
		errs = append(errs, domain.NewOutOfRangeError("time_spent_seconds", r.TimeSpentSeconds, 0, 1<<31-1))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SubmitAnswerResponse is the immediate feedback for one answer.
type SubmitAnswerResponse struct {
	ResponseID  string `json:"response_id"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// QuestionResult pairs a question with the user's answer for the results view.
// Response fields are nil when the question was never answered.
type QuestionResult struct {
	ID                  string   `json:"id"`
	QuestionNumber      int      `json:"question_number"`
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	CorrectOptionIndex  int      `json:"correct_option_index"`
	Explanation         string   `json:"explanation"`
	SelectedOptionIndex *int     `json:"selected_option_index,omitempty"`
	IsCorrect           *bool    `json:"is_correct,omitempty"`
	TimeSpentSeconds    *int     `json:"time_spent_seconds,omitempty"`
}

// QuizResultResponse is the full results view of a completed quiz.
type QuizResultResponse struct {
	QuizID         string            `json:"quiz_id"`
	Title          string            `json:"title"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"total_questions"`
	CorrectAnswers int               `json:"correct_answers"`
	TotalTimeSpent int               `json:"total_time_spent"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	Questions      []*QuestionResult `json:"questions"`
}

// CompleteQuizResponse is the scoring outcome of completing a quiz.
type CompleteQuizResponse struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"total_questions"`
	CorrectAnswers int `json:"correct_answers"`
	TotalTimeSpent int `json:"total_time_spent"`
}
