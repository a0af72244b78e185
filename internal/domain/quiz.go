package domain

import (
	"fmt"
	"time"
)

// Difficulty is the target difficulty of a quiz or question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether d is one of the three known levels.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuizStatus is the lifecycle state of a quiz.
type QuizStatus string

const (
	QuizStatusPending    QuizStatus = "pending"
	QuizStatusInProgress QuizStatus = "in_progress"
	QuizStatusCompleted  QuizStatus = "completed"
)

// QuestionType is the format of a generated question.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
)

func (t QuestionType) IsValid() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Quiz represents a generated quiz owned by a user and anchored to a chat thread.
// Score, CompletedAt and TimeSpentSeconds stay nil until the quiz reaches
// QuizStatusCompleted and never change afterwards.
type Quiz struct {
	ID               string
	UserID           string
	ThreadID         string
	Title            string
	Description      string
	Topic            string
	Difficulty       Difficulty
	Status           QuizStatus
	CompletedAt      *time.Time
	TimeSpentSeconds *int
	Score            *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewQuiz creates a pending quiz with no completion fields set.
func NewQuiz(id, userID, threadID, title, description, topic string, difficulty Difficulty) *Quiz {
	now := time.Now()
	return &Quiz{
		ID:          id,
		UserID:      userID,
		ThreadID:    threadID,
		Title:       title,
		Description: description,
		Topic:       topic,
		Difficulty:  difficulty,
		Status:      QuizStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CanStart reports whether the quiz may transition to in_progress.
// Restarting an already started quiz is a no-op rather than an error so
// the client can safely resume after a reload.
func (q *Quiz) CanStart() error {
	if q.Status == QuizStatusCompleted {
		return NewInvalidStateError(fmt.Sprintf("quiz %s is already completed", q.ID))
	}
	return nil
}

// IsCompleted reports whether the quiz reached its terminal state.
func (q *Quiz) IsCompleted() bool {
	return q.Status == QuizStatusCompleted
}

// QuizQuestion is immutable after creation. QuestionNumber is 1-based and
// unique within a quiz; storage does not guarantee ordering, so readers sort.
type QuizQuestion struct {
	ID                 string
	QuizID             string
	QuestionNumber     int
	Question           string
	Options            []string
	CorrectOptionIndex int
	Explanation        string
	Type               QuestionType
	Difficulty         Difficulty
	CreatedAt          time.Time
}

// Validate checks the structural constraints the generator must satisfy.
// The generation schema cannot express "correctOptionIndex is a valid index
// into options", so it is enforced here after parsing.
func (q *QuizQuestion) Validate() error {
	var errs ValidationErrors
	if q.QuestionNumber <= 0 {
		errs = append(errs, NewOutOfRangeError("questionNumber", q.QuestionNumber, 1, 1<<31-1))
	}
	if len(q.Question) < 10 {
		errs = append(errs, NewLengthError("question", len(q.Question), 10, 1<<31-1))
	}
	if len(q.Options) < 2 || len(q.Options) > 6 {
		errs = append(errs, NewOutOfRangeError("options", len(q.Options), 2, 6))
	}
	for i, opt := range q.Options {
		if opt == "" {
			errs = append(errs, NewMissingFieldError(fmt.Sprintf("options[%d]", i)))
		}
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		errs = append(errs, NewOutOfRangeError("correctOptionIndex", q.CorrectOptionIndex, 0, len(q.Options)-1))
	}
	if len(q.Explanation) < 10 {
		errs = append(errs, NewLengthError("explanation", len(q.Explanation), 10, 1<<31-1))
	}
	if !q.Type.IsValid() {
		errs = append(errs, NewInvalidFormatError("type", string(q.Type)))
	}
	if !q.Difficulty.IsValid() {
		errs = append(errs, NewInvalidFormatError("difficulty", string(q.Difficulty)))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// QuizResponse records one user's answer to one question. At most one row
// exists per (user, quiz, question); a resubmission replaces the previous
// answer rather than appending.
type QuizResponse struct {
	ID                  string
	UserID              string
	QuizID              string
	QuestionID          string
	SelectedOptionIndex int
	IsCorrect           bool
	TimeSpentSeconds    int
	SubmittedAt         time.Time
}

// QuizResult is the outcome returned by completing a quiz.
type QuizResult struct {
	Score          int
	TotalTimeSpent int
	TotalQuestions int
	CorrectAnswers int
}
