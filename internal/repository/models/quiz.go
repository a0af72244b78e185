package models

import (
	"database/sql"
	"time"
)

// Quiz row in the QUIZZES table.
type Quiz struct {
	ID               string         `db:"ID"` // ULID
	UserID           string         `db:"USER_ID"`
	ThreadID         sql.NullString `db:"THREAD_ID"`
	Title            string         `db:"TITLE"`
	Description      sql.NullString `db:"DESCRIPTION"`
	Topic            string         `db:"TOPIC"`
	Difficulty       string         `db:"DIFFICULTY"`
	Status           string         `db:"STATUS"`
	Score            sql.NullInt64  `db:"SCORE"`
	TimeSpentSeconds sql.NullInt64  `db:"TIME_SPENT_SECONDS"`
	CompletedAt      sql.NullTime   `db:"COMPLETED_AT"`
	CreatedAt        time.Time      `db:"CREATED_AT"`
	UpdatedAt        time.Time      `db:"UPDATED_AT"`
}

// QuizQuestion row in the QUIZ_QUESTIONS table. Options are stored as a
// JSON array in a CLOB column.
type QuizQuestion struct {
	ID                 string      `db:"ID"` // ULID
	QuizID             string      `db:"QUIZ_ID"`
	QuestionNumber     int         `db:"QUESTION_NUMBER"`
	Question           string      `db:"QUESTION"`
	Options            StringSlice `db:"OPTIONS"`
	CorrectOptionIndex int         `db:"CORRECT_OPTION_INDEX"`
	Explanation        string      `db:"EXPLANATION"`
	QuestionType       string      `db:"QUESTION_TYPE"`
	Difficulty         string      `db:"DIFFICULTY"`
	CreatedAt          time.Time   `db:"CREATED_AT"`
}

// QuizResponse row in the QUIZ_RESPONSES table. At most one row exists
// per (USER_ID, QUIZ_ID, QUESTION_ID).
type QuizResponse struct {
	ID                  string    `db:"ID"` // ULID
	UserID              string    `db:"USER_ID"`
	QuizID              string    `db:"QUIZ_ID"`
	QuestionID          string    `db:"QUESTION_ID"`
	SelectedOptionIndex int       `db:"SELECTED_OPTION_INDEX"`
	IsCorrect           bool      `db:"IS_CORRECT"`
	TimeSpentSeconds    int       `db:"TIME_SPENT_SECONDS"`
	SubmittedAt         time.Time `db:"SUBMITTED_AT"`
}
