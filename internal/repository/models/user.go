package models

import (
	"database/sql"
	"time"
)

// User row in the USERS table.
type User struct {
	ID            string         `db:"ID"` // ULID
	Subject       string         `db:"SUBJECT"`
	Email         string         `db:"EMAIL"`
	Username      sql.NullString `db:"USERNAME"`
	ProfileImage  sql.NullString `db:"PROFILE_IMAGE"`
	Onboarded     bool           `db:"ONBOARDED"`
	LearningGoals StringSlice    `db:"LEARNING_GOALS"`
	StudyReason   sql.NullString `db:"STUDY_REASON"`
	LearningLevel sql.NullString `db:"LEARNING_LEVEL"`
	CreatedAt     time.Time      `db:"CREATED_AT"`
	UpdatedAt     time.Time      `db:"UPDATED_AT"`
	DeletedAt     sql.NullTime   `db:"DELETED_AT"`
}
