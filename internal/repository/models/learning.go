package models

import (
	"database/sql"
	"time"
)

// LearningPlan row in the LEARNING_PLANS table. Steps live in a single
// JSON CLOB and are rewritten wholesale on every update. DESCRIPTION is
// nullable since Oracle stores empty strings as NULL.
type LearningPlan struct {
	ID          string         `db:"ID"` // ULID
	UserID      string         `db:"USER_ID"`
	Title       string         `db:"TITLE"`
	Description sql.NullString `db:"DESCRIPTION"`
	Steps       PlanStepSlice  `db:"STEPS"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
}
