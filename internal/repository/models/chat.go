package models

import "time"

// ChatThread row in the CHAT_THREADS table.
type ChatThread struct {
	ID         string    `db:"ID"` // ULID
	UserID     string    `db:"USER_ID"`
	Title      string    `db:"TITLE"`
	IsArchived bool      `db:"IS_ARCHIVED"`
	CreatedAt  time.Time `db:"CREATED_AT"`
	UpdatedAt  time.Time `db:"UPDATED_AT"`
}

// ChatMessage row in the CHAT_MESSAGES table.
type ChatMessage struct {
	ID        string    `db:"ID"` // ULID
	ThreadID  string    `db:"THREAD_ID"`
	Role      string    `db:"ROLE"`
	Content   string    `db:"CONTENT"`
	CreatedAt time.Time `db:"CREATED_AT"`
}
