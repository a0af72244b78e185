package domain

import "time"

// LearningLevel is the user's self-declared expertise level, collected during
// onboarding and fed into plan generation prompts.
type LearningLevel string

const (
	LevelBeginner     LearningLevel = "beginner"
	LevelIntermediate LearningLevel = "intermediate"
	LevelAdvanced     LearningLevel = "advanced"
)

// IsValid reports whether the level is one of the known values.
func (l LearningLevel) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// User represents a domain user object. Subject is the external identity
// provider's stable subject string; every owned entity references the
// internal ID.
type User struct {
	ID            string
	Subject       string
	Email         string
	Username      string
	ProfileImage  string
	Onboarded     bool
	LearningGoals []string
	StudyReason   string
	Level         LearningLevel
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// NewUser creates a new User instance
func NewUser(id, subject, email string) *User {
	now := time.Now()
	return &User{
		ID:        id,
		Subject:   subject,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.Subject == "" {
		errs = append(errs, NewMissingFieldError("subject"))
	}
	if u.Email == "" {
		errs = append(errs, NewMissingFieldError("email"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Owns reports whether the user owns the entity with the given owner id.
func (u *User) Owns(ownerID string) bool {
	return u.ID == ownerID
}

// ChatThread groups a sequence of user and assistant turns. A thread may own
// zero or one generated quiz.
type ChatThread struct {
	ID         string
	UserID     string
	Title      string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChatMessage is one persisted turn of a thread.
type ChatMessage struct {
	ID        string
	ThreadID  string
	Role      string
	Content   string
	CreatedAt time.Time
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleTool      = "tool"
)
