package dto

import (
	"fmt"
	"time"

	"nalar/internal/domain"
)

// UserProfileResponse defines the structure for a user's profile information.
type UserProfileResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username,omitempty"`
	ProfileImage  string    `json:"profile_image,omitempty"`
	Onboarded     bool      `json:"onboarded"`
	LearningGoals []string  `json:"learning_goals,omitempty"`
	StudyReason   string    `json:"study_reason,omitempty"`
	Level         string    `json:"level,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUserProfileResponse maps a domain user to its API representation.
func NewUserProfileResponse(u *domain.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		ProfileImage:  u.ProfileImage,
		Onboarded:     u.Onboarded,
		LearningGoals: u.LearningGoals,
		StudyReason:   u.StudyReason,
		Level:         string(u.Level),
		CreatedAt:     u.CreatedAt,
	}
}

// OnboardingRequest captures the one-time onboarding form.
// @Description Request body for completing onboarding
type OnboardingRequest struct {
	Username      string   `json:"username"`
	LearningGoals []string `json:"learning_goals" validate:"required"`
	StudyReason   string   `json:"study_reason"`
	Level         string   `json:"level" validate:"required"`
}

// Validate checks the onboarding form constraints.
func (r *OnboardingRequest) Validate() error {
	var errs domain.ValidationErrors
	if len(r.LearningGoals) == 0 {
		errs = append(errs, domain.NewMissingFieldError("learning_goals"))
	}
	for i, goal := range r.LearningGoals {
		if goal == "" {
			errs = append(errs, domain.NewMissingFieldError(fmt.Sprintf("learning_goals[%d]", i)))
		}
	}
	if !domain.LearningLevel(r.Level).IsValid() {
		errs = append(errs, domain.NewInvalidFormatError("level", r.Level))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
