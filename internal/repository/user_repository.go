package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nalar/internal/domain"
	"nalar/internal/repository/models"
	"nalar/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, subject, email, username, profile_image, onboarded, learning_goals, study_reason, learning_level, created_at, updated_at)
	          VALUES (:id, :subject, :email, :username, :profile_image, :onboarded, :learning_goals, :study_reason, :learning_level, :created_at, :updated_at)`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, userToModel(user)); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) GetUserBySubject(ctx context.Context, subject string) (*domain.User, error) {
	query := `SELECT * FROM users WHERE subject = :subject AND deleted_at IS NULL`
	return r.getUser(ctx, query, map[string]interface{}{"subject": subject}, "GetUserBySubject")
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT * FROM users WHERE id = :id AND deleted_at IS NULL`
	return r.getUser(ctx, query, map[string]interface{}{"id": userID}, "GetUserByID")
}

func (r *sqlxUserRepository) getUser(ctx context.Context, query string, args map[string]interface{}, op string) (*domain.User, error) {
	executor := GetExecutor(ctx, r.db)
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for %s: %w", op, err)
	}
	defer stmt.Close()

	var user models.User
	if err := stmt.GetContext(ctx, &user, args); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	return userToDomain(&user), nil
}

func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET
	            email = :email,
	            username = :username,
	            profile_image = :profile_image,
	            onboarded = :onboarded,
	            learning_goals = :learning_goals,
	            study_reason = :study_reason,
	            learning_level = :learning_level,
	            updated_at = :updated_at
	          WHERE id = :id AND deleted_at IS NULL`

	user.UpdatedAt = time.Now()

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, userToModel(user))
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for user update: %w", err)
	}
	if rows == 0 {
		return domain.NewUserNotFoundError(user.ID)
	}
	return nil
}

func userToModel(u *domain.User) *models.User {
	return &models.User{
		ID:            u.ID,
		Subject:       u.Subject,
		Email:         u.Email,
		Username:      util.StringToNullString(u.Username),
		ProfileImage:  util.StringToNullString(u.ProfileImage),
		Onboarded:     u.Onboarded,
		LearningGoals: models.StringSlice(u.LearningGoals),
		StudyReason:   util.StringToNullString(u.StudyReason),
		LearningLevel: util.StringToNullString(string(u.Level)),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		DeletedAt:     util.TimePtrToNullTime(u.DeletedAt),
	}
}

func userToDomain(m *models.User) *domain.User {
	user := &domain.User{
		ID:            m.ID,
		Subject:       m.Subject,
		Email:         m.Email,
		Username:      m.Username.String,
		ProfileImage:  m.ProfileImage.String,
		Onboarded:     m.Onboarded,
		LearningGoals: []string(m.LearningGoals),
		StudyReason:   m.StudyReason.String,
		Level:         domain.LearningLevel(m.LearningLevel.String),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		user.DeletedAt = &t
	}
	return user
}
