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

// sqlxLearningPlanRepository implements domain.LearningPlanRepository using sqlx.
type sqlxLearningPlanRepository struct {
	db *sqlx.DB
}

// NewSQLXLearningPlanRepository creates a new instance of sqlxLearningPlanRepository.
func NewSQLXLearningPlanRepository(db *sqlx.DB) domain.LearningPlanRepository {
	return &sqlxLearningPlanRepository{db: db}
}

func (r *sqlxLearningPlanRepository) CreatePlan(ctx context.Context, plan *domain.LearningPlan) error {
	query := `INSERT INTO learning_plans (id, user_id, title, description, steps, created_at, updated_at)
	          VALUES (:id, :user_id, :title, :description, :steps, :created_at, :updated_at)`

	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, planToModel(plan)); err != nil {
		return fmt.Errorf("failed to create learning plan: %w", err)
	}
	return nil
}

func (r *sqlxLearningPlanRepository) GetPlanByID(ctx context.Context, planID string) (*domain.LearningPlan, error) {
	query := `SELECT * FROM learning_plans WHERE id = :id`
	return r.getPlan(ctx, query, map[string]interface{}{"id": planID}, "GetPlanByID")
}

// GetLatestPlanByUser returns the most recently created plan. Generating a
// new plan supersedes older ones without deleting them.
func (r *sqlxLearningPlanRepository) GetLatestPlanByUser(ctx context.Context, userID string) (*domain.LearningPlan, error) {
	query := `SELECT * FROM learning_plans WHERE user_id = :user_id ORDER BY created_at DESC FETCH FIRST 1 ROWS ONLY`
	return r.getPlan(ctx, query, map[string]interface{}{"user_id": userID}, "GetLatestPlanByUser")
}

func (r *sqlxLearningPlanRepository) getPlan(ctx context.Context, query string, args map[string]interface{}, op string) (*domain.LearningPlan, error) {
	executor := GetExecutor(ctx, r.db)
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for %s: %w", op, err)
	}
	defer stmt.Close()

	var plan models.LearningPlan
	if err := stmt.GetContext(ctx, &plan, args); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	return planToDomain(&plan), nil
}

// UpdatePlanSteps rewrites the full steps array. Steps are small and always
// read and written as a unit, so partial JSON patching buys nothing.
func (r *sqlxLearningPlanRepository) UpdatePlanSteps(ctx context.Context, planID string, steps []domain.LearningPlanStep) error {
	query := `UPDATE learning_plans SET steps = :steps, updated_at = :updated_at WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         planID,
		"steps":      stepsToModel(steps),
		"updated_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update steps for plan %s: %w", planID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for plan steps update: %w", err)
	}
	if rows == 0 {
		return domain.NewPlanNotFoundError(planID)
	}
	return nil
}

func stepsToModel(steps []domain.LearningPlanStep) models.PlanStepSlice {
	out := make(models.PlanStepSlice, 0, len(steps))
	for _, s := range steps {
		ms := models.PlanStep{
			Title:       s.Title,
			Description: s.Description,
			Status:      string(s.Status),
			ThreadID:    s.ThreadID,
		}
		for _, res := range s.Resources {
			ms.Resources = append(ms.Resources, models.PlanStepResource{
				Title: res.Title,
				URL:   res.URL,
				Type:  res.Type,
			})
		}
		out = append(out, ms)
	}
	return out
}

func stepsToDomain(steps models.PlanStepSlice) []domain.LearningPlanStep {
	out := make([]domain.LearningPlanStep, 0, len(steps))
	for _, s := range steps {
		ds := domain.LearningPlanStep{
			Title:       s.Title,
			Description: s.Description,
			Status:      domain.StepStatus(s.Status),
			ThreadID:    s.ThreadID,
		}
		for _, res := range s.Resources {
			ds.Resources = append(ds.Resources, domain.StepResource{
				Title: res.Title,
				URL:   res.URL,
				Type:  res.Type,
			})
		}
		out = append(out, ds)
	}
	return out
}

func planToModel(p *domain.LearningPlan) *models.LearningPlan {
	return &models.LearningPlan{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: util.StringToNullString(p.Description),
		Steps:       stepsToModel(p.Steps),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func planToDomain(m *models.LearningPlan) *domain.LearningPlan {
	return &domain.LearningPlan{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description.String,
		Steps:       stepsToDomain(m.Steps),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
