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

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	query := `INSERT INTO quizzes (id, user_id, thread_id, title, description, topic, difficulty, status, score, time_spent_seconds, completed_at, created_at, updated_at)
	          VALUES (:id, :user_id, :thread_id, :title, :description, :topic, :difficulty, :status, :score, :time_spent_seconds, :completed_at, :created_at, :updated_at)`

	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, quizToModel(quiz)); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	query := `SELECT * FROM quizzes WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetQuizByID: %w", err)
	}
	defer stmt.Close()

	var quiz models.Quiz
	if err := stmt.GetContext(ctx, &quiz, map[string]interface{}{"id": quizID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}
	return quizToDomain(&quiz), nil
}

func (r *sqlxQuizRepository) UpdateQuizStatus(ctx context.Context, quizID string, status domain.QuizStatus) error {
	query := `UPDATE quizzes SET status = :status, updated_at = :updated_at WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         quizID,
		"status":     string(status),
		"updated_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update quiz status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for quiz status update: %w", err)
	}
	if rows == 0 {
		return domain.NewQuizNotFoundError(quizID)
	}
	return nil
}

// CompleteQuiz writes the terminal state in one statement. The status guard
// in the WHERE clause keeps a concurrent second completion from overwriting
// the first one's score.
func (r *sqlxQuizRepository) CompleteQuiz(ctx context.Context, quiz *domain.Quiz) error {
	query := `UPDATE quizzes SET
	            status = :status,
	            score = :score,
	            time_spent_seconds = :time_spent_seconds,
	            completed_at = :completed_at,
	            updated_at = :updated_at
	          WHERE id = :id AND status <> :status`

	quiz.UpdatedAt = time.Now()

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, quizToModel(quiz)); err != nil {
		return fmt.Errorf("failed to complete quiz %s: %w", quiz.ID, err)
	}
	return nil
}

func (r *sqlxQuizRepository) GetCompletedQuizzesByUser(ctx context.Context, userID string) ([]*domain.Quiz, error) {
	query := `SELECT * FROM quizzes WHERE user_id = :user_id AND status = :status ORDER BY completed_at DESC`
	return r.selectQuizzes(ctx, query, map[string]interface{}{
		"user_id": userID,
		"status":  string(domain.QuizStatusCompleted),
	})
}

func (r *sqlxQuizRepository) selectQuizzes(ctx context.Context, query string, args map[string]interface{}) ([]*domain.Quiz, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []*domain.Quiz
	for rows.Next() {
		var m models.Quiz
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan quiz row: %w", err)
		}
		quizzes = append(quizzes, quizToDomain(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz rows: %w", err)
	}
	return quizzes, nil
}

func (r *sqlxQuizRepository) CreateQuestion(ctx context.Context, question *domain.QuizQuestion) error {
	query := `INSERT INTO quiz_questions (id, quiz_id, question_number, question, options, correct_option_index, explanation, question_type, difficulty, created_at)
	          VALUES (:id, :quiz_id, :question_number, :question, :options, :correct_option_index, :explanation, :question_type, :difficulty, :created_at)`

	question.CreatedAt = time.Now()

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, questionToModel(question)); err != nil {
		return fmt.Errorf("failed to create quiz question: %w", err)
	}
	return nil
}

func (r *sqlxQuizRepository) GetQuestionByID(ctx context.Context, questionID string) (*domain.QuizQuestion, error) {
	query := `SELECT * FROM quiz_questions WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetQuestionByID: %w", err)
	}
	defer stmt.Close()

	var question models.QuizQuestion
	if err := stmt.GetContext(ctx, &question, map[string]interface{}{"id": questionID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question by id: %w", err)
	}
	return questionToDomain(&question), nil
}

func (r *sqlxQuizRepository) GetQuestionsByQuiz(ctx context.Context, quizID string) ([]*domain.QuizQuestion, error) {
	query := `SELECT * FROM quiz_questions WHERE quiz_id = :quiz_id ORDER BY question_number ASC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.NamedQueryContext(ctx, query, map[string]interface{}{"quiz_id": quizID})
	if err != nil {
		return nil, fmt.Errorf("failed to query questions for quiz %s: %w", quizID, err)
	}
	defer rows.Close()

	var questions []*domain.QuizQuestion
	for rows.Next() {
		var m models.QuizQuestion
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, questionToDomain(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question rows: %w", err)
	}
	return questions, nil
}

// UpsertResponse replaces any previous answer for the same (user, quiz,
// question) triple in place, keeping the original row ID so clients holding
// a responseId keep a valid reference.
func (r *sqlxQuizRepository) UpsertResponse(ctx context.Context, response *domain.QuizResponse) (*domain.QuizResponse, error) {
	executor := GetExecutor(ctx, r.db)

	findQuery := `SELECT * FROM quiz_responses WHERE user_id = :user_id AND quiz_id = :quiz_id AND question_id = :question_id`
	stmt, err := executor.PrepareNamedContext(ctx, findQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for UpsertResponse lookup: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"user_id":     response.UserID,
		"quiz_id":     response.QuizID,
		"question_id": response.QuestionID,
	}

	var existing models.QuizResponse
	err = stmt.GetContext(ctx, &existing, args)
	switch {
	case err == nil:
		response.ID = existing.ID
		response.SubmittedAt = time.Now()
		updateQuery := `UPDATE quiz_responses SET
		                  selected_option_index = :selected_option_index,
		                  is_correct = :is_correct,
		                  time_spent_seconds = :time_spent_seconds,
		                  submitted_at = :submitted_at
		                WHERE id = :id`
		if _, err := executor.NamedExecContext(ctx, updateQuery, responseToModel(response)); err != nil {
			return nil, fmt.Errorf("failed to update quiz response: %w", err)
		}
		return response, nil
	case errors.Is(err, sql.ErrNoRows):
		response.SubmittedAt = time.Now()
		insertQuery := `INSERT INTO quiz_responses (id, user_id, quiz_id, question_id, selected_option_index, is_correct, time_spent_seconds, submitted_at)
		                VALUES (:id, :user_id, :quiz_id, :question_id, :selected_option_index, :is_correct, :time_spent_seconds, :submitted_at)`
		if _, err := executor.NamedExecContext(ctx, insertQuery, responseToModel(response)); err != nil {
			return nil, fmt.Errorf("failed to insert quiz response: %w", err)
		}
		return response, nil
	default:
		return nil, fmt.Errorf("failed to look up existing quiz response: %w", err)
	}
}

func (r *sqlxQuizRepository) GetResponses(ctx context.Context, userID, quizID string) ([]*domain.QuizResponse, error) {
	query := `SELECT * FROM quiz_responses WHERE user_id = :user_id AND quiz_id = :quiz_id`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.NamedQueryContext(ctx, query, map[string]interface{}{
		"user_id": userID,
		"quiz_id": quizID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query responses for quiz %s: %w", quizID, err)
	}
	defer rows.Close()

	var responses []*domain.QuizResponse
	for rows.Next() {
		var m models.QuizResponse
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan response row: %w", err)
		}
		responses = append(responses, responseToDomain(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate response rows: %w", err)
	}
	return responses, nil
}

func quizToModel(q *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:               q.ID,
		UserID:           q.UserID,
		ThreadID:         util.StringToNullString(q.ThreadID),
		Title:            q.Title,
		Description:      util.StringToNullString(q.Description),
		Topic:            q.Topic,
		Difficulty:       string(q.Difficulty),
		Status:           string(q.Status),
		Score:            util.IntPtrToNullInt64(q.Score),
		TimeSpentSeconds: util.IntPtrToNullInt64(q.TimeSpentSeconds),
		CompletedAt:      util.TimePtrToNullTime(q.CompletedAt),
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}

func quizToDomain(m *models.Quiz) *domain.Quiz {
	quiz := &domain.Quiz{
		ID:          m.ID,
		UserID:      m.UserID,
		ThreadID:    m.ThreadID.String,
		Title:       m.Title,
		Description: m.Description.String,
		Topic:       m.Topic,
		Difficulty:  domain.Difficulty(m.Difficulty),
		Status:      domain.QuizStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Score.Valid {
		score := int(m.Score.Int64)
		quiz.Score = &score
	}
	if m.TimeSpentSeconds.Valid {
		spent := int(m.TimeSpentSeconds.Int64)
		quiz.TimeSpentSeconds = &spent
	}
	if m.CompletedAt.Valid {
		t := m.CompletedAt.Time
		quiz.CompletedAt = &t
	}
	return quiz
}

func questionToModel(q *domain.QuizQuestion) *models.QuizQuestion {
	return &models.QuizQuestion{
		ID:                 q.ID,
		QuizID:             q.QuizID,
		QuestionNumber:     q.QuestionNumber,
		Question:           q.Question,
		Options:            models.StringSlice(q.Options),
		CorrectOptionIndex: q.CorrectOptionIndex,
		Explanation:        q.Explanation,
		QuestionType:       string(q.Type),
		Difficulty:         string(q.Difficulty),
		CreatedAt:          q.CreatedAt,
	}
}

func questionToDomain(m *models.QuizQuestion) *domain.QuizQuestion {
	return &domain.QuizQuestion{
		ID:                 m.ID,
		QuizID:             m.QuizID,
		QuestionNumber:     m.QuestionNumber,
		Question:           m.Question,
		Options:            []string(m.Options),
		CorrectOptionIndex: m.CorrectOptionIndex,
		Explanation:        m.Explanation,
		Type:               domain.QuestionType(m.QuestionType),
		Difficulty:         domain.Difficulty(m.Difficulty),
		CreatedAt:          m.CreatedAt,
	}
}

func responseToModel(r *domain.QuizResponse) *models.QuizResponse {
	return &models.QuizResponse{
		ID:                  r.ID,
		UserID:              r.UserID,
		QuizID:              r.QuizID,
		QuestionID:          r.QuestionID,
		SelectedOptionIndex: r.SelectedOptionIndex,
		IsCorrect:           r.IsCorrect,
		TimeSpentSeconds:    r.TimeSpentSeconds,
		SubmittedAt:         r.SubmittedAt,
	}
}

func responseToDomain(m *models.QuizResponse) *domain.QuizResponse {
	return &domain.QuizResponse{
		ID:                  m.ID,
		UserID:              m.UserID,
		QuizID:              m.QuizID,
		QuestionID:          m.QuestionID,
		SelectedOptionIndex: m.SelectedOptionIndex,
		IsCorrect:           m.IsCorrect,
		TimeSpentSeconds:    m.TimeSpentSeconds,
		SubmittedAt:         m.SubmittedAt,
	}
}
