package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nalar/internal/domain"
	"nalar/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxChatRepository implements domain.ChatRepository using sqlx.
type sqlxChatRepository struct {
	db *sqlx.DB
}

// NewSQLXChatRepository creates a new instance of sqlxChatRepository.
func NewSQLXChatRepository(db *sqlx.DB) domain.ChatRepository {
	return &sqlxChatRepository{db: db}
}

func (r *sqlxChatRepository) CreateThread(ctx context.Context, thread *domain.ChatThread) error {
	query := `INSERT INTO chat_threads (id, user_id, title, is_archived, created_at, updated_at)
	          VALUES (:id, :user_id, :title, :is_archived, :created_at, :updated_at)`

	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, threadToModel(thread)); err != nil {
		return fmt.Errorf("failed to create chat thread: %w", err)
	}
	return nil
}

func (r *sqlxChatRepository) GetThreadByID(ctx context.Context, threadID string) (*domain.ChatThread, error) {
	query := `SELECT * FROM chat_threads WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetThreadByID: %w", err)
	}
	defer stmt.Close()

	var thread models.ChatThread
	if err := stmt.GetContext(ctx, &thread, map[string]interface{}{"id": threadID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat thread by id: %w", err)
	}
	return threadToDomain(&thread), nil
}

func (r *sqlxChatRepository) GetThreadsByUser(ctx context.Context, userID string) ([]*domain.ChatThread, error) {
	query := `SELECT * FROM chat_threads WHERE user_id = :user_id ORDER BY updated_at DESC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.NamedQueryContext(ctx, query, map[string]interface{}{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query chat threads: %w", err)
	}
	defer rows.Close()

	var threads []*domain.ChatThread
	for rows.Next() {
		var m models.ChatThread
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan chat thread row: %w", err)
		}
		threads = append(threads, threadToDomain(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat thread rows: %w", err)
	}
	return threads, nil
}

// TouchThread bumps updated_at so the thread list sorts by recent activity.
func (r *sqlxChatRepository) TouchThread(ctx context.Context, threadID string) error {
	query := `UPDATE chat_threads SET updated_at = :updated_at WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         threadID,
		"updated_at": time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to touch chat thread %s: %w", threadID, err)
	}
	return nil
}

func (r *sqlxChatRepository) AppendMessage(ctx context.Context, message *domain.ChatMessage) error {
	query := `INSERT INTO chat_messages (id, thread_id, role, content, created_at)
	          VALUES (:id, :thread_id, :role, :content, :created_at)`

	message.CreatedAt = time.Now()

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, messageToModel(message)); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

func (r *sqlxChatRepository) GetMessagesByThread(ctx context.Context, threadID string) ([]*domain.ChatMessage, error) {
	query := `SELECT * FROM chat_messages WHERE thread_id = :thread_id ORDER BY created_at ASC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.NamedQueryContext(ctx, query, map[string]interface{}{"thread_id": threadID})
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		messages = append(messages, messageToDomain(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat message rows: %w", err)
	}
	return messages, nil
}

func threadToModel(t *domain.ChatThread) *models.ChatThread {
	return &models.ChatThread{
		ID:         t.ID,
		UserID:     t.UserID,
		Title:      t.Title,
		IsArchived: t.IsArchived,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func threadToDomain(m *models.ChatThread) *domain.ChatThread {
	return &domain.ChatThread{
		ID:         m.ID,
		UserID:     m.UserID,
		Title:      m.Title,
		IsArchived: m.IsArchived,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func messageToModel(m *domain.ChatMessage) *models.ChatMessage {
	return &models.ChatMessage{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func messageToDomain(m *models.ChatMessage) *domain.ChatMessage {
	return &domain.ChatMessage{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
