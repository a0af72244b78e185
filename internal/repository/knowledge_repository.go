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

// sqlxKnowledgeRepository implements domain.KnowledgeRepository using sqlx.
type sqlxKnowledgeRepository struct {
	db *sqlx.DB
}

// NewSQLXKnowledgeRepository creates a new instance of sqlxKnowledgeRepository.
func NewSQLXKnowledgeRepository(db *sqlx.DB) domain.KnowledgeRepository {
	return &sqlxKnowledgeRepository{db: db}
}

// GetNodeByTopic does an exact, case-sensitive topic match scoped to one user.
func (r *sqlxKnowledgeRepository) GetNodeByTopic(ctx context.Context, userID, topic string) (*domain.KnowledgeNode, error) {
	query := `SELECT * FROM knowledge_nodes WHERE user_id = :user_id AND topic = :topic`

	executor := GetExecutor(ctx, r.db)
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetNodeByTopic: %w", err)
	}
	defer stmt.Close()

	var node models.KnowledgeNode
	err = stmt.GetContext(ctx, &node, map[string]interface{}{
		"user_id": userID,
		"topic":   topic,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get knowledge node by topic: %w", err)
	}
	return nodeToDomain(&node), nil
}

func (r *sqlxKnowledgeRepository) CreateNode(ctx context.Context, node *domain.KnowledgeNode) error {
	query := `INSERT INTO knowledge_nodes (id, user_id, topic, description, understanding_level, last_updated, created_at)
	          VALUES (:id, :user_id, :topic, :description, :understanding_level, :last_updated, :created_at)`

	now := time.Now()
	node.LastUpdated = now
	node.CreatedAt = now

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, nodeToModel(node)); err != nil {
		// ORA-00001 on the (user_id, topic) unique constraint means a
		// concurrent upsert won the race; callers re-read and update instead.
		return fmt.Errorf("failed to create knowledge node: %w", err)
	}
	return nil
}

func (r *sqlxKnowledgeRepository) UpdateNode(ctx context.Context, node *domain.KnowledgeNode) error {
	query := `UPDATE knowledge_nodes SET description = :description, understanding_level = :understanding_level, last_updated = :last_updated WHERE id = :id`

	node.LastUpdated = time.Now()

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, nodeToModel(node))
	if err != nil {
		return fmt.Errorf("failed to update knowledge node %s: %w", node.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for node update: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("knowledge node %s not found", node.ID))
	}
	return nil
}

func (r *sqlxKnowledgeRepository) UpdateNodeUnderstanding(ctx context.Context, nodeID string, level int) error {
	query := `UPDATE knowledge_nodes SET understanding_level = :understanding_level, last_updated = :last_updated WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                  nodeID,
		"understanding_level": domain.ClampUnderstanding(level),
		"last_updated":        time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update understanding for node %s: %w", nodeID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for understanding update: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("knowledge node %s not found", nodeID))
	}
	return nil
}

// FindEdge matches the full (source, target, label) triple. Distinct labels
// between the same pair of nodes are distinct edges.
func (r *sqlxKnowledgeRepository) FindEdge(ctx context.Context, userID, sourceID, targetID, label string) (*domain.KnowledgeEdge, error) {
	query := `SELECT * FROM knowledge_edges
	          WHERE user_id = :user_id AND source_node_id = :source_node_id AND target_node_id = :target_node_id
	            AND ((:label IS NULL AND label IS NULL) OR label = :label)`

	executor := GetExecutor(ctx, r.db)
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for FindEdge: %w", err)
	}
	defer stmt.Close()

	var edge models.KnowledgeEdge
	err = stmt.GetContext(ctx, &edge, map[string]interface{}{
		"user_id":        userID,
		"source_node_id": sourceID,
		"target_node_id": targetID,
		"label":          util.StringToNullString(label),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find knowledge edge: %w", err)
	}
	return edgeToDomain(&edge), nil
}

func (r *sqlxKnowledgeRepository) CreateEdge(ctx context.Context, edge *domain.KnowledgeEdge) error {
	query := `INSERT INTO knowledge_edges (id, user_id, source_node_id, target_node_id, label, created_at)
	          VALUES (:id, :user_id, :source_node_id, :target_node_id, :label, :created_at)`

	edge.CreatedAt = time.Now()

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, edgeToModel(edge)); err != nil {
		return fmt.Errorf("failed to create knowledge edge: %w", err)
	}
	return nil
}

// GetGraph returns the user's full node and edge sets in two queries.
func (r *sqlxKnowledgeRepository) GetGraph(ctx context.Context, userID string) (*domain.Graph, error) {
	executor := GetExecutor(ctx, r.db)
	args := map[string]interface{}{"user_id": userID}

	nodeRows, err := executor.NamedQueryContext(ctx, `SELECT * FROM knowledge_nodes WHERE user_id = :user_id ORDER BY created_at ASC`, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge nodes: %w", err)
	}
	defer nodeRows.Close()

	graph := &domain.Graph{
		Nodes: []*domain.KnowledgeNode{},
		Edges: []*domain.KnowledgeEdge{},
	}
	for nodeRows.Next() {
		var m models.KnowledgeNode
		if err := nodeRows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge node row: %w", err)
		}
		graph.Nodes = append(graph.Nodes, nodeToDomain(&m))
	}
	if err := nodeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate knowledge node rows: %w", err)
	}

	edgeRows, err := executor.NamedQueryContext(ctx, `SELECT * FROM knowledge_edges WHERE user_id = :user_id ORDER BY created_at ASC`, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var m models.KnowledgeEdge
		if err := edgeRows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge edge row: %w", err)
		}
		graph.Edges = append(graph.Edges, edgeToDomain(&m))
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate knowledge edge rows: %w", err)
	}

	return graph, nil
}

func nodeToModel(n *domain.KnowledgeNode) *models.KnowledgeNode {
	return &models.KnowledgeNode{
		ID:                 n.ID,
		UserID:             n.UserID,
		Topic:              n.Topic,
		Description:        util.StringToNullString(n.Description),
		UnderstandingLevel: n.UnderstandingLevel,
		LastUpdated:        n.LastUpdated,
		CreatedAt:          n.CreatedAt,
	}
}

func nodeToDomain(m *models.KnowledgeNode) *domain.KnowledgeNode {
	return &domain.KnowledgeNode{
		ID:                 m.ID,
		UserID:             m.UserID,
		Topic:              m.Topic,
		Description:        m.Description.String,
		UnderstandingLevel: m.UnderstandingLevel,
		LastUpdated:        m.LastUpdated,
		CreatedAt:          m.CreatedAt,
	}
}

func edgeToModel(e *domain.KnowledgeEdge) *models.KnowledgeEdge {
	return &models.KnowledgeEdge{
		ID:           e.ID,
		UserID:       e.UserID,
		SourceNodeID: e.SourceNodeID,
		TargetNodeID: e.TargetNodeID,
		Label:        util.StringToNullString(e.Label),
		CreatedAt:    e.CreatedAt,
	}
}

func edgeToDomain(m *models.KnowledgeEdge) *domain.KnowledgeEdge {
	return &domain.KnowledgeEdge{
		ID:           m.ID,
		UserID:       m.UserID,
		SourceNodeID: m.SourceNodeID,
		TargetNodeID: m.TargetNodeID,
		Label:        m.Label.String,
		CreatedAt:    m.CreatedAt,
	}
}
