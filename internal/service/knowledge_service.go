package service

import (
	"context"
	"fmt"

	"nalar/internal/domain"
	"nalar/internal/dto"
	"nalar/internal/logger"
	"nalar/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// KnowledgeService maintains the per-user knowledge graph. Topic identity is
// exact string match; an upsert for an existing topic updates it in place,
// and each named connection lazily creates its target node.
type KnowledgeService interface {
	// UpdateGraph upserts one topic with its connections and returns the
	// confirmation line the chat tool echoes back to the model.
	UpdateGraph(ctx context.Context, caller *domain.User, req *dto.UpdateKnowledgeGraphRequest) (string, error)

	GetGraph(ctx context.Context, caller *domain.User) (*dto.GraphResponse, error)
	SetUnderstanding(ctx context.Context, caller *domain.User, topic string, level int) error
}

type knowledgeServiceImpl struct {
	knowledgeRepo domain.KnowledgeRepository
	txManager     domain.TransactionManager
	upserts       singleflight.Group
}

// NewKnowledgeService creates a new instance of KnowledgeService.
func NewKnowledgeService(knowledgeRepo domain.KnowledgeRepository, txManager domain.TransactionManager) KnowledgeService {
	return &knowledgeServiceImpl{
		knowledgeRepo: knowledgeRepo,
		txManager:     txManager,
	}
}

func (s *knowledgeServiceImpl) UpdateGraph(ctx context.Context, caller *domain.User, req *dto.UpdateKnowledgeGraphRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	// Concurrent tool calls for the same (user, topic) collapse into one
	// upsert; the unique constraint on (user_id, topic) backs this up at the
	// storage level.
	flightKey := caller.ID + "\x00" + req.Topic
	_, err, _ := s.upserts.Do(flightKey, func() (interface{}, error) {
		return nil, s.upsertTopic(ctx, caller.ID, req)
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Successfully updated knowledge graph for: %s", req.Topic), nil
}

func (s *knowledgeServiceImpl) upsertTopic(ctx context.Context, userID string, req *dto.UpdateKnowledgeGraphRequest) error {
	var level *int
	if req.UnderstandingLevel != nil {
		clamped := domain.ClampUnderstanding(*req.UnderstandingLevel)
		level = &clamped
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		node, err := s.upsertNode(txCtx, userID, req.Topic, req.Description, level)
		if err != nil {
			return err
		}

		for _, conn := range req.DomainConnections() {
			// Connection targets are created lazily with an empty description
			// and untouched when they already exist; a later direct upsert of
			// that topic fills them in.
			target, err := s.findOrCreateTarget(txCtx, userID, conn.Topic)
			if err != nil {
				return err
			}
			if target.ID == node.ID {
				continue
			}

			existing, err := s.knowledgeRepo.FindEdge(txCtx, userID, node.ID, target.ID, conn.Relationship)
			if err != nil {
				return domain.NewInternalError("failed to look up knowledge edge", err)
			}
			if existing != nil {
				continue
			}
			edge := &domain.KnowledgeEdge{
				ID:           util.NewULID(),
				UserID:       userID,
				SourceNodeID: node.ID,
				TargetNodeID: target.ID,
				Label:        conn.Relationship,
			}
			if err := s.knowledgeRepo.CreateEdge(txCtx, edge); err != nil {
				return domain.NewInternalError("failed to create knowledge edge", err)
			}
		}

		logger.Get().Info("Knowledge graph updated",
			zap.String("userID", userID),
			zap.String("topic", req.Topic),
			zap.Int("understanding", node.UnderstandingLevel),
			zap.Int("connections", len(req.Connections)))
		return nil
	})
}

// upsertNode returns the node for an exact topic match or creates it when
// absent. A nil level leaves an existing node's understanding untouched,
// the same way an empty description never erases a stored one.
func (s *knowledgeServiceImpl) upsertNode(ctx context.Context, userID, topic, description string, level *int) (*domain.KnowledgeNode, error) {
	node, err := s.knowledgeRepo.GetNodeByTopic(ctx, userID, topic)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up knowledge node", err)
	}
	if node != nil {
		if description != "" {
			node.Description = description
		}
		if level != nil {
			node.UnderstandingLevel = *level
		}
		if err := s.knowledgeRepo.UpdateNode(ctx, node); err != nil {
			return nil, domain.NewInternalError("failed to update knowledge node", err)
		}
		return node, nil
	}

	node = domain.NewKnowledgeNode(util.NewULID(), userID, topic, description)
	if level != nil {
		node.UnderstandingLevel = *level
	}
	if err := s.knowledgeRepo.CreateNode(ctx, node); err != nil {
		return nil, domain.NewInternalError("failed to create knowledge node", err)
	}
	return node, nil
}

// findOrCreateTarget returns an existing node untouched or creates an empty
// one for a connection to point at.
func (s *knowledgeServiceImpl) findOrCreateTarget(ctx context.Context, userID, topic string) (*domain.KnowledgeNode, error) {
	node, err := s.knowledgeRepo.GetNodeByTopic(ctx, userID, topic)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up knowledge node", err)
	}
	if node != nil {
		return node, nil
	}
	node = domain.NewKnowledgeNode(util.NewULID(), userID, topic, "")
	if err := s.knowledgeRepo.CreateNode(ctx, node); err != nil {
		return nil, domain.NewInternalError("failed to create knowledge node", err)
	}
	return node, nil
}

func (s *knowledgeServiceImpl) GetGraph(ctx context.Context, caller *domain.User) (*dto.GraphResponse, error) {
	graph, err := s.knowledgeRepo.GetGraph(ctx, caller.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load knowledge graph", err)
	}
	return dto.NewGraphResponse(graph), nil
}

func (s *knowledgeServiceImpl) SetUnderstanding(ctx context.Context, caller *domain.User, topic string, level int) error {
	node, err := s.knowledgeRepo.GetNodeByTopic(ctx, caller.ID, topic)
	if err != nil {
		return domain.NewInternalError("failed to look up knowledge node", err)
	}
	if node == nil {
		return domain.NewNotFoundError(fmt.Sprintf("no knowledge node for topic %q", topic))
	}
	return s.knowledgeRepo.UpdateNodeUnderstanding(ctx, node.ID, domain.ClampUnderstanding(level))
}
