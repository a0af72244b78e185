package service

import (
	"context"
	"testing"

	"nalar/internal/domain"
	"nalar/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateGraph(t *testing.T) {
	ctx := context.Background()
	caller := testCaller()

	t.Run("creates node and lazy connection targets", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(nil, nil).Once()
		repo.On("CreateNode", ctx, mock.MatchedBy(func(n *domain.KnowledgeNode) bool {
			return n.Topic == "Goroutines" && n.UnderstandingLevel == 80 && n.Description == "Lightweight threads"
		})).Return(nil).Once()

		// The connection target is created empty, not with the primary
		// topic's description or level.
		repo.On("GetNodeByTopic", ctx, caller.ID, "Channels").Return(nil, nil).Once()
		repo.On("CreateNode", ctx, mock.MatchedBy(func(n *domain.KnowledgeNode) bool {
			return n.Topic == "Channels" && n.UnderstandingLevel == 0 && n.Description == ""
		})).Return(nil).Once()

		repo.On("FindEdge", ctx, caller.ID, mock.Anything, mock.Anything, "communicates via").Return(nil, nil).Once()
		repo.On("CreateEdge", ctx, mock.MatchedBy(func(e *domain.KnowledgeEdge) bool {
			return e.Label == "communicates via" && e.UserID == caller.ID
		})).Return(nil).Once()

		confirmation, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:              "Goroutines",
			Description:        "Lightweight threads",
			UnderstandingLevel: intPtr(80),
			Connections: []dto.ConnectionInput{
				{Topic: "Channels", Relationship: "communicates via"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Successfully updated knowledge graph for: Goroutines", confirmation)
		repo.AssertExpectations(t)
	})

	t.Run("existing topic updated in place", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		existing := domain.NewKnowledgeNode("node-1", caller.ID, "Goroutines", "old description")
		existing.UnderstandingLevel = 40
		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(existing, nil)
		repo.On("UpdateNode", ctx, mock.MatchedBy(func(n *domain.KnowledgeNode) bool {
			return n.ID == "node-1" && n.UnderstandingLevel == 90 && n.Description == "fresh description"
		})).Return(nil)

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:              "Goroutines",
			Description:        "fresh description",
			UnderstandingLevel: intPtr(90),
		})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "CreateNode", mock.Anything, mock.Anything)
	})

	t.Run("empty description keeps the stored one", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		existing := domain.NewKnowledgeNode("node-1", caller.ID, "Goroutines", "keep me")
		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(existing, nil)
		repo.On("UpdateNode", ctx, mock.MatchedBy(func(n *domain.KnowledgeNode) bool {
			return n.Description == "keep me"
		})).Return(nil)

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:              "Goroutines",
			UnderstandingLevel: intPtr(50),
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("omitted level keeps the stored one", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		existing := domain.NewKnowledgeNode("node-1", caller.ID, "Goroutines", "old description")
		existing.UnderstandingLevel = 80
		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(existing, nil)
		repo.On("UpdateNode", ctx, mock.MatchedBy(func(n *domain.KnowledgeNode) bool {
			return n.ID == "node-1" && n.UnderstandingLevel == 80
		})).Return(nil)

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:       "Goroutines",
			Description: "fresh description",
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("existing connection target is left untouched", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(nil, nil).Once()
		repo.On("CreateNode", ctx, mock.MatchedBy(func(n *domain.KnowledgeNode) bool {
			return n.Topic == "Goroutines"
		})).Return(nil).Once()

		target := domain.NewKnowledgeNode("node-2", caller.ID, "Channels", "typed conduits")
		target.UnderstandingLevel = 75
		repo.On("GetNodeByTopic", ctx, caller.ID, "Channels").Return(target, nil).Once()

		repo.On("FindEdge", ctx, caller.ID, mock.Anything, "node-2", "uses").Return(nil, nil)
		repo.On("CreateEdge", ctx, mock.Anything).Return(nil)

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:              "Goroutines",
			UnderstandingLevel: intPtr(10),
			Connections:        []dto.ConnectionInput{{Topic: "Channels", Relationship: "uses"}},
		})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateNode", mock.Anything, mock.Anything)
	})

	t.Run("duplicate edge is not recreated", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		source := domain.NewKnowledgeNode("node-1", caller.ID, "Goroutines", "")
		target := domain.NewKnowledgeNode("node-2", caller.ID, "Channels", "")
		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(source, nil)
		repo.On("UpdateNode", ctx, mock.Anything).Return(nil)
		repo.On("GetNodeByTopic", ctx, caller.ID, "Channels").Return(target, nil)
		repo.On("FindEdge", ctx, caller.ID, "node-1", "node-2", "uses").Return(&domain.KnowledgeEdge{ID: "edge-1"}, nil)

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:              "Goroutines",
			UnderstandingLevel: intPtr(60),
			Connections:        []dto.ConnectionInput{{Topic: "Channels", Relationship: "uses"}},
		})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "CreateEdge", mock.Anything, mock.Anything)
	})

	t.Run("self connection is skipped", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		node := domain.NewKnowledgeNode("node-1", caller.ID, "Goroutines", "")
		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(node, nil)
		repo.On("UpdateNode", ctx, mock.Anything).Return(nil)

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:              "Goroutines",
			UnderstandingLevel: intPtr(60),
			Connections:        []dto.ConnectionInput{{Topic: "Goroutines", Relationship: "is"}},
		})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "FindEdge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreateEdge", mock.Anything, mock.Anything)
	})

	t.Run("understanding level clamped to bounds", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(nil, nil)
		repo.On("CreateNode", ctx, mock.MatchedBy(func(n *domain.KnowledgeNode) bool {
			return n.UnderstandingLevel == 100
		})).Return(nil)

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{
			Topic:              "Goroutines",
			UnderstandingLevel: intPtr(250),
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("blank topic rejected", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		_, err := svc.UpdateGraph(ctx, caller, &dto.UpdateKnowledgeGraphRequest{Topic: "   "})
		var errs domain.ValidationErrors
		assert.ErrorAs(t, err, &errs)
		repo.AssertNotCalled(t, "GetNodeByTopic", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetGraph(t *testing.T) {
	ctx := context.Background()
	caller := testCaller()

	repo := new(MockKnowledgeRepository)
	svc := NewKnowledgeService(repo, passthroughTxManager{})

	node := domain.NewKnowledgeNode("node-1", caller.ID, "Goroutines", "")
	repo.On("GetGraph", ctx, caller.ID).Return(&domain.Graph{
		Nodes: []*domain.KnowledgeNode{node},
		Edges: []*domain.KnowledgeEdge{},
	}, nil)

	graph, err := svc.GetGraph(ctx, caller)

	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "Goroutines", graph.Nodes[0].Topic)
	assert.NotNil(t, graph.Edges)
	assert.Empty(t, graph.Edges)
}

func TestSetUnderstanding(t *testing.T) {
	ctx := context.Background()
	caller := testCaller()

	t.Run("clamps before persisting", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		node := domain.NewKnowledgeNode("node-1", caller.ID, "Goroutines", "")
		repo.On("GetNodeByTopic", ctx, caller.ID, "Goroutines").Return(node, nil)
		repo.On("UpdateNodeUnderstanding", ctx, "node-1", 100).Return(nil)

		require.NoError(t, svc.SetUnderstanding(ctx, caller, "Goroutines", 140))
		repo.AssertExpectations(t)
	})

	t.Run("unknown topic", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewKnowledgeService(repo, passthroughTxManager{})

		repo.On("GetNodeByTopic", ctx, caller.ID, "Unknown").Return(nil, nil)

		err := svc.SetUnderstanding(ctx, caller, "Unknown", 10)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeNotFound, domainErr.Code)
	})
}
