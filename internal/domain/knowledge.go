package domain

import "time"

// KnowledgeNode is one topic in a user's personal knowledge graph. The topic
// string is the natural key within a user's graph: lookups use exact,
// case-sensitive matching, accepting synonym drift ("ML" vs "Machine
// Learning") instead of attempting entity resolution.
type KnowledgeNode struct {
	ID                 string
	UserID             string
	Topic              string
	Description        string
	UnderstandingLevel int
	LastUpdated        time.Time
	CreatedAt          time.Time
}

// NewKnowledgeNode creates a node with understanding level 0.
func NewKnowledgeNode(id, userID, topic, description string) *KnowledgeNode {
	now := time.Now()
	return &KnowledgeNode{
		ID:          id,
		UserID:      userID,
		Topic:       topic,
		Description: description,
		LastUpdated: now,
		CreatedAt:   now,
	}
}

// ClampUnderstanding bounds a level to [0, 100].
func ClampUnderstanding(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// KnowledgeEdge is a directed, optionally labeled relation between two nodes
// of the same user's graph.
type KnowledgeEdge struct {
	ID           string
	UserID       string
	SourceNodeID string
	TargetNodeID string
	Label        string
	CreatedAt    time.Time
}

// Connection is one (topic, relationship) pair supplied by the model when it
// updates the knowledge graph.
type Connection struct {
	Topic        string
	Relationship string
}

// Graph is the full node and edge set for one user, returned unpaginated for
// client-side force-directed layout.
type Graph struct {
	Nodes []*KnowledgeNode
	Edges []*KnowledgeEdge
}
