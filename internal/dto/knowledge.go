package dto

import (
	"fmt"
	"strings"
	"time"

	"nalar/internal/domain"
)

// ConnectionInput is one related topic supplied alongside a graph update.
type ConnectionInput struct {
	Topic        string `json:"topic"`
	Relationship string `json:"relationship"`
}

// UpdateKnowledgeGraphRequest is the request body for upserting one topic
// into the caller's knowledge graph. The same shape is used by the chat
// tool call and the HTTP endpoint. UnderstandingLevel is optional; when
// omitted an existing node keeps its stored level and a new node starts
// at zero.
// @Description Request body for a knowledge graph update
type UpdateKnowledgeGraphRequest struct {
	Topic              string            `json:"topic" validate:"required"`
	Description        string            `json:"description"`
	UnderstandingLevel *int              `json:"understanding_level,omitempty"`
	Connections        []ConnectionInput `json:"connections,omitempty"`
}

// Validate checks the upsert fields. The understanding level is clamped
// later rather than rejected; only structurally broken input fails here.
func (r *UpdateKnowledgeGraphRequest) Validate() error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(r.Topic) == "" {
		errs = append(errs, domain.NewMissingFieldError("topic"))
	}
	for i, conn := range r.Connections {
		if strings.TrimSpace(conn.Topic) == "" {
			errs = append(errs, domain.NewMissingFieldError(fmt.Sprintf("connections[%d].topic", i)))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Connections converts the input pairs to domain values, dropping blanks.
func (r *UpdateKnowledgeGraphRequest) DomainConnections() []domain.Connection {
	out := make([]domain.Connection, 0, len(r.Connections))
	for _, c := range r.Connections {
		topic := strings.TrimSpace(c.Topic)
		if topic == "" {
			continue
		}
		out = append(out, domain.Connection{Topic: topic, Relationship: strings.TrimSpace(c.Relationship)})
	}
	return out
}

// SetUnderstandingRequest adjusts the understanding level of one topic
// without touching its description or connections.
type SetUnderstandingRequest struct {
	Topic              string `json:"topic" validate:"required"`
	UnderstandingLevel int    `json:"understanding_level"`
}

func (r *SetUnderstandingRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("topic")}
	}
	return nil
}

// KnowledgeNodeResponse is one node of the graph view.
type KnowledgeNodeResponse struct {
	ID                 string    `json:"id"`
	Topic              string    `json:"topic"`
	Description        string    `json:"description"`
	UnderstandingLevel int       `json:"understanding_level"`
	LastUpdated        time.Time `json:"last_updated"`
}

// KnowledgeEdgeResponse is one edge of the graph view.
type KnowledgeEdgeResponse struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// GraphResponse is the full graph for force-directed rendering.
type GraphResponse struct {
	Nodes []*KnowledgeNodeResponse `json:"nodes"`
	Edges []*KnowledgeEdgeResponse `json:"edges"`
}

// NewGraphResponse maps a domain graph to its API representation.
func NewGraphResponse(g *domain.Graph) *GraphResponse {
	resp := &GraphResponse{
		Nodes: make([]*KnowledgeNodeResponse, 0, len(g.Nodes)),
		Edges: make([]*KnowledgeEdgeResponse, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		resp.Nodes = append(resp.Nodes, &KnowledgeNodeResponse{
			ID:                 n.ID,
			Topic:              n.Topic,
			Description:        n.Description,
			UnderstandingLevel: n.UnderstandingLevel,
			LastUpdated:        n.LastUpdated,
		})
	}
	for _, e := range g.Edges {
		resp.Edges = append(resp.Edges, &KnowledgeEdgeResponse{
			ID:     e.ID,
			Source: e.SourceNodeID,
			Target: e.TargetNodeID,
			Label:  e.Label,
		})
	}
	return resp
}
