package models

import (
	"database/sql"
	"time"
)

// KnowledgeNode row in the KNOWLEDGE_NODES table. (USER_ID, TOPIC) is
// unique; the topic string is the node's natural key within a user's graph.
// DESCRIPTION is nullable: Oracle stores an empty string as NULL, and lazily
// created connection targets start without one.
type KnowledgeNode struct {
	ID                 string         `db:"ID"` // ULID
	UserID             string         `db:"USER_ID"`
	Topic              string         `db:"TOPIC"`
	Description        sql.NullString `db:"DESCRIPTION"`
	UnderstandingLevel int            `db:"UNDERSTANDING_LEVEL"`
	LastUpdated        time.Time      `db:"LAST_UPDATED"`
	CreatedAt          time.Time      `db:"CREATED_AT"`
}

// KnowledgeEdge row in the KNOWLEDGE_EDGES table.
type KnowledgeEdge struct {
	ID           string         `db:"ID"` // ULID
	UserID       string         `db:"USER_ID"`
	SourceNodeID string         `db:"SOURCE_NODE_ID"`
	TargetNodeID string         `db:"TARGET_NODE_ID"`
	Label        sql.NullString `db:"LABEL"`
	CreatedAt    time.Time      `db:"CREATED_AT"`
}
