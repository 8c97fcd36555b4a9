package domain

import (
	"context"
	"time"
)

// AuditRecord captures a state-changing action for the audit trail.
type AuditRecord struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Before     any       `json:"before"`
	After      any       `json:"after"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditLogger records actions best-effort after a successful commit.
// Implementations log failures and never propagate them.
type AuditLogger interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any)
}
