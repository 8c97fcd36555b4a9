package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatherly/internal/domain"
)

type auditLogger struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewAuditLogger returns an AuditLogger that appends to the audit_log table.
// Record is best-effort: failures are logged and swallowed so an audit
// problem never fails the action being audited.
func NewAuditLogger(db *sql.DB, logger *slog.Logger) domain.AuditLogger {
	return &auditLogger{DB: db, Logger: logger}
}

func (a *auditLogger) Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		a.Logger.WarnContext(ctx, "audit: marshal before state", "action", action, "err", err)
		beforeJSON = []byte("null")
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		a.Logger.WarnContext(ctx, "audit: marshal after state", "action", action, "err", err)
		afterJSON = []byte("null")
	}

	query := `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	// Always against the pool: audit records are written after the
	// operation's transaction has committed.
	_, err = a.DB.ExecContext(ctx, query,
		uuid.New().String(), actorID, action, entityType, entityID, beforeJSON, afterJSON, time.Now())
	if err != nil {
		a.Logger.WarnContext(ctx, "audit: insert record", "action", action, "entity_id", entityID, "err", err)
	}
}
