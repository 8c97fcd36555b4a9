package postgres

import (
	"context"
	"database/sql"

	"gatherly/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, payload, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := querier(ctx, r.DB).ExecContext(ctx, query, n.ID, n.UserID, n.Type, []byte(n.Payload), n.Read, n.CreatedAt)
	return err
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, payload, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifs := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		var payload []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &payload, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Payload = payload
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
