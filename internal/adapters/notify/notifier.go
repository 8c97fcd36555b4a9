// Package notify implements domain.Notifier. Delivery is fire-and-forget:
// every path logs and swallows its own errors so a notification problem can
// never affect the operation that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatherly/internal/adapters/queue"
	"gatherly/internal/domain"
)

type storeNotifier struct {
	repo      domain.NotificationRepository
	publisher *queue.Publisher
	logger    *slog.Logger
}

// NewStoreNotifier returns a Notifier that appends to the notifications
// table (the pull feed) and then best-effort publishes to RabbitMQ for
// out-of-process delivery workers. publisher may be nil when no broker is
// configured.
func NewStoreNotifier(repo domain.NotificationRepository, publisher *queue.Publisher, logger *slog.Logger) domain.Notifier {
	return &storeNotifier{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (n *storeNotifier) Notify(ctx context.Context, targetUserID, notifType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.WarnContext(ctx, "notify: marshal payload", "type", notifType, "err", err)
		data = []byte("null")
	}
	notif := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    targetUserID,
		Type:      notifType,
		Payload:   data,
		CreatedAt: time.Now(),
	}
	if err := n.repo.Create(ctx, notif); err != nil {
		n.logger.WarnContext(ctx, "notify: store notification", "type", notifType, "user_id", targetUserID, "err", err)
		return
	}
	if n.publisher == nil {
		return
	}
	msg := queue.NotificationMessage{
		ID:        notif.ID,
		UserID:    notif.UserID,
		Type:      notif.Type,
		Payload:   notif.Payload,
		CreatedAt: notif.CreatedAt,
	}
	if err := n.publisher.Publish(ctx, msg); err != nil {
		n.logger.WarnContext(ctx, "notify: publish notification", "type", notifType, "err", err)
	}
}

type noopNotifier struct{}

// NewNoopNotifier returns a Notifier that drops everything.
func NewNoopNotifier() domain.Notifier {
	return noopNotifier{}
}

func (noopNotifier) Notify(context.Context, string, string, any) {}
