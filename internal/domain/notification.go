package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Notification types emitted by the core services.
const (
	NotificationTypeNewRegistration       = "event.registration.created"
	NotificationTypeRegistrationCancelled = "event.registration.cancelled"
	NotificationTypeEventCancelled        = "event.cancelled"
)

// Notification is a pull-only message for a user. There is no push channel;
// clients poll their notification list.
// swagger:model Notification
type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUserID(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// Notifier delivers a notification to a user. Calls are fire-and-forget:
// implementations must never let a delivery failure reach the caller's
// transaction outcome, and callers invoke Notify only after a successful
// commit.
type Notifier interface {
	Notify(ctx context.Context, targetUserID, notifType string, payload any)
}

// NotificationService exposes the poll-based notification feed.
type NotificationService interface {
	ListMyNotifications(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}
