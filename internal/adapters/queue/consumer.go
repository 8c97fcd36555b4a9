package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"gatherly/internal/domain"
)

// EmailConsumer drains the notifications queue and forwards each message to
// the target user's email address. It is a best-effort delivery worker: a
// failed send rejects the message without requeue and the pull-based feed in
// Postgres remains the source of truth.
type EmailConsumer struct {
	url    string
	users  domain.UserRepository
	mailer domain.Mailer
	logger *slog.Logger
}

func NewEmailConsumer(url string, users domain.UserRepository, mailer domain.Mailer, logger *slog.Logger) *EmailConsumer {
	return &EmailConsumer{
		url:    url,
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

// Start consumes until ctx is cancelled, reconnecting with backoff when the
// broker connection drops.
func (c *EmailConsumer) Start(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("notification consumer: dial broker", "err", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			c.logger.Warn("notification consumer: consume loop ended", "err", err)
		}
		_ = conn.Close()
	}
}

func (c *EmailConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(notificationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	deliveries, err := ch.Consume(notificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.logger.Warn("notification consumer: handle message", "err", err)
				_ = d.Reject(false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *EmailConsumer) handle(ctx context.Context, body []byte) error {
	var msg NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	user, err := c.users.GetByID(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("get user %s: %w", msg.UserID, err)
	}
	subject, text := renderNotificationEmail(msg)
	if err := c.mailer.Send(user.Email, subject, "", text); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func renderNotificationEmail(msg NotificationMessage) (subject, text string) {
	switch msg.Type {
	case domain.NotificationTypeNewRegistration:
		return "New registration for your event", "Someone just registered for your event."
	case domain.NotificationTypeRegistrationCancelled:
		return "A registration was cancelled", "An attendee withdrew from your event."
	case domain.NotificationTypeEventCancelled:
		return "Event cancelled", "An event you registered for has been cancelled."
	default:
		return "New notification", "You have a new notification."
	}
}
