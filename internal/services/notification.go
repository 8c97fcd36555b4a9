package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatherly/internal/domain"
)

type notificationService struct {
	notificationRepo domain.NotificationRepository
	contextTimeout   time.Duration
}

// NewNotificationService creates the poll-based notification feed service.
func NewNotificationService(notificationRepo domain.NotificationRepository, timeout time.Duration) domain.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		contextTimeout:   timeout,
	}
}

func (s *notificationService) ListMyNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	notifs, err := s.notificationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.notificationRepo.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
