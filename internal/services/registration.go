package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

type registrationService struct {
	atomic           domain.Atomic
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	notifier         domain.Notifier
	audit            domain.AuditLogger
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewRegistrationService creates a RegistrationService. All writes run
// through the atomic runner so the registration row and the event counter
// commit or roll back together.
func NewRegistrationService(
	atomic domain.Atomic,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	notifier domain.Notifier,
	audit domain.AuditLogger,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		atomic:           atomic,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		notifier:         notifier,
		audit:            audit,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var reg *domain.Registration
	var ownerID string
	err := s.atomic.RunAtomic(ctx, func(ctx context.Context) error {
		// Lock the event row; every concurrent registration for this
		// event waits here until we commit or roll back.
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if event.Status != domain.EventStatusPublished {
			return domain.ErrEventNotPublished
		}

		// Pre-check for a clean error; the unique constraint on
		// (event_id, user_id) remains the backstop under races.
		if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
			return domain.ErrAlreadyRegistered
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get registration: %w", err)
		}

		if !event.HasFreeCapacity() {
			return domain.ErrEventFull
		}

		reg = domain.NewRegistration(eventID, userID, time.Now())
		if err := s.registrationRepo.Create(ctx, reg); err != nil {
			if errors.Is(err, domain.ErrAlreadyRegistered) {
				return domain.ErrAlreadyRegistered
			}
			return fmt.Errorf("create registration: %w", err)
		}
		if err := s.eventRepo.IncrementRegistered(ctx, eventID); err != nil {
			return fmt.Errorf("increment registered count: %w", err)
		}
		ownerID = event.OwnerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects; neither can undo the registration.
	s.notifier.Notify(ctx, ownerID, domain.NotificationTypeNewRegistration, map[string]string{
		"event_id": eventID,
		"user_id":  userID,
	})
	s.audit.Record(ctx, userID, "registration.create", "registration", reg.ID, nil, reg)

	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var removed *domain.Registration
	var ownerID string
	err := s.atomic.RunAtomic(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		reg, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get registration: %w", err)
		}
		if err := s.registrationRepo.Delete(ctx, eventID, userID); err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}
		if err := s.eventRepo.DecrementRegistered(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Counter was already zero while a registration row
				// existed. Clamp, but make the inconsistency loud and
				// include the true row count for reconciliation.
				rows, _ := s.registrationRepo.CountByEventID(ctx, eventID)
				s.logger.ErrorContext(ctx, "registered_count underflow",
					"event_id", eventID, "registration_id", reg.ID, "row_count", rows)
			} else {
				return fmt.Errorf("decrement registered count: %w", err)
			}
		}
		removed = reg
		ownerID = event.OwnerID
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, ownerID, domain.NotificationTypeRegistrationCancelled, map[string]string{
		"event_id": eventID,
		"user_id":  userID,
	})
	s.audit.Record(ctx, userID, "registration.cancel", "registration", removed.ID, removed, nil)

	return nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		ev, err := s.eventRepo.GetByID(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Event deleted but registration remains; skip it.
				continue
			}
			return nil, fmt.Errorf("get event for registration: %w", err)
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}
	return result, nil
}
