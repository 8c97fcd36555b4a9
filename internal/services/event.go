package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherly/internal/domain"
)

const maxCapacity = 100_000

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	notifier         domain.Notifier
	audit            domain.AuditLogger
	contextTimeout   time.Duration
}

// NewEventService creates an EventService for organizer-facing lifecycle
// operations. It never touches the denormalized counters; those belong to
// the registration and favorite services.
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	notifier domain.Notifier,
	audit domain.AuditLogger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		notifier:         notifier,
		audit:            audit,
		contextTimeout:   timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("%w: event owner is required", domain.ErrInvalidInput)
	}
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if event.Capacity != nil && (*event.Capacity <= 0 || *event.Capacity > maxCapacity) {
		return fmt.Errorf("%w: capacity must be between 1 and %d", domain.ErrInvalidInput, maxCapacity)
	}

	event.Status = domain.EventStatusDraft
	event.RegisteredCount = 0
	event.FavoritesCount = 0
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	s.audit.Record(ctx, event.OwnerID, "event.create", "event", event.ID, nil, event)
	return nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListPublishedEvents(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListPublished(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list published events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, name, description *string, startsAt *time.Time, capacity *int) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if capacity != nil {
		if *capacity <= 0 || *capacity > maxCapacity {
			return nil, fmt.Errorf("%w: capacity must be between 1 and %d", domain.ErrInvalidInput, maxCapacity)
		}
		// Shrinking below the current registration count would break the
		// capacity invariant for rows that already exist.
		if *capacity < event.RegisteredCount {
			return nil, fmt.Errorf("%w: capacity cannot be below current registrations (%d)", domain.ErrInvalidInput, event.RegisteredCount)
		}
	}
	updated, err := s.eventRepo.Update(ctx, eventID, name, description, startsAt, capacity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.audit.Record(ctx, ownerID, "event.update", "event", eventID, event, updated)
	return updated, nil
}

func (s *eventService) ChangeStatus(ctx context.Context, eventID, ownerID string, status domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if !event.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, event.Status, status)
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	before := event.Status
	event.Status = status
	s.audit.Record(ctx, ownerID, "event.status", "event", eventID, before, status)

	// Tell registered attendees when their event is called off.
	if status == domain.EventStatusCancelled {
		regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		for _, reg := range regs {
			s.notifier.Notify(ctx, reg.UserID, domain.NotificationTypeEventCancelled, map[string]string{
				"event_id":   eventID,
				"event_name": event.Name,
			})
		}
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.audit.Record(ctx, ownerID, "event.delete", "event", eventID, event, nil)
	return nil
}
