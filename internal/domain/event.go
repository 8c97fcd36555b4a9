package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusClosed    EventStatus = "closed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusClosed, EventStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status change s -> next is allowed.
// Draft events can only be published; published events can be closed or
// cancelled. Closed and cancelled are terminal.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case EventStatusDraft:
		return next == EventStatusPublished
	case EventStatusPublished:
		return next == EventStatusClosed || next == EventStatusCancelled
	}
	return false
}

// Event is the aggregate root for registrations and favorites.
// RegisteredCount and FavoritesCount are denormalized counters maintained in
// lockstep with the registration/favorite rows; they are mutated only by the
// registration and favorite services, inside the same transaction as the row
// write, never by event edits.
// swagger:model Event
type Event struct {
	ID              string      `json:"id"`
	OwnerID         string      `json:"owner_id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	StartsAt        time.Time   `json:"starts_at"`
	Capacity        *int        `json:"capacity"` // nil means unlimited
	RegisteredCount int         `json:"registered_count"`
	FavoritesCount  int         `json:"favorites_count"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewEvent returns a new draft Event with zeroed counters. ID is typically
// set by the repository on create.
func NewEvent(ownerID, name, description string, startsAt time.Time, capacity *int, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		StartsAt:    startsAt,
		Capacity:    capacity,
		Status:      EventStatusDraft,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// HasFreeCapacity reports whether the event can admit one more registration.
func (e *Event) HasFreeCapacity() bool {
	return e.Capacity == nil || e.RegisteredCount < *e.Capacity
}

// EventRepository defines the interface for event storage.
//
// GetByIDForUpdate locks the event row for the remainder of the surrounding
// atomic unit and must only be called with a context obtained from
// Atomic.RunAtomic. The counter mutations are store-level arithmetic, never
// application-side read-modify-write; they return ErrNotFound when no row
// was touched. DecrementRegistered and DecrementFavorites refuse to take a
// counter below zero.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	ListPublished(ctx context.Context, p PaginationParams) (events []*Event, total int, err error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	Update(ctx context.Context, eventID string, name, description *string, startsAt *time.Time, capacity *int) (*Event, error)
	UpdateStatus(ctx context.Context, eventID string, status EventStatus) error
	IncrementRegistered(ctx context.Context, eventID string) error
	DecrementRegistered(ctx context.Context, eventID string) error
	IncrementFavorites(ctx context.Context, eventID string) error
	DecrementFavorites(ctx context.Context, eventID string) error
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event lifecycle operations.
// Counters are read-only here: every mutation goes through the registration
// or favorite service.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListPublishedEvents(ctx context.Context, p PaginationParams) (events []*Event, total int, err error)
	ListMyEvents(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, name, description *string, startsAt *time.Time, capacity *int) (*Event, error)
	ChangeStatus(ctx context.Context, eventID, ownerID string, status EventStatus) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
}
