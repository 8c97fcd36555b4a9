package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the state of a registration. Only "registered"
// exists today; deposit/paid states belong to a future billing integration.
type RegistrationStatus string

// RegistrationStatusRegistered is the only status the core assigns.
const RegistrationStatusRegistered RegistrationStatus = "registered"

// Registration is a user's registration for an event. At most one exists per
// (event, user) pair, enforced by a unique constraint in the store.
// swagger:model Registration
type Registration struct {
	ID        string             `json:"id"`
	EventID   string             `json:"event_id"`
	UserID    string             `json:"user_id"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewRegistration returns a new Registration. ID is typically set by the
// repository on create.
func NewRegistration(eventID, userID string, createdAt time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		UserID:    userID,
		Status:    RegistrationStatusRegistered,
		CreatedAt: createdAt,
	}
}

// RegistrationWithEvent bundles a registration with its event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository defines storage operations for registrations.
// Create reports ErrAlreadyRegistered when the unique (event, user)
// constraint is violated; Delete reports ErrNotFound when no row matched.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	Delete(ctx context.Context, eventID, userID string) error
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// RegistrationService admits and withdraws registrations while preserving
// the capacity invariant and the one-registration-per-user rule.
type RegistrationService interface {
	// Register registers the user for a published event with free capacity.
	// Fails with ErrNotFound, ErrEventNotPublished, ErrEventFull or
	// ErrAlreadyRegistered.
	Register(ctx context.Context, eventID, userID string) (*Registration, error)
	// Cancel withdraws the user's registration, freeing one unit of
	// capacity. Fails with ErrNotFound when no registration exists.
	Cancel(ctx context.Context, eventID, userID string) error
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
}
