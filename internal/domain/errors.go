package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// these onto HTTP status codes; anything else is a 500.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not allowed to act on the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for requests that fail domain validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEventNotPublished is returned when an action requires a published event.
	ErrEventNotPublished = errors.New("event is not published")

	// ErrEventFull is returned when an event has no remaining capacity.
	ErrEventFull = errors.New("event is at capacity")

	// ErrAlreadyRegistered is returned when the user already holds a
	// registration for the event.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrAlreadyFavorited is returned when a favorite insert hits the
	// unique constraint backstop.
	ErrAlreadyFavorited = errors.New("event already favorited")

	// ErrInvalidTransition is returned for a disallowed event status change.
	ErrInvalidTransition = errors.New("invalid event status transition")

	// ErrTxFailed wraps a unit of work that could not begin or commit.
	// Nothing is partially applied; callers may retry.
	ErrTxFailed = errors.New("transaction failed")

	// ErrNestedAtomic is returned when RunAtomic is called from inside an
	// already-running atomic unit.
	ErrNestedAtomic = errors.New("nested atomic unit of work")
)
