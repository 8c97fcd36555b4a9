package domain

import (
	"context"
	"time"
)

// Favorite marks an event as favorited by a user. At most one exists per
// (event, user) pair, enforced by a unique constraint in the store.
// swagger:model Favorite
type Favorite struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFavorite returns a new Favorite. ID is typically set by the repository
// on create.
func NewFavorite(eventID, userID string, createdAt time.Time) *Favorite {
	return &Favorite{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// FavoriteWithEvent bundles a favorite with its event.
type FavoriteWithEvent struct {
	Favorite *Favorite `json:"favorite"`
	Event    *Event    `json:"event"`
}

// FavoriteRepository defines storage operations for favorites. Create
// reports ErrConflict-style duplicates via the unique (event, user)
// constraint; Delete reports ErrNotFound when no row matched.
type FavoriteRepository interface {
	Create(ctx context.Context, fav *Favorite) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Favorite, error)
	Delete(ctx context.Context, eventID, userID string) error
	ListByUserID(ctx context.Context, userID string) ([]*Favorite, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// FavoriteService toggles a user's favorite flag on an event, keeping the
// favorites counter accurate.
type FavoriteService interface {
	// Toggle flips the favorite state and returns the new state: true when
	// a favorite was created, false when one was removed. Fails with
	// ErrNotFound when the event does not exist.
	Toggle(ctx context.Context, eventID, userID string) (favorited bool, err error)
	ListMyFavorites(ctx context.Context, userID string) ([]*FavoriteWithEvent, error)
}
