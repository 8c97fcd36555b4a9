package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

type favoriteService struct {
	atomic         domain.Atomic
	eventRepo      domain.EventRepository
	favoriteRepo   domain.FavoriteRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewFavoriteService creates a FavoriteService. The toggle is a
// read-modify-write sequence, so it always runs inside one atomic unit with
// the event row locked.
func NewFavoriteService(
	atomic domain.Atomic,
	eventRepo domain.EventRepository,
	favoriteRepo domain.FavoriteRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.FavoriteService {
	return &favoriteService{
		atomic:         atomic,
		eventRepo:      eventRepo,
		favoriteRepo:   favoriteRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *favoriteService) Toggle(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var favorited bool
	err := s.atomic.RunAtomic(ctx, func(ctx context.Context) error {
		// Locking the event row serializes concurrent toggles for this
		// event, so two toggles cannot both observe "absent". The unique
		// (event_id, user_id) constraint backs this up.
		if _, err := s.eventRepo.GetByIDForUpdate(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		_, err := s.favoriteRepo.GetByEventAndUser(ctx, eventID, userID)
		switch {
		case err == nil:
			if err := s.favoriteRepo.Delete(ctx, eventID, userID); err != nil {
				return fmt.Errorf("delete favorite: %w", err)
			}
			if err := s.eventRepo.DecrementFavorites(ctx, eventID); err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("decrement favorites count: %w", err)
				}
				// The event row is locked and exists, so a zero-row update
				// means the counter was already zero while a favorite row
				// existed. Clamp, but make the inconsistency loud.
				rows, _ := s.favoriteRepo.CountByEventID(ctx, eventID)
				s.logger.ErrorContext(ctx, "favorites_count underflow",
					"event_id", eventID, "user_id", userID, "row_count", rows)
			}
			favorited = false
			return nil
		case errors.Is(err, domain.ErrNotFound):
			fav := domain.NewFavorite(eventID, userID, time.Now())
			if err := s.favoriteRepo.Create(ctx, fav); err != nil {
				return fmt.Errorf("create favorite: %w", err)
			}
			if err := s.eventRepo.IncrementFavorites(ctx, eventID); err != nil {
				return fmt.Errorf("increment favorites count: %w", err)
			}
			favorited = true
			return nil
		default:
			return fmt.Errorf("get favorite: %w", err)
		}
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

func (s *favoriteService) ListMyFavorites(ctx context.Context, userID string) ([]*domain.FavoriteWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	favs, err := s.favoriteRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	result := make([]*domain.FavoriteWithEvent, 0, len(favs))
	for _, fav := range favs {
		ev, err := s.eventRepo.GetByID(ctx, fav.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get event for favorite: %w", err)
		}
		result = append(result, &domain.FavoriteWithEvent{
			Favorite: fav,
			Event:    ev,
		})
	}
	return result, nil
}
