package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

type favoriteRepository struct {
	DB *sql.DB
}

func NewFavoriteRepository(db *sql.DB) domain.FavoriteRepository {
	return &favoriteRepository{
		DB: db,
	}
}

// Create inserts the favorite row. The UNIQUE (event_id, user_id)
// constraint backs up the toggle's lookup; a violation surfaces as
// ErrAlreadyFavorited.
func (r *favoriteRepository) Create(ctx context.Context, fav *domain.Favorite) error {
	query := `
		INSERT INTO favorites (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, fav.EventID, fav.UserID, fav.CreatedAt).
		Scan(&fav.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyFavorited
		}
		return err
	}
	return nil
}

func (r *favoriteRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Favorite, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM favorites
		WHERE event_id = $1 AND user_id = $2
	`
	fav := &domain.Favorite{}
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID).
		Scan(&fav.ID, &fav.EventID, &fav.UserID, &fav.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return fav, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM favorites WHERE event_id = $1 AND user_id = $2`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *favoriteRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favs := make([]*domain.Favorite, 0)
	for rows.Next() {
		fav := &domain.Favorite{}
		if err := rows.Scan(&fav.ID, &fav.EventID, &fav.UserID, &fav.CreatedAt); err != nil {
			return nil, err
		}
		favs = append(favs, fav)
	}
	return favs, rows.Err()
}

func (r *favoriteRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM favorites WHERE event_id = $1`
	var count int
	if err := querier(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
