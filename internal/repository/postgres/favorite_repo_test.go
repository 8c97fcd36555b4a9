package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gatherly/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFavoriteRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO favorites \(event_id, user_id, created_at\)`).
			WithArgs("ev-1", "u1", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("fav-1"))

		repo := NewFavoriteRepository(db)
		fav := domain.NewFavorite("ev-1", "u1", time.Now())
		require.NoError(t, repo.Create(ctx, fav))
		require.Equal(t, "fav-1", fav.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to already favorited", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO favorites`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "favorites_event_id_user_id_key"})

		repo := NewFavoriteRepository(db)
		err = repo.Create(ctx, domain.NewFavorite("ev-1", "u1", time.Now()))
		require.ErrorIs(t, err, domain.ErrAlreadyFavorited)
	})
}

func TestFavoriteRepository_GetByEventAndUser(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, user_id, created_at\s+FROM favorites\s+WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "u1").
		WillReturnError(sql.ErrNoRows)

	repo := NewFavoriteRepository(db)
	_, err = repo.GetByEventAndUser(ctx, "ev-1", "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM favorites WHERE event_id = \$1 AND user_id = \$2`).
			WithArgs("ev-1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewFavoriteRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1", "u1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row reports not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM favorites`).
			WithArgs("ev-1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewFavoriteRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "ev-1", "u1"), domain.ErrNotFound)
	})
}

func TestFavoriteRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, event_id, user_id, created_at\s+FROM favorites\s+WHERE user_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "created_at"}).
			AddRow("fav-1", "ev-1", "u1", ts))

	repo := NewFavoriteRepository(db)
	favs, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.Equal(t, "ev-1", favs[0].EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}
