package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gatherly/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{"id", "owner_id", "name", "description", "starts_at", "capacity", "registered_count", "favorites_count", "status", "created_at", "updated_at"}

func eventRow(id string, capacity any, registered, favorites int, status domain.EventStatus) *sqlmock.Rows {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventCols).
		AddRow(id, "owner-1", "Go Meetup", "monthly", ts, capacity, registered, favorites, status, ts, ts)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success with capacity",
			event: &domain.Event{
				OwnerID:   "owner-1",
				Name:      "Go Meetup",
				StartsAt:  time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
				Capacity:  intPtr(100),
				Status:    domain.EventStatusDraft,
				CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(owner_id, name, description, starts_at, capacity, registered_count, favorites_count, status, created_at, updated_at\)`).
					WithArgs("owner-1", "Go Meetup", "", time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), sql.NullInt64{Int64: 100, Valid: true}, domain.EventStatusDraft, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
			},
			wantID: "ev-1",
		},
		{
			name: "nil capacity stored as NULL",
			event: &domain.Event{
				OwnerID:   "owner-1",
				Name:      "Open House",
				StartsAt:  time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
				Status:    domain.EventStatusDraft,
				CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("owner-1", "Open House", "", time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), sql.NullInt64{}, domain.EventStatusDraft, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-2"))
			},
			wantID: "ev-2",
		},
		{
			name: "db error",
			event: &domain.Event{
				OwnerID: "owner-1",
				Name:    "Go Meetup",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, owner_id, name, description, starts_at, capacity, registered_count, favorites_count, status, created_at, updated_at`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1", int64(50), 12, 3, domain.EventStatusPublished))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", event.ID)
		require.NotNil(t, event.Capacity)
		require.Equal(t, 50, *event.Capacity)
		require.Equal(t, 12, event.RegisteredCount)
		require.Equal(t, 3, event.FavoritesCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null capacity scans as nil", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, owner_id, name`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1", nil, 0, 0, domain.EventStatusDraft))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Nil(t, event.Capacity)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, owner_id, name`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_GetByIDForUpdate(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The row lock is the whole point of this method.
	mock.ExpectQuery(`SELECT id, owner_id, name, description, starts_at, capacity, registered_count, favorites_count, status, created_at, updated_at\s+FROM events\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(eventRow("ev-1", int64(50), 49, 0, domain.EventStatusPublished))

	repo := NewEventRepository(db)
	event, err := repo.GetByIDForUpdate(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, 49, event.RegisteredCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListPublished(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE status = \$1`).
		WithArgs(domain.EventStatusPublished).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`SELECT id, owner_id, name, .* FROM events\s+WHERE status = \$1\s+ORDER BY starts_at ASC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(domain.EventStatusPublished, 20, 20).
		WillReturnRows(eventRow("ev-1", nil, 5, 1, domain.EventStatusPublished).
			AddRow("ev-2", "owner-2", "GopherCon Warmup", "", time.Now(), int64(10), 10, 0, domain.EventStatusPublished, time.Now(), time.Now()))

	repo := NewEventRepository(db)
	events, total, err := repo.ListPublished(ctx, domain.PaginationParams{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 42, total)
	require.Len(t, events, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update builds only the given clauses", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		name := "Renamed"
		capacity := 25
		mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), name = \$1, capacity = \$2\s+WHERE id = \$3\s+RETURNING`).
			WithArgs("Renamed", 25, "ev-1").
			WillReturnRows(eventRow("ev-1", int64(25), 10, 0, domain.EventStatusPublished))

		repo := NewEventRepository(db)
		event, err := repo.Update(ctx, "ev-1", &name, nil, nil, &capacity)
		require.NoError(t, err)
		require.Equal(t, "ev-1", event.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields falls back to fetch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, owner_id, name`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1", nil, 0, 0, domain.EventStatusDraft))

		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, "ev-1", nil, nil, nil, nil)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		name := "Renamed"
		mock.ExpectQuery(`UPDATE events SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, "ev-missing", &name, nil, nil, nil)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Counters(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		args    []any
		run     func(repo domain.EventRepository) error
		rows    int64
		wantErr error
	}{
		{
			name:  "increment registered",
			query: `UPDATE events SET registered_count = registered_count \+ 1, updated_at = NOW\(\) WHERE id = \$1`,
			run: func(repo domain.EventRepository) error {
				return repo.IncrementRegistered(ctx, "ev-1")
			},
			rows: 1,
		},
		{
			name:  "decrement registered is guarded against underflow",
			query: `UPDATE events SET registered_count = registered_count - 1, updated_at = NOW\(\) WHERE id = \$1 AND registered_count > 0`,
			run: func(repo domain.EventRepository) error {
				return repo.DecrementRegistered(ctx, "ev-1")
			},
			rows: 1,
		},
		{
			name:  "decrement registered at zero reports not found",
			query: `UPDATE events SET registered_count = registered_count - 1`,
			run: func(repo domain.EventRepository) error {
				return repo.DecrementRegistered(ctx, "ev-1")
			},
			rows:    0,
			wantErr: domain.ErrNotFound,
		},
		{
			name:  "increment favorites",
			query: `UPDATE events SET favorites_count = favorites_count \+ 1, updated_at = NOW\(\) WHERE id = \$1`,
			run: func(repo domain.EventRepository) error {
				return repo.IncrementFavorites(ctx, "ev-1")
			},
			rows: 1,
		},
		{
			name:  "decrement favorites at zero reports not found",
			query: `UPDATE events SET favorites_count = favorites_count - 1, updated_at = NOW\(\) WHERE id = \$1 AND favorites_count > 0`,
			run: func(repo domain.EventRepository) error {
				return repo.DecrementFavorites(ctx, "ev-1")
			},
			rows:    0,
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(tt.query).
				WithArgs("ev-1").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			repo := NewEventRepository(db)
			err = tt.run(repo)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE events SET status = \$2, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs("ev-1", domain.EventStatusPublished).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEventRepository(db)
	require.NoError(t, repo.UpdateStatus(ctx, "ev-1", domain.EventStatusPublished))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
		WithArgs("ev-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEventRepository(db)
	require.ErrorIs(t, repo.Delete(ctx, "ev-missing"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func intPtr(v int) *int { return &v }
