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

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations \(event_id, user_id, status, created_at\)`).
					WithArgs("ev-1", "u1", domain.RegistrationStatusRegistered, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
			},
		},
		{
			name: "unique violation maps to already registered",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "registrations_event_id_user_id_key"})
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "other db errors pass through",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			reg := domain.NewRegistration("ev-1", "u1", time.Now())
			err = repo.Create(ctx, reg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "reg-1", reg.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_GetByEventAndUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		ts := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT id, event_id, user_id, status, created_at\s+FROM registrations\s+WHERE event_id = \$1 AND user_id = \$2`).
			WithArgs("ev-1", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "status", "created_at"}).
				AddRow("reg-1", "ev-1", "u1", domain.RegistrationStatusRegistered, ts))

		repo := NewRegistrationRepository(db)
		reg, err := repo.GetByEventAndUser(ctx, "ev-1", "u1")
		require.NoError(t, err)
		require.Equal(t, "reg-1", reg.ID)
		require.Equal(t, domain.RegistrationStatusRegistered, reg.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, user_id, status, created_at`).
			WithArgs("ev-1", "u1").
			WillReturnError(sql.ErrNoRows)

		repo := NewRegistrationRepository(db)
		_, err = repo.GetByEventAndUser(ctx, "ev-1", "u1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRegistrationRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM registrations WHERE event_id = \$1 AND user_id = \$2`).
			WithArgs("ev-1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewRegistrationRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1", "u1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row reports not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM registrations`).
			WithArgs("ev-1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewRegistrationRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "ev-1", "u1"), domain.ErrNotFound)
	})
}

func TestRegistrationRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, event_id, user_id, status, created_at\s+FROM registrations\s+WHERE user_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "status", "created_at"}).
			AddRow("reg-2", "ev-2", "u1", domain.RegistrationStatusRegistered, ts).
			AddRow("reg-1", "ev-1", "u1", domain.RegistrationStatusRegistered, ts.Add(-time.Hour)))

	repo := NewRegistrationRepository(db)
	regs, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	require.Equal(t, "ev-2", regs[0].EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_CountByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewRegistrationRepository(db)
	count, err := repo.CountByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
