package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherly/internal/domain"
)

const eventColumns = "id, owner_id, name, description, starts_at, capacity, registered_count, favorites_count, status, created_at, updated_at"

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, name, description, starts_at, capacity, registered_count, favorites_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, $8)
		RETURNING id
	`
	var capacity sql.NullInt64
	if e.Capacity != nil {
		capacity = sql.NullInt64{Int64: int64(*e.Capacity), Valid: true}
	}
	return querier(ctx, r.DB).QueryRowContext(ctx, query,
		e.OwnerID, e.Name, e.Description, e.StartsAt, capacity, e.Status, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var capacity sql.NullInt64
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.Name, &e.Description, &e.StartsAt,
		&capacity, &e.RegisteredCount, &e.FavoritesCount, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(querier(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetByIDForUpdate locks the event row until the surrounding transaction
// resolves. Concurrent registrations and favorite toggles on the same event
// serialize on this lock, so the capacity check and the counter update are
// race free.
func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	e, err := scanEvent(querier(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListPublished(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE status = $1`
	if err := querier(ctx, r.DB).QueryRowContext(ctx, countQuery, domain.EventStatusPublished).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1
		ORDER BY starts_at ASC
		LIMIT $2 OFFSET $3
	`
	events, err := r.list(ctx, query, domain.EventStatusPublished, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, ownerID)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update changes descriptive fields only. Counters and status have dedicated
// methods and are never touched here.
func (r *eventRepository) Update(ctx context.Context, eventID string, name, description *string, startsAt *time.Time, capacity *int) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if startsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("starts_at = $%d", n))
		args = append(args, *startsAt)
		n++
	}
	if capacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", n))
		args = append(args, *capacity)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns+`
	`, strings.Join(setClauses, ", "), n)
	e, err := scanEvent(querier(ctx, r.DB).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, eventID string, status domain.EventStatus) error {
	query := `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, eventID, status)
}

func (r *eventRepository) IncrementRegistered(ctx context.Context, eventID string) error {
	query := `UPDATE events SET registered_count = registered_count + 1, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, eventID)
}

// DecrementRegistered floors the counter at zero: the guard makes a decrement
// against an already-zero counter a no-op reported as ErrNotFound so the
// caller can flag the invariant violation.
func (r *eventRepository) DecrementRegistered(ctx context.Context, eventID string) error {
	query := `UPDATE events SET registered_count = registered_count - 1, updated_at = NOW() WHERE id = $1 AND registered_count > 0`
	return r.exec(ctx, query, eventID)
}

func (r *eventRepository) IncrementFavorites(ctx context.Context, eventID string) error {
	query := `UPDATE events SET favorites_count = favorites_count + 1, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, eventID)
}

func (r *eventRepository) DecrementFavorites(ctx context.Context, eventID string) error {
	query := `UPDATE events SET favorites_count = favorites_count - 1, updated_at = NOW() WHERE id = $1 AND favorites_count > 0`
	return r.exec(ctx, query, eventID)
}

func (r *eventRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := querier(ctx, r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	return r.exec(ctx, query, id)
}
