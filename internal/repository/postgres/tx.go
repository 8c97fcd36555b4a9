package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gatherly/internal/domain"
)

// Queryer is the subset of database/sql used by the repositories. Both
// *sql.DB and *sql.Tx satisfy it, so the same repository code runs inside
// and outside an atomic unit.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// querier returns the transaction carried by ctx, or db when there is none.
func querier(ctx context.Context, db *sql.DB) Queryer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type atomicRunner struct {
	DB *sql.DB
}

// NewAtomicRunner returns a domain.Atomic backed by database/sql
// transactions. Repositories created over the same *sql.DB participate in
// the transaction through the context passed to fn.
func NewAtomicRunner(db *sql.DB) domain.Atomic {
	return &atomicRunner{DB: db}
}

func (a *atomicRunner) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return domain.ErrNestedAtomic
	}
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTxFailed, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrTxFailed, err)
	}
	return nil
}
