package domain

import "context"

// Atomic runs a function as a single unit of work. All repository calls made
// with the context passed to fn share one transaction: if fn returns an
// error, every write is rolled back and the error propagates unchanged; if
// fn returns nil, the writes commit together. Begin/commit failures are
// reported wrapped in ErrTxFailed.
//
// Nesting is not supported: calling RunAtomic from inside fn returns
// ErrNestedAtomic.
type Atomic interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}
