// Package store defines the narrow data-access capability every workflow in
// this service is built on: filtered reads, inserts, filtered updates and
// deletes against a remote record store. The production implementation lives
// in internal/supabase; tests use the in-memory storetest implementation.
package store

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNoRows is reported by Select with Single set when no record matches.
// Absence is an expected outcome, not an upstream failure.
var ErrNoRows = errors.New("store: no matching row")

// Filters maps column names to predicate expressions ("eq.v", "ilike.%v%",
// or a raw "or=(...)" group). Multiple entries combine with logical AND.
type Filters map[string]string

// SelectOpts parameterizes a Select call.
type SelectOpts struct {
	// Columns is the projection, including embedded resources in the
	// "col,other(nested,cols)" form. Empty means "*".
	Columns string
	Filters Filters
	// Order is a "column.asc" / "column.desc" expression. Empty keeps store order.
	Order string
	// Limit caps the number of returned rows when positive.
	Limit int
	// Single requests exactly-one-or-none semantics. When set, dest receives
	// a single record and absence is reported as ErrNoRows.
	Single bool
}

// Store is the data-access capability consumed by the workflows. Each call is
// one bounded round trip to the remote store; there is no retrying, caching,
// or batching across calls, and any isolation guarantees come from the store
// itself.
//
// dest, when non-nil, receives the affected records (the store is asked to
// return representations). Pass nil to discard them.
type Store interface {
	Select(ctx context.Context, entity string, dest any, opts SelectOpts) error
	Insert(ctx context.Context, entity string, record any, dest any) error
	Update(ctx context.Context, entity string, patch any, filters Filters, dest any) error
	Delete(ctx context.Context, entity string, filters Filters, dest any) error

	// Upsert is an atomic conditional insert: when a record with the same
	// onConflict column value already exists, the write merges into it
	// instead of failing. This is the primitive that closes check-then-act
	// races like first-time cart creation.
	Upsert(ctx context.Context, entity string, record any, onConflict string, dest any) error
}
