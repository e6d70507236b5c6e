// Package repo contains all database access logic for the itinerary API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Stores bundles the repositories bound to one database handle. Inside a
// transaction every store sees and produces the same uncommitted state, which
// is what lets a reorder plus its travel-time rewrites commit as one unit.
type Stores struct {
	Trips   TripRepo
	Stops   StopRepo
	Members TripMemberRepo
}

// NewStores builds a Stores bundle over the given handle.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewStores(h db) Stores {
	return Stores{
		Trips:   NewTripRepo(h),
		Stops:   NewStopRepo(h),
		Members: NewTripMemberRepo(h),
	}
}

// TxRunner runs a function inside a single database transaction.
// The service layer depends on this interface so structural operations and
// their recalculation writes commit atomically; unit tests substitute a fake
// that hands the function in-memory stores.
type TxRunner interface {
	// InTx begins a transaction, calls fn with stores bound to it, and
	// commits when fn returns nil. Any error from fn (or the commit) rolls
	// the whole transaction back and is returned to the caller.
	InTx(ctx context.Context, fn func(s Stores) error) error
}

// pgTxRunner is the pgxpool-backed TxRunner used in production.
type pgTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constructs a TxRunner over the given connection pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgTxRunner{pool: pool}
}

func (r *pgTxRunner) InTx(ctx context.Context, fn func(s Stores) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TxRunner.InTx: begin: %w", err)
	}
	// Rollback after a successful commit is a harmless no-op.
	defer tx.Rollback(ctx)

	if err := fn(NewStores(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TxRunner.InTx: commit: %w", err)
	}
	return nil
}
