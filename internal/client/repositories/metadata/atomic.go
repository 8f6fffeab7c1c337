package metadata

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/driverportal/internal/dbx"
)

// Atomic runs fn against a repository whose writes land together: either all
// of them are visible afterwards or none is.
type Atomic func(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

// SQLiteAtomic wraps each call in a database transaction.
func SQLiteAtomic(db *sql.DB) Atomic {
	return func(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return fn(ctx, NewSQLiteRepository(tx))
		})
	}
}

// Direct runs fn straight against repo. Memory repositories have nothing to
// roll back to, so this is what tests use.
func Direct(repo Repository) Atomic {
	return func(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
		return fn(ctx, repo)
	}
}
