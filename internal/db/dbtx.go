package db

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by repositories, so the same
// queries run standalone or inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
