package repository

import (
	"context"
	"database/sql"
)

// Querier is the subset of database operations shared by *sql.DB and *sql.Tx,
// so repository reads can run either standalone or inside a transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
