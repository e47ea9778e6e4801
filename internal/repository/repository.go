package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Transactor runs units of work atomically and serializes writers per table scope
type Transactor interface {
	// Transaction executes fn within a database transaction. Repository calls made with
	// the context handed to fn join the transaction. Nested calls reuse the outer one.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	// LockScope takes exclusive locks keyed by the given table and zone ids until the
	// surrounding transaction ends. It fails with ErrLockTimeout when a lock cannot be
	// acquired in time.
	LockScope(ctx context.Context, keys []uuid.UUID) error
	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// TxFromContext returns the transaction bound to ctx, if any
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// BaseRepository provides common functionality for all SQL repositories
type BaseRepository struct {
	db *sql.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sql.DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the database connection
func (r *BaseRepository) DB() *sql.DB {
	return r.db
}

// Conn returns the transaction bound to ctx, or the connection pool
func (r *BaseRepository) Conn(ctx context.Context) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Transaction implements the Transactor interface
func (r *BaseRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Ping checks the database connection
func (r *BaseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
