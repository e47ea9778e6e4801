package postgres

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"floorkeeper/internal/repository"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

type transactor struct {
	repository.BaseRepository
	lockTimeout time.Duration
}

// NewTransactor creates a PostgreSQL transactor. Table scope locks are transaction-scoped
// advisory locks. Every lock a transaction waits for, row locks included, is bounded by
// lockTimeout.
func NewTransactor(db *sql.DB, lockTimeout time.Duration) repository.Transactor {
	return &transactor{
		BaseRepository: repository.NewBaseRepository(db),
		lockTimeout:    lockTimeout,
	}
}

// Transaction begins a transaction with lock_timeout set for its whole duration
func (t *transactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := repository.TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return t.BaseRepository.Transaction(ctx, func(ctx context.Context) error {
		tx, _ := repository.TxFromContext(ctx)
		timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, timeout); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
		return fn(ctx)
	})
}

func (t *transactor) LockScope(ctx context.Context, keys []uuid.UUID) error {
	tx, ok := repository.TxFromContext(ctx)
	if !ok {
		return errors.New("lock scope: no transaction in context")
	}
	if len(keys) == 0 {
		return nil
	}

	// Acquire in key order so two writers never wait on each other in a cycle
	lockKeys := make([]int64, 0, len(keys))
	seen := make(map[int64]bool, len(keys))
	for _, id := range keys {
		k := advisoryKey(id)
		if !seen[k] {
			seen[k] = true
			lockKeys = append(lockKeys, k)
		}
	}
	sort.Slice(lockKeys, func(i, j int) bool { return lockKeys[i] < lockKeys[j] })

	for _, k := range lockKeys {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", k); err != nil {
			return mapError(err)
		}
	}
	return nil
}

// advisoryKey folds a table or zone id into the int64 key space of pg advisory locks
func advisoryKey(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[:8]))
}
