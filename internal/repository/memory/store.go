// Package memory provides an in-process implementation of every repository. It backs
// the engine when no database is configured and in handler tests.
package memory

import (
	"context"
	"errors"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type txKey struct{}

type row[T any] struct {
	value T
	seq   int64
}

// Store holds all entities in maps guarded by a single lock. A transaction holds the
// lock for its whole duration and rolls back to a snapshot when fn fails.
type Store struct {
	mu          sync.RWMutex
	writer      chan struct{}
	lockTimeout time.Duration
	seq         int64

	floors       map[uuid.UUID]row[models.Floor]
	zones        map[uuid.UUID]row[models.Zone]
	tables       map[uuid.UUID]row[models.Table]
	reservations map[uuid.UUID]row[models.Reservation]
	blocks       map[uuid.UUID]row[models.Block]
	users        map[uuid.UUID]row[models.User]
	audit        []models.AuditLog
}

// NewStore creates an empty store. Transactions wait at most lockTimeout for the
// writer slot before failing with repository.ErrLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		writer:       make(chan struct{}, 1),
		lockTimeout:  lockTimeout,
		floors:       make(map[uuid.UUID]row[models.Floor]),
		zones:        make(map[uuid.UUID]row[models.Zone]),
		tables:       make(map[uuid.UUID]row[models.Table]),
		reservations: make(map[uuid.UUID]row[models.Reservation]),
		blocks:       make(map[uuid.UUID]row[models.Block]),
		users:        make(map[uuid.UUID]row[models.User]),
	}
}

// Repositories

func (s *Store) Floors() repository.FloorRepository             { return &floorRepository{s} }
func (s *Store) Zones() repository.ZoneRepository               { return &zoneRepository{s} }
func (s *Store) Tables() repository.TableRepository             { return &tableRepository{s} }
func (s *Store) Reservations() repository.ReservationRepository { return &reservationRepository{s} }
func (s *Store) Blocks() repository.BlockRepository             { return &blockRepository{s} }
func (s *Store) Users() repository.UserRepository               { return &userRepository{s} }
func (s *Store) AuditLogs() repository.AuditLogRepository       { return &auditLogRepository{s} }

// Transaction implements repository.Transactor
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case s.writer <- struct{}{}:
	case <-timer.C:
		return repository.ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.writer }()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// LockScope implements repository.Transactor. The transaction already serializes
// every writer, so there is nothing further to lock.
func (s *Store) LockScope(ctx context.Context, _ []uuid.UUID) error {
	if !inTx(ctx) {
		return errors.New("lock scope: no transaction in context")
	}
	return nil
}

// Ping implements repository.Transactor
func (s *Store) Ping(context.Context) error { return nil }

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// read and write take the store lock unless ctx belongs to a running transaction,
// which already holds it exclusively
func (s *Store) read(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) write(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type snapshot struct {
	floors       map[uuid.UUID]row[models.Floor]
	zones        map[uuid.UUID]row[models.Zone]
	tables       map[uuid.UUID]row[models.Table]
	reservations map[uuid.UUID]row[models.Reservation]
	blocks       map[uuid.UUID]row[models.Block]
	users        map[uuid.UUID]row[models.User]
	audit        int
	seq          int64
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		floors:       cloneMap(s.floors),
		zones:        cloneMap(s.zones),
		tables:       cloneMap(s.tables),
		reservations: cloneMap(s.reservations),
		blocks:       cloneMap(s.blocks),
		users:        cloneMap(s.users),
		audit:        len(s.audit),
		seq:          s.seq,
	}
}

func (s *Store) restore(snap snapshot) {
	s.floors = snap.floors
	s.zones = snap.zones
	s.tables = snap.tables
	s.reservations = snap.reservations
	s.blocks = snap.blocks
	s.users = snap.users
	s.audit = s.audit[:snap.audit]
	s.seq = snap.seq
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// page applies offset then limit
func page[T any](items []T, limit, offset *int) []T {
	if offset != nil {
		if *offset >= len(items) {
			return items[:0]
		}
		items = items[*offset:]
	}
	if limit != nil && *limit < len(items) {
		items = items[:*limit]
	}
	return items
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
