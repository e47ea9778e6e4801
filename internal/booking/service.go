// Package booking implements the reservation and block engine: window validation,
// location resolution, conflict detection and the two lifecycles.
package booking

import (
	"context"
	"errors"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"log"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now implements Clock
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time { return f() }

// Repositories groups the stores the engine works against
type Repositories struct {
	Tx           repository.Transactor
	Floors       repository.FloorRepository
	Zones        repository.ZoneRepository
	Tables       repository.TableRepository
	Reservations repository.ReservationRepository
	Blocks       repository.BlockRepository
	AuditLogs    repository.AuditLogRepository
}

// Options tune the engine
type Options struct {
	// Location is the restaurant timezone; UTC when nil
	Location *time.Location
	// ExclusiveZones makes zone-only reservations claim every table of their zone
	ExclusiveZones bool
	// DefaultReservationMinutes applies when a reservation omits its duration
	DefaultReservationMinutes int
	Clock                     Clock
	Publisher                 events.Publisher
}

// Service runs every reservation and block operation as one atomic unit: validate,
// resolve, lock the scope, detect conflicts, persist, audit. Events go out after commit.
type Service struct {
	repos          Repositories
	resolver       *Resolver
	detector       *Detector
	clock          Clock
	loc            *time.Location
	defaultMinutes int
	publisher      events.Publisher
}

// NewService creates a booking service
func NewService(repos Repositories, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultReservationMinutes <= 0 {
		opts.DefaultReservationMinutes = 120
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}

	resolver := NewResolver(repos.Floors, repos.Zones, repos.Tables, opts.ExclusiveZones)
	return &Service{
		repos:          repos,
		resolver:       resolver,
		detector:       NewDetector(repos.Reservations, repos.Blocks, resolver),
		clock:          opts.Clock,
		loc:            opts.Location,
		defaultMinutes: opts.DefaultReservationMinutes,
		publisher:      opts.Publisher,
	}
}

// Location returns the restaurant timezone
func (s *Service) Location() *time.Location {
	return s.loc
}

// now returns the current instant in the restaurant timezone
func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// outbox collects events raised inside a transaction until it commits
type outbox struct {
	events []events.Event
}

func (o *outbox) add(e events.Event) {
	o.events = append(o.events, e)
}

func (s *Service) flush(ctx context.Context, o *outbox) {
	for _, e := range o.events {
		if err := s.publisher.Publish(ctx, e); err != nil {
			log.Printf("booking: failed to publish %s for %s: %v", e.RoutingKey, e.EntityID, err)
		}
	}
}

// inScope runs fn in a transaction holding the scope lock
func (s *Service) inScope(ctx context.Context, fn func(ctx context.Context) error) error {
	return wrapStoreError(s.repos.Tx.Transaction(ctx, fn))
}

func (s *Service) lock(ctx context.Context, scope Scope) error {
	return s.repos.Tx.LockScope(ctx, scope.LockKeys())
}

func (s *Service) audit(ctx context.Context, entity string, id uuid.UUID, action models.AuditAction, from, to, reason string, actor *uuid.UUID) error {
	return s.repos.AuditLogs.Create(ctx, &models.AuditLog{
		EntityType: entity,
		EntityID:   id,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		UserID:     actor,
		CreatedAt:  s.clock.Now(),
	})
}

func (s *Service) lifecycleEvent(prefix string, action models.AuditAction, id uuid.UUID, from, to, reason string) events.Event {
	return events.Event{
		RoutingKey: prefix + string(action),
		EntityID:   id.String(),
		Status:     to,
		Previous:   from,
		Reason:     reason,
		OccurredAt: s.clock.Now(),
	}
}

// setTableStatus writes a table estado and queues the change event when it differs
func (s *Service) setTableStatus(ctx context.Context, o *outbox, table *models.Table, status models.TableStatus, source string) error {
	if table.Status == status {
		return nil
	}
	if err := s.repos.Tables.UpdateStatus(ctx, table.ID, status); err != nil {
		return err
	}
	o.add(events.Event{
		RoutingKey: events.TableStatusChanged,
		EntityID:   table.ID.String(),
		Status:     string(status),
		Previous:   string(table.Status),
		Source:     source,
		OccurredAt: s.clock.Now(),
	})
	table.Status = status
	return nil
}

// withdrawTables puts every table of a scope out of service for an active block
func (s *Service) withdrawTables(ctx context.Context, o *outbox, ids []uuid.UUID, block *models.Block) error {
	status := withdrawnStatus(block.Type)
	for _, id := range ids {
		table, err := s.repos.Tables.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.setTableStatus(ctx, o, table, status, "bloqueo:"+block.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

// restoreTables recomputes estado for tables a block or reservation released. Only
// tables still in the status the engine imposed are touched; waiter-set statuses win.
// A table stays withdrawn while another active block covers it, becomes reservada
// while a confirmed reservation on it covers now, and disponible otherwise.
func (s *Service) restoreTables(ctx context.Context, o *outbox, ids []uuid.UUID, releasedBy uuid.UUID, source string, managed func(models.TableStatus) bool) error {
	if len(ids) == 0 {
		return nil
	}

	active := models.BlockActive
	blocks, err := s.repos.Blocks.List(ctx, repository.BlockFilter{Status: &active})
	if err != nil {
		return err
	}
	covering := make(map[uuid.UUID]models.BlockType)
	for i := range blocks {
		if blocks[i].ID == releasedBy {
			continue
		}
		scope, err := s.resolver.scopeOfBlock(ctx, &blocks[i])
		if err != nil {
			return err
		}
		for _, t := range scope.Tables {
			covering[t] = blocks[i].Type
		}
	}

	now := s.now()
	live, err := s.repos.Reservations.ListLive(ctx, now, now.Add(time.Nanosecond))
	if err != nil {
		return err
	}
	reserved := make(map[uuid.UUID]bool)
	for _, r := range live {
		if r.ID != releasedBy && r.Status == models.ReservationConfirmed && r.TableID != nil {
			reserved[*r.TableID] = true
		}
	}

	for _, id := range ids {
		table, err := s.repos.Tables.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return err
		}
		if !managed(table.Status) {
			continue
		}

		next := models.TableAvailable
		if t, ok := covering[id]; ok {
			next = withdrawnStatus(t)
		} else if reserved[id] {
			next = models.TableReserved
		}
		if err := s.setTableStatus(ctx, o, table, next, source); err != nil {
			return err
		}
	}
	return nil
}

func withdrawnManaged(status models.TableStatus) bool {
	return status.IsWithdrawn()
}

func reservedManaged(status models.TableStatus) bool {
	return status == models.TableReserved
}
