package booking

import (
	"context"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"sort"
	"time"

	"github.com/google/uuid"
)

// EntryKind distinguishes reservations from blocks in conflict reports
type EntryKind string

const (
	KindReservation EntryKind = "reserva"
	KindBlock       EntryKind = "bloqueo"
)

// Entry is a reservation or block reduced to what conflict detection needs:
// a half-open window [Start, End) over a resolved scope
type Entry struct {
	Kind   EntryKind
	ID     uuid.UUID
	Status string
	Start  time.Time
	End    time.Time
	Label  string
	Scope  Scope
}

// Conflict describes an existing entry that collides with a candidate
type Conflict struct {
	Kind     EntryKind   `json:"tipo"`
	ID       uuid.UUID   `json:"id"`
	Status   string      `json:"estado"`
	StartsAt time.Time   `json:"inicio"`
	EndsAt   time.Time   `json:"fin"`
	Location string      `json:"ubicacion"`
	Tables   []uuid.UUID `json:"mesas,omitempty"`
}

// Overlaps applies the half-open interval rule
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflicts returns the entries of existing that overlap candidate in time and
// compete for its scope, ordered by start. The candidate itself is skipped.
func FindConflicts(candidate Entry, existing []Entry) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, e := range existing {
		if e.Kind == candidate.Kind && e.ID == candidate.ID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, e.Start, e.End) {
			continue
		}
		if !candidate.Scope.Intersects(e.Scope) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:     e.Kind,
			ID:       e.ID,
			Status:   e.Status,
			StartsAt: e.Start,
			EndsAt:   e.End,
			Location: e.Label,
			Tables:   sharedIDs(candidate.Scope.Tables, e.Scope.Tables),
		})
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if !conflicts[i].StartsAt.Equal(conflicts[j].StartsAt) {
			return conflicts[i].StartsAt.Before(conflicts[j].StartsAt)
		}
		return conflicts[i].ID.String() < conflicts[j].ID.String()
	})
	return conflicts
}

// Detector loads the live entries around a candidate and finds its conflicts. It must
// be called inside the transaction that holds the candidate's scope lock so it reads
// the latest committed state.
type Detector struct {
	reservations repository.ReservationRepository
	blocks       repository.BlockRepository
	resolver     *Resolver
}

// NewDetector creates a conflict detector
func NewDetector(reservations repository.ReservationRepository, blocks repository.BlockRepository, resolver *Resolver) *Detector {
	return &Detector{reservations: reservations, blocks: blocks, resolver: resolver}
}

// Find returns the conflicts of candidate, ordered by start
func (d *Detector) Find(ctx context.Context, candidate Entry) ([]Conflict, error) {
	reservations, err := d.reservations.ListLive(ctx, candidate.Start, candidate.End)
	if err != nil {
		return nil, err
	}
	blocks, err := d.blocks.ListLive(ctx, candidate.Start, candidate.End)
	if err != nil {
		return nil, err
	}

	existing := make([]Entry, 0, len(reservations)+len(blocks))
	for i := range reservations {
		entry, err := d.reservationEntry(ctx, &reservations[i])
		if err != nil {
			return nil, err
		}
		existing = append(existing, entry)
	}
	for i := range blocks {
		entry, err := d.blockEntry(ctx, &blocks[i])
		if err != nil {
			return nil, err
		}
		existing = append(existing, entry)
	}

	return FindConflicts(candidate, existing), nil
}

func (d *Detector) reservationEntry(ctx context.Context, res *models.Reservation) (Entry, error) {
	scope, err := d.resolver.scopeOfReservation(ctx, res)
	if err != nil {
		return Entry{}, err
	}
	return ReservationEntry(res, scope), nil
}

func (d *Detector) blockEntry(ctx context.Context, block *models.Block) (Entry, error) {
	scope, err := d.resolver.scopeOfBlock(ctx, block)
	if err != nil {
		return Entry{}, err
	}
	return BlockEntry(block, scope), nil
}

// ReservationEntry builds the conflict entry of a reservation
func ReservationEntry(res *models.Reservation, scope Scope) Entry {
	return Entry{
		Kind:   KindReservation,
		ID:     res.ID,
		Status: string(res.Status),
		Start:  res.StartsAt,
		End:    res.EndsAt,
		Label:  res.Location,
		Scope:  scope,
	}
}

// BlockEntry builds the conflict entry of a block
func BlockEntry(block *models.Block, scope Scope) Entry {
	return Entry{
		Kind:   KindBlock,
		ID:     block.ID,
		Status: string(block.Status),
		Start:  block.StartsAt,
		End:    block.EndsAt,
		Label:  block.Location,
		Scope:  scope,
	}
}
