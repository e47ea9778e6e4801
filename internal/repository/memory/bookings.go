package memory

import (
	"context"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

type reservationRepository struct{ s *Store }

func (r *reservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	defer r.s.write(ctx)()

	if err := r.check(res); err != nil {
		return err
	}

	now := time.Now()
	res.ID = uuid.New()
	res.CreatedAt = now
	res.UpdatedAt = now
	res.Location = r.label(res)
	r.s.reservations[res.ID] = row[models.Reservation]{value: *res, seq: r.s.nextSeq()}
	return nil
}

func (r *reservationRepository) Update(ctx context.Context, res *models.Reservation) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.reservations[res.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.check(res); err != nil {
		return err
	}

	res.CreatedAt = existing.value.CreatedAt
	res.UpdatedAt = time.Now()
	res.Location = r.label(res)
	existing.value = *res
	r.s.reservations[res.ID] = existing
	return nil
}

func (r *reservationRepository) check(res *models.Reservation) error {
	if _, ok := r.s.zones[res.ZoneID]; !ok {
		return repository.ErrNotFound
	}
	if res.TableID != nil {
		if _, ok := r.s.tables[*res.TableID]; !ok {
			return repository.ErrNotFound
		}
	}
	if !res.EndsAt.After(res.StartsAt) {
		return repository.ErrConflict
	}
	return nil
}

func (r *reservationRepository) label(res *models.Reservation) string {
	if res.TableID != nil {
		return r.s.tableLabel(*res.TableID)
	}
	return r.s.zoneLabel(res.ZoneID)
}

func (r *reservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	defer r.s.read(ctx)()

	rw, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res := rw.value
	res.Location = r.label(&res)
	return &res, nil
}

// GetForUpdate is GetByID: a transaction already holds the whole store exclusively
func (r *reservationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *reservationRepository) List(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error) {
	defer r.s.read(ctx)()

	rows := make([]row[models.Reservation], 0)
	for _, rw := range r.s.reservations {
		v := rw.value
		v.Location = r.label(&v)
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && v.Type != *filter.Type {
			continue
		}
		if filter.ZoneID != nil && v.ZoneID != *filter.ZoneID {
			continue
		}
		if filter.TableID != nil && (v.TableID == nil || *v.TableID != *filter.TableID) {
			continue
		}
		if filter.From != nil && !v.EndsAt.After(*filter.From) {
			continue
		}
		if filter.To != nil && !v.StartsAt.Before(*filter.To) {
			continue
		}
		if filter.Location != nil && !containsFold(v.Location, *filter.Location) {
			continue
		}
		rows = append(rows, row[models.Reservation]{value: v, seq: rw.seq})
	}

	sortRows(rows, filter.HasDateRange(), func(v models.Reservation) (time.Time, time.Time) {
		return v.StartsAt, v.CreatedAt
	})

	out := make([]models.Reservation, len(rows))
	for i := range rows {
		out[i] = rows[i].value
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *reservationRepository) ListLive(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	defer r.s.read(ctx)()

	out := make([]models.Reservation, 0)
	for _, rw := range r.s.reservations {
		v := rw.value
		if v.Status.IsLive() && v.StartsAt.Before(to) && from.Before(v.EndsAt) {
			v.Location = r.label(&v)
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *reservationRepository) CountLiveByLocation(ctx context.Context, kind models.LocationKind, id uuid.UUID) (int, error) {
	defer r.s.read(ctx)()

	count := 0
	for _, rw := range r.s.reservations {
		v := rw.value
		if !v.Status.IsLive() {
			continue
		}
		switch kind {
		case models.LocationTable:
			if v.TableID != nil && *v.TableID == id {
				count++
			}
		case models.LocationZone:
			if v.ZoneID == id {
				count++
			}
		case models.LocationFloor:
			if z, ok := r.s.zones[v.ZoneID]; ok && z.value.FloorID == id {
				count++
			}
		default:
			return 0, fmt.Errorf("unknown location kind %q", kind)
		}
	}
	return count, nil
}

type blockRepository struct{ s *Store }

func (r *blockRepository) Create(ctx context.Context, block *models.Block) error {
	defer r.s.write(ctx)()

	if err := r.check(block); err != nil {
		return err
	}

	now := time.Now()
	block.ID = uuid.New()
	block.CreatedAt = now
	block.UpdatedAt = now
	block.Location = r.label(block)
	block.ComputeDuration()
	r.s.blocks[block.ID] = row[models.Block]{value: *block, seq: r.s.nextSeq()}
	return nil
}

func (r *blockRepository) Update(ctx context.Context, block *models.Block) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.blocks[block.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.check(block); err != nil {
		return err
	}

	block.CreatedAt = existing.value.CreatedAt
	block.UpdatedAt = time.Now()
	block.Location = r.label(block)
	block.ComputeDuration()
	existing.value = *block
	r.s.blocks[block.ID] = existing
	return nil
}

// check enforces exactly one location reference, its existence and the window order
func (r *blockRepository) check(block *models.Block) error {
	set := 0
	if block.TableID != nil {
		set++
		if _, ok := r.s.tables[*block.TableID]; !ok {
			return repository.ErrNotFound
		}
	}
	if block.ZoneID != nil {
		set++
		if _, ok := r.s.zones[*block.ZoneID]; !ok {
			return repository.ErrNotFound
		}
	}
	if block.FloorID != nil {
		set++
		if _, ok := r.s.floors[*block.FloorID]; !ok {
			return repository.ErrNotFound
		}
	}
	if set != 1 || !block.EndsAt.After(block.StartsAt) {
		return repository.ErrConflict
	}
	return nil
}

func (r *blockRepository) label(block *models.Block) string {
	switch {
	case block.TableID != nil:
		return r.s.tableLabel(*block.TableID)
	case block.ZoneID != nil:
		return r.s.zoneLabel(*block.ZoneID)
	case block.FloorID != nil:
		return r.s.floorLabel(*block.FloorID)
	}
	return ""
}

// covers reports whether the block targets the zone, one of its tables, or its floor
func (r *blockRepository) covers(block *models.Block, zoneID uuid.UUID) bool {
	switch {
	case block.ZoneID != nil:
		return *block.ZoneID == zoneID
	case block.TableID != nil:
		t, ok := r.s.tables[*block.TableID]
		return ok && t.value.ZoneID == zoneID
	case block.FloorID != nil:
		z, ok := r.s.zones[zoneID]
		return ok && z.value.FloorID == *block.FloorID
	}
	return false
}

func (r *blockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	defer r.s.read(ctx)()

	rw, ok := r.s.blocks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	block := rw.value
	block.Location = r.label(&block)
	block.ComputeDuration()
	return &block, nil
}

// GetForUpdate is GetByID: a transaction already holds the whole store exclusively
func (r *blockRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	return r.GetByID(ctx, id)
}

func (r *blockRepository) List(ctx context.Context, filter repository.BlockFilter) ([]models.Block, error) {
	defer r.s.read(ctx)()

	rows := make([]row[models.Block], 0)
	for _, rw := range r.s.blocks {
		v := rw.value
		v.Location = r.label(&v)
		v.ComputeDuration()
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && v.Type != *filter.Type {
			continue
		}
		if filter.ZoneID != nil && !r.covers(&v, *filter.ZoneID) {
			continue
		}
		if filter.From != nil && !v.EndsAt.After(*filter.From) {
			continue
		}
		if filter.To != nil && !v.StartsAt.Before(*filter.To) {
			continue
		}
		if filter.EndsBy != nil && v.EndsAt.After(*filter.EndsBy) {
			continue
		}
		if filter.Location != nil && !containsFold(v.Location, *filter.Location) {
			continue
		}
		rows = append(rows, row[models.Block]{value: v, seq: rw.seq})
	}

	sortRows(rows, filter.HasDateRange(), func(v models.Block) (time.Time, time.Time) {
		return v.StartsAt, v.CreatedAt
	})

	out := make([]models.Block, len(rows))
	for i := range rows {
		out[i] = rows[i].value
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *blockRepository) ListLive(ctx context.Context, from, to time.Time) ([]models.Block, error) {
	defer r.s.read(ctx)()

	out := make([]models.Block, 0)
	for _, rw := range r.s.blocks {
		v := rw.value
		if v.Status.IsLive() && v.StartsAt.Before(to) && from.Before(v.EndsAt) {
			v.Location = r.label(&v)
			v.ComputeDuration()
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *blockRepository) CountLiveByLocation(ctx context.Context, kind models.LocationKind, id uuid.UUID) (int, error) {
	defer r.s.read(ctx)()

	count := 0
	for _, rw := range r.s.blocks {
		v := rw.value
		if !v.Status.IsLive() {
			continue
		}
		switch kind {
		case models.LocationTable:
			if v.TableID != nil && *v.TableID == id {
				count++
			}
		case models.LocationZone:
			if (v.ZoneID != nil && *v.ZoneID == id) || (v.TableID != nil && r.covers(&v, id)) {
				count++
			}
		case models.LocationFloor:
			if r.onFloor(&v, id) {
				count++
			}
		default:
			return 0, fmt.Errorf("unknown location kind %q", kind)
		}
	}
	return count, nil
}

func (r *blockRepository) onFloor(block *models.Block, floorID uuid.UUID) bool {
	switch {
	case block.FloorID != nil:
		return *block.FloorID == floorID
	case block.ZoneID != nil:
		z, ok := r.s.zones[*block.ZoneID]
		return ok && z.value.FloorID == floorID
	case block.TableID != nil:
		t, ok := r.s.tables[*block.TableID]
		if !ok {
			return false
		}
		z, ok := r.s.zones[t.value.ZoneID]
		return ok && z.value.FloorID == floorID
	}
	return false
}

// sortRows orders by start ascending for date-ranged listings, otherwise newest first.
// Insertion order breaks ties.
func sortRows[T any](rows []row[T], byStart bool, keys func(T) (start, created time.Time)) {
	sort.SliceStable(rows, func(i, j int) bool {
		si, ci := keys(rows[i].value)
		sj, cj := keys(rows[j].value)
		if byStart {
			if !si.Equal(sj) {
				return si.Before(sj)
			}
			return rows[i].seq < rows[j].seq
		}
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return rows[i].seq > rows[j].seq
	})
}
