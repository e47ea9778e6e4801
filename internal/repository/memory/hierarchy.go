package memory

import (
	"context"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type floorRepository struct{ s *Store }

func (r *floorRepository) Create(ctx context.Context, floor *models.Floor) error {
	defer r.s.write(ctx)()

	for _, f := range r.s.floors {
		if f.value.DeletedAt == nil && f.value.Name == floor.Name {
			return repository.ErrConflict
		}
	}

	now := time.Now()
	floor.ID = uuid.New()
	floor.CreatedAt = now
	floor.UpdatedAt = now
	r.s.floors[floor.ID] = row[models.Floor]{value: *floor, seq: r.s.nextSeq()}
	return nil
}

func (r *floorRepository) Update(ctx context.Context, floor *models.Floor) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.floors[floor.ID]
	if !ok || existing.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	for id, f := range r.s.floors {
		if id != floor.ID && f.value.DeletedAt == nil && f.value.Name == floor.Name {
			return repository.ErrConflict
		}
	}

	floor.CreatedAt = existing.value.CreatedAt
	floor.UpdatedAt = time.Now()
	existing.value = *floor
	r.s.floors[floor.ID] = existing
	return nil
}

func (r *floorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.floors[id]
	if !ok || existing.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	for _, z := range r.s.zones {
		if z.value.DeletedAt == nil && z.value.FloorID == id {
			return repository.ErrHasAssociatedRecords
		}
	}
	for _, b := range r.s.blocks {
		if b.value.Status.IsLive() && b.value.FloorID != nil && *b.value.FloorID == id {
			return repository.ErrHasAssociatedRecords
		}
	}

	now := time.Now()
	existing.value.DeletedAt = &now
	r.s.floors[id] = existing
	return nil
}

func (r *floorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Floor, error) {
	defer r.s.read(ctx)()

	f, ok := r.s.floors[id]
	if !ok || f.value.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	floor := f.value
	return &floor, nil
}

func (r *floorRepository) List(ctx context.Context, filter repository.FloorFilter) ([]models.Floor, error) {
	defer r.s.read(ctx)()

	floors := make([]models.Floor, 0)
	for _, f := range r.s.floors {
		v := f.value
		if v.DeletedAt != nil {
			continue
		}
		if filter.Active != nil && v.Active != *filter.Active {
			continue
		}
		if filter.Search != nil && !containsFold(v.Name, *filter.Search) {
			continue
		}
		floors = append(floors, v)
	}

	sort.Slice(floors, func(i, j int) bool {
		if floors[i].Order != floors[j].Order {
			return floors[i].Order < floors[j].Order
		}
		return floors[i].Name < floors[j].Name
	})
	return page(floors, filter.Limit, filter.Offset), nil
}

type zoneRepository struct{ s *Store }

func (r *zoneRepository) Create(ctx context.Context, zone *models.Zone) error {
	defer r.s.write(ctx)()

	if err := r.check(zone); err != nil {
		return err
	}

	now := time.Now()
	zone.ID = uuid.New()
	zone.CreatedAt = now
	zone.UpdatedAt = now
	r.s.zones[zone.ID] = row[models.Zone]{value: *zone, seq: r.s.nextSeq()}
	return nil
}

func (r *zoneRepository) Update(ctx context.Context, zone *models.Zone) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.zones[zone.ID]
	if !ok || existing.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	if err := r.check(zone); err != nil {
		return err
	}

	zone.CreatedAt = existing.value.CreatedAt
	zone.UpdatedAt = time.Now()
	existing.value = *zone
	r.s.zones[zone.ID] = existing
	return nil
}

// check enforces the parent reference and the per-floor unique name
func (r *zoneRepository) check(zone *models.Zone) error {
	f, ok := r.s.floors[zone.FloorID]
	if !ok || f.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	for id, z := range r.s.zones {
		if id != zone.ID && z.value.DeletedAt == nil &&
			z.value.FloorID == zone.FloorID && z.value.Name == zone.Name {
			return repository.ErrConflict
		}
	}
	return nil
}

func (r *zoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.zones[id]
	if !ok || existing.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	for _, t := range r.s.tables {
		if t.value.DeletedAt == nil && t.value.ZoneID == id {
			return repository.ErrHasAssociatedRecords
		}
	}
	for _, b := range r.s.blocks {
		if b.value.Status.IsLive() && b.value.ZoneID != nil && *b.value.ZoneID == id {
			return repository.ErrHasAssociatedRecords
		}
	}
	for _, res := range r.s.reservations {
		if res.value.Status.IsLive() && res.value.ZoneID == id {
			return repository.ErrHasAssociatedRecords
		}
	}

	now := time.Now()
	existing.value.DeletedAt = &now
	r.s.zones[id] = existing
	return nil
}

func (r *zoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	defer r.s.read(ctx)()

	z, ok := r.s.zones[id]
	if !ok || z.value.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	zone := z.value
	return &zone, nil
}

func (r *zoneRepository) List(ctx context.Context, filter repository.ZoneFilter) ([]models.Zone, error) {
	defer r.s.read(ctx)()

	zones := make([]models.Zone, 0)
	for _, z := range r.s.zones {
		v := z.value
		if v.DeletedAt != nil {
			continue
		}
		if filter.FloorID != nil && v.FloorID != *filter.FloorID {
			continue
		}
		if filter.Active != nil && v.Active != *filter.Active {
			continue
		}
		if filter.Search != nil && !containsFold(v.Name, *filter.Search) {
			continue
		}
		zones = append(zones, v)
	}

	sort.Slice(zones, func(i, j int) bool {
		if zones[i].Order != zones[j].Order {
			return zones[i].Order < zones[j].Order
		}
		return zones[i].Name < zones[j].Name
	})
	return page(zones, filter.Limit, filter.Offset), nil
}

type tableRepository struct{ s *Store }

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	defer r.s.write(ctx)()

	if err := r.check(table); err != nil {
		return err
	}
	if table.Status == "" {
		table.Status = models.TableAvailable
	}

	now := time.Now()
	table.ID = uuid.New()
	table.CreatedAt = now
	table.UpdatedAt = now
	r.s.tables[table.ID] = row[models.Table]{value: *table, seq: r.s.nextSeq()}
	return nil
}

func (r *tableRepository) Update(ctx context.Context, table *models.Table) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.tables[table.ID]
	if !ok || existing.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	if err := r.check(table); err != nil {
		return err
	}

	table.Status = existing.value.Status
	table.CreatedAt = existing.value.CreatedAt
	table.UpdatedAt = time.Now()
	existing.value = *table
	r.s.tables[table.ID] = existing
	return nil
}

// check enforces the parent reference and the per-zone unique number
func (r *tableRepository) check(table *models.Table) error {
	z, ok := r.s.zones[table.ZoneID]
	if !ok || z.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	for id, t := range r.s.tables {
		if id != table.ID && t.value.DeletedAt == nil &&
			t.value.ZoneID == table.ZoneID && t.value.Number == table.Number {
			return repository.ErrConflict
		}
	}
	return nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TableStatus) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.tables[id]
	if !ok || existing.value.DeletedAt != nil {
		return repository.ErrNotFound
	}

	existing.value.Status = status
	existing.value.UpdatedAt = time.Now()
	r.s.tables[id] = existing
	return nil
}

func (r *tableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.write(ctx)()

	existing, ok := r.s.tables[id]
	if !ok || existing.value.DeletedAt != nil {
		return repository.ErrNotFound
	}
	for _, res := range r.s.reservations {
		if res.value.Status.IsLive() && res.value.TableID != nil && *res.value.TableID == id {
			return repository.ErrHasAssociatedRecords
		}
	}
	for _, b := range r.s.blocks {
		if b.value.Status.IsLive() && b.value.TableID != nil && *b.value.TableID == id {
			return repository.ErrHasAssociatedRecords
		}
	}

	now := time.Now()
	existing.value.DeletedAt = &now
	r.s.tables[id] = existing
	return nil
}

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	defer r.s.read(ctx)()

	t, ok := r.s.tables[id]
	if !ok || t.value.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	table := t.value
	return &table, nil
}

func (r *tableRepository) List(ctx context.Context, filter repository.TableFilter) ([]models.Table, error) {
	defer r.s.read(ctx)()

	var wanted map[uuid.UUID]bool
	if filter.IDs != nil {
		wanted = make(map[uuid.UUID]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = true
		}
	}

	tables := make([]models.Table, 0)
	for _, t := range r.s.tables {
		v := t.value
		if v.DeletedAt != nil {
			continue
		}
		if filter.ZoneID != nil && v.ZoneID != *filter.ZoneID {
			continue
		}
		if filter.FloorID != nil {
			z, ok := r.s.zones[v.ZoneID]
			if !ok || z.value.DeletedAt != nil || z.value.FloorID != *filter.FloorID {
				continue
			}
		}
		if wanted != nil && !wanted[v.ID] {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if filter.Active != nil && v.Active != *filter.Active {
			continue
		}
		tables = append(tables, v)
	}

	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Number != tables[j].Number {
			return tables[i].Number < tables[j].Number
		}
		return r.s.tables[tables[i].ID].seq < r.s.tables[tables[j].ID].seq
	})
	return page(tables, filter.Limit, filter.Offset), nil
}

// tableLabel, zoneLabel and floorLabel render the display location of an entry.
// Soft-deleted targets still resolve so history keeps its labels.
func (s *Store) tableLabel(id uuid.UUID) string {
	if t, ok := s.tables[id]; ok {
		return "Mesa " + strconv.Itoa(t.value.Number)
	}
	return ""
}

func (s *Store) zoneLabel(id uuid.UUID) string {
	if z, ok := s.zones[id]; ok {
		return "Zona " + z.value.Name
	}
	return ""
}

func (s *Store) floorLabel(id uuid.UUID) string {
	if f, ok := s.floors[id]; ok {
		return "Piso " + f.value.Name
	}
	return ""
}
