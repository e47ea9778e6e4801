package booking

import (
	"context"
	"errors"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Target is a raw block location selection: a discriminator and three optional ids
type Target struct {
	Kind    models.LocationKind
	TableID *string
	ZoneID  *string
	FloorID *string
}

// Location is a checked selection of one hierarchy level
type Location struct {
	Kind models.LocationKind
	ID   uuid.UUID
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func fieldFor(kind models.LocationKind) string {
	switch kind {
	case models.LocationTable:
		return "mesa_id"
	case models.LocationZone:
		return "zona_id"
	default:
		return "piso_id"
	}
}

func checkKind(kind models.LocationKind) error {
	switch kind {
	case "", models.LocationTable, models.LocationZone, models.LocationFloor:
		return nil
	}
	return &ValidationError{Field: "tipo_ubicacion", Message: "must be one of mesa, zona, piso"}
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &ValidationError{Field: field, Message: "must be a valid UUID"}
	}
	return id, nil
}

// Check enforces that exactly one of the ids is set. Presence is counted before the ids
// are parsed, so stale values left by a form are caught even when malformed.
func (t Target) Check() (Location, error) {
	if err := checkKind(t.Kind); err != nil {
		return Location{}, err
	}

	var kind models.LocationKind
	var raw string
	set := 0
	if present(t.TableID) {
		set++
		kind, raw = models.LocationTable, *t.TableID
	}
	if present(t.ZoneID) {
		set++
		kind, raw = models.LocationZone, *t.ZoneID
	}
	if present(t.FloorID) {
		set++
		kind, raw = models.LocationFloor, *t.FloorID
	}

	if set != 1 {
		return Location{}, &LocationError{
			Reason:  AmbiguousOrMissing,
			Message: "exactly one of mesa_id, zona_id, piso_id must be set",
		}
	}
	if t.Kind != "" && t.Kind != kind {
		return Location{}, &LocationError{
			Reason:  Mismatch,
			Message: "tipo_ubicacion is " + string(t.Kind) + " but " + fieldFor(kind) + " is set",
		}
	}

	id, err := parseID(raw, fieldFor(kind))
	if err != nil {
		return Location{}, err
	}
	return Location{Kind: kind, ID: id}, nil
}

// ReservationTarget is a reservation's location selection: a table, a zone, or a
// table together with the zone it belongs to
type ReservationTarget struct {
	Kind    models.LocationKind
	TableID *string
	ZoneID  *string
	FloorID *string
}

// Check returns the table id (nil for zone-only reservations) and the zone id (nil
// when only a table was given)
func (t ReservationTarget) Check() (*uuid.UUID, *uuid.UUID, error) {
	if err := checkKind(t.Kind); err != nil {
		return nil, nil, err
	}

	hasTable, hasZone := present(t.TableID), present(t.ZoneID)
	switch {
	case present(t.FloorID):
		return nil, nil, &LocationError{
			Reason:  AmbiguousOrMissing,
			Message: "a reservation targets a table or a zone, not a floor",
		}
	case !hasTable && !hasZone:
		return nil, nil, &LocationError{
			Reason:  AmbiguousOrMissing,
			Message: "one of mesa_id or zona_id must be set",
		}
	}

	switch t.Kind {
	case models.LocationTable:
		if !hasTable {
			return nil, nil, &LocationError{Reason: Mismatch, Message: "tipo_ubicacion is mesa but mesa_id is empty"}
		}
	case models.LocationZone:
		if hasTable {
			return nil, nil, &LocationError{Reason: Mismatch, Message: "tipo_ubicacion is zona but mesa_id is set"}
		}
	case models.LocationFloor:
		return nil, nil, &LocationError{
			Reason:  Mismatch,
			Message: "a reservation targets a table or a zone, not a floor",
		}
	}

	var tableID, zoneID *uuid.UUID
	if hasTable {
		id, err := parseID(*t.TableID, "mesa_id")
		if err != nil {
			return nil, nil, err
		}
		tableID = &id
	}
	if hasZone {
		id, err := parseID(*t.ZoneID, "zona_id")
		if err != nil {
			return nil, nil, err
		}
		zoneID = &id
	}
	return tableID, zoneID, nil
}

// Scope is the resolved set of tables an entry claims
type Scope struct {
	Location Location
	// Tables are the claimed table ids, sorted
	Tables []uuid.UUID
	// Zones are the zones covered in full by zone and floor targets, sorted
	Zones []uuid.UUID
	// HeldZone is the zone of a zone-only reservation. It collides with anything that
	// covers the whole zone even when no table is claimed.
	HeldZone *uuid.UUID
}

// Intersects reports whether two scopes compete for the same resource
func (s Scope) Intersects(o Scope) bool {
	if len(sharedIDs(s.Tables, o.Tables)) > 0 {
		return true
	}
	if s.HeldZone != nil && containsID(o.Zones, *s.HeldZone) {
		return true
	}
	if o.HeldZone != nil && containsID(s.Zones, *o.HeldZone) {
		return true
	}
	return false
}

// LockKeys returns the ids writers of this scope serialize on
func (s Scope) LockKeys() []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(s.Tables)+len(s.Zones)+1)
	keys = append(keys, s.Tables...)
	keys = append(keys, s.Zones...)
	if s.HeldZone != nil && !containsID(s.Zones, *s.HeldZone) {
		keys = append(keys, *s.HeldZone)
	}
	return keys
}

// Resolver expands locations into scopes against the hierarchy store
type Resolver struct {
	floors repository.FloorRepository
	zones  repository.ZoneRepository
	tables repository.TableRepository
	// exclusiveZones makes zone-only reservations claim every table of their zone
	exclusiveZones bool
}

// NewResolver creates a resolver
func NewResolver(floors repository.FloorRepository, zones repository.ZoneRepository, tables repository.TableRepository, exclusiveZones bool) *Resolver {
	return &Resolver{floors: floors, zones: zones, tables: tables, exclusiveZones: exclusiveZones}
}

// Resolve expands a block location: a table to itself, a zone to all its tables, a
// floor to all tables of all its zones
func (r *Resolver) Resolve(ctx context.Context, loc Location) (Scope, error) {
	scope := Scope{Location: loc}

	switch loc.Kind {
	case models.LocationTable:
		if _, err := r.tables.GetByID(ctx, loc.ID); err != nil {
			return Scope{}, notFound(err, "mesa", loc.ID, "mesa_id")
		}
		scope.Tables = []uuid.UUID{loc.ID}

	case models.LocationZone:
		if _, err := r.zones.GetByID(ctx, loc.ID); err != nil {
			return Scope{}, notFound(err, "zona", loc.ID, "zona_id")
		}
		tables, err := r.tables.List(ctx, repository.TableFilter{ZoneID: &loc.ID})
		if err != nil {
			return Scope{}, err
		}
		scope.Tables = tableIDs(tables)
		scope.Zones = []uuid.UUID{loc.ID}

	case models.LocationFloor:
		if _, err := r.floors.GetByID(ctx, loc.ID); err != nil {
			return Scope{}, notFound(err, "piso", loc.ID, "piso_id")
		}
		zones, err := r.zones.List(ctx, repository.ZoneFilter{FloorID: &loc.ID})
		if err != nil {
			return Scope{}, err
		}
		tables, err := r.tables.List(ctx, repository.TableFilter{FloorID: &loc.ID})
		if err != nil {
			return Scope{}, err
		}
		scope.Tables = tableIDs(tables)
		for _, z := range zones {
			scope.Zones = append(scope.Zones, z.ID)
		}
		sortIDs(scope.Zones)

	default:
		return Scope{}, &ValidationError{Field: "tipo_ubicacion", Message: "must be one of mesa, zona, piso"}
	}

	return scope, nil
}

// ResolveReservation expands a reservation target. A table implies its zone; when both
// are given they must agree. The returned table is nil for zone-only reservations.
func (r *Resolver) ResolveReservation(ctx context.Context, tableID, zoneID *uuid.UUID) (Scope, *models.Table, error) {
	if tableID != nil {
		table, err := r.tables.GetByID(ctx, *tableID)
		if err != nil {
			return Scope{}, nil, notFound(err, "mesa", *tableID, "mesa_id")
		}
		if zoneID != nil && *zoneID != table.ZoneID {
			return Scope{}, nil, &LocationError{
				Reason:  Mismatch,
				Message: "mesa_id does not belong to zona_id",
			}
		}
		if _, err := r.zones.GetByID(ctx, table.ZoneID); err != nil {
			return Scope{}, nil, notFound(err, "zona", table.ZoneID, "zona_id")
		}
		return Scope{
			Location: Location{Kind: models.LocationTable, ID: table.ID},
			Tables:   []uuid.UUID{table.ID},
		}, table, nil
	}

	if _, err := r.zones.GetByID(ctx, *zoneID); err != nil {
		return Scope{}, nil, notFound(err, "zona", *zoneID, "zona_id")
	}
	zone := *zoneID
	scope := Scope{
		Location: Location{Kind: models.LocationZone, ID: zone},
		HeldZone: &zone,
	}
	if r.exclusiveZones {
		tables, err := r.tables.List(ctx, repository.TableFilter{ZoneID: &zone})
		if err != nil {
			return Scope{}, nil, err
		}
		scope.Tables = tableIDs(tables)
	}
	return scope, nil, nil
}

// scopeOfReservation resolves a stored reservation. Missing targets yield an empty scope.
func (r *Resolver) scopeOfReservation(ctx context.Context, res *models.Reservation) (Scope, error) {
	if res.TableID != nil {
		scope, _, err := r.ResolveReservation(ctx, res.TableID, nil)
		return tolerateMissing(scope, err)
	}
	zoneID := res.ZoneID
	scope, _, err := r.ResolveReservation(ctx, nil, &zoneID)
	return tolerateMissing(scope, err)
}

// scopeOfBlock resolves a stored block. Missing targets yield an empty scope.
func (r *Resolver) scopeOfBlock(ctx context.Context, block *models.Block) (Scope, error) {
	scope, err := r.Resolve(ctx, blockLocation(block))
	return tolerateMissing(scope, err)
}

func tolerateMissing(scope Scope, err error) (Scope, error) {
	var nf *NotFoundError
	var le *LocationError
	if errors.As(err, &nf) || errors.As(err, &le) {
		return Scope{}, nil
	}
	return scope, err
}

func blockLocation(block *models.Block) Location {
	switch {
	case block.TableID != nil:
		return Location{Kind: models.LocationTable, ID: *block.TableID}
	case block.ZoneID != nil:
		return Location{Kind: models.LocationZone, ID: *block.ZoneID}
	case block.FloorID != nil:
		return Location{Kind: models.LocationFloor, ID: *block.FloorID}
	}
	return Location{}
}

func notFound(err error, entity string, id uuid.UUID, field string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id.String(), Field: field}
	}
	return err
}

func tableIDs(tables []models.Table) []uuid.UUID {
	ids := make([]uuid.UUID, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

// sharedIDs intersects two sorted id slices
func sharedIDs(a, b []uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		as, bs := a[i].String(), b[j].String()
		switch {
		case as == bs:
			out = append(out, a[i])
			i++
			j++
		case as < bs:
			i++
		default:
			j++
		}
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
