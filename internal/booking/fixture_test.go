package booking_test

import (
	"context"
	"testing"
	"time"

	"floorkeeper/internal/booking"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository/memory"
	"floorkeeper/internal/testutil"

	"github.com/stretchr/testify/require"
)

var cst = time.FixedZone("CST", -6*3600)

// fixture is a restaurant with one floor, a terrace holding tables 5 and 6 and an
// interior zone holding table 1. The clock starts at 2026-11-20 12:00 CST.
type fixture struct {
	ctx    context.Context
	store  *memory.Store
	svc    *booking.Service
	events *events.Recorder
	now    time.Time

	floor    *models.Floor
	terrace  *models.Zone
	interior *models.Zone
	t5, t6   *models.Table
	t1       *models.Table
}

func newFixture(t *testing.T, exclusiveZones bool) *fixture {
	t.Helper()

	f := &fixture{
		ctx:    context.Background(),
		store:  memory.NewStore(time.Second),
		events: &events.Recorder{},
		now:    time.Date(2026, 11, 20, 12, 0, 0, 0, cst),
	}

	f.svc = booking.NewService(booking.Repositories{
		Tx:           f.store,
		Floors:       f.store.Floors(),
		Zones:        f.store.Zones(),
		Tables:       f.store.Tables(),
		Reservations: f.store.Reservations(),
		Blocks:       f.store.Blocks(),
		AuditLogs:    f.store.AuditLogs(),
	}, booking.Options{
		Location:       cst,
		ExclusiveZones: exclusiveZones,
		Clock:          booking.ClockFunc(func() time.Time { return f.now }),
		Publisher:      f.events,
	})

	f.floor = &models.Floor{Name: "Planta Baja", Active: true}
	require.NoError(t, f.store.Floors().Create(f.ctx, f.floor))

	f.terrace = &models.Zone{FloorID: f.floor.ID, Name: "Terraza", Type: models.ZoneTypeTerrace, Active: true}
	require.NoError(t, f.store.Zones().Create(f.ctx, f.terrace))
	f.interior = &models.Zone{FloorID: f.floor.ID, Name: "Interior", Type: models.ZoneTypeInterior, Active: true}
	require.NoError(t, f.store.Zones().Create(f.ctx, f.interior))

	f.t5 = f.table(t, f.terrace, 5)
	f.t6 = f.table(t, f.terrace, 6)
	f.t1 = f.table(t, f.interior, 1)
	return f
}

func (f *fixture) table(t *testing.T, zone *models.Zone, number int) *models.Table {
	t.Helper()
	table := &models.Table{ZoneID: zone.ID, Number: number, Capacity: 4, Active: true}
	require.NoError(t, f.store.Tables().Create(f.ctx, table))
	return table
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) tableStatus(t *testing.T, table *models.Table) models.TableStatus {
	t.Helper()
	got, err := f.store.Tables().GetByID(f.ctx, table.ID)
	require.NoError(t, err)
	return got.Status
}

func reservationAt(table *models.Table, date, clock string) *models.ReservationRequest {
	return &models.ReservationRequest{
		ClientName:      "Ana López",
		ClientPhone:     "+52 55 1234 5678",
		Date:            date,
		Time:            clock,
		DurationMinutes: 120,
		PartySize:       2,
		TableID:         testutil.String(table.ID.String()),
	}
}

func blockOn(kind models.LocationKind, id string, start, end string) *models.BlockRequest {
	req := &models.BlockRequest{
		Title:        "Evento privado",
		Type:         models.BlockEvent,
		StartsAt:     start,
		EndsAt:       end,
		LocationType: kind,
	}
	switch kind {
	case models.LocationTable:
		req.TableID = testutil.String(id)
	case models.LocationZone:
		req.ZoneID = testutil.String(id)
	case models.LocationFloor:
		req.FloorID = testutil.String(id)
	}
	return req
}
