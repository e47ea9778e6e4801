package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"floorkeeper/internal/repository/memory"
	"floorkeeper/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHierarchy(t *testing.T, s *memory.Store) (*models.Floor, *models.Zone, []*models.Table) {
	t.Helper()
	ctx := context.Background()

	floor := &models.Floor{Name: "Planta Baja", Active: true}
	require.NoError(t, s.Floors().Create(ctx, floor))

	zone := &models.Zone{FloorID: floor.ID, Name: "Terraza", Type: models.ZoneTypeTerrace, Active: true}
	require.NoError(t, s.Zones().Create(ctx, zone))

	var tables []*models.Table
	for i := 1; i <= 3; i++ {
		table := &models.Table{ZoneID: zone.ID, Number: i, Capacity: 4, Active: true}
		require.NoError(t, s.Tables().Create(ctx, table))
		tables = append(tables, table)
	}
	return floor, zone, tables
}

func TestStore_HierarchyConstraints(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	floor, zone, tables := seedHierarchy(t, s)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name:    "Error - Duplicate Floor Name",
			run:     func() error { return s.Floors().Create(ctx, &models.Floor{Name: "Planta Baja"}) },
			wantErr: repository.ErrConflict,
		},
		{
			name: "Error - Duplicate Table Number In Zone",
			run: func() error {
				return s.Tables().Create(ctx, &models.Table{ZoneID: zone.ID, Number: 1, Capacity: 2})
			},
			wantErr: repository.ErrConflict,
		},
		{
			name: "Error - Zone On Unknown Floor",
			run: func() error {
				return s.Zones().Create(ctx, &models.Zone{FloorID: uuid.New(), Name: "Bar"})
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name:    "Error - Delete Floor With Zones",
			run:     func() error { return s.Floors().Delete(ctx, floor.ID) },
			wantErr: repository.ErrHasAssociatedRecords,
		},
		{
			name:    "Error - Delete Zone With Tables",
			run:     func() error { return s.Zones().Delete(ctx, zone.ID) },
			wantErr: repository.ErrHasAssociatedRecords,
		},
		{
			name:    "Success - Delete Table",
			run:     func() error { return s.Tables().Delete(ctx, tables[2].ID) },
			wantErr: nil,
		},
		{
			name:    "Error - Deleted Table Is Gone",
			run:     func() error { _, err := s.Tables().GetByID(ctx, tables[2].ID); return err },
			wantErr: repository.ErrNotFound,
		},
		{
			name: "Success - Number Reusable After Delete",
			run: func() error {
				return s.Tables().Create(ctx, &models.Table{ZoneID: zone.ID, Number: 3, Capacity: 2})
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStore_TransactionRollback(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	_, _, tables := seedHierarchy(t, s)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.LockScope(ctx, []uuid.UUID{tables[0].ID}))
		require.NoError(t, s.Tables().UpdateStatus(ctx, tables[0].ID, models.TableOutOfOrder))
		require.NoError(t, s.AuditLogs().Create(ctx, &models.AuditLog{
			EntityType: models.EntityBlock, EntityID: tables[0].ID, Action: models.AuditActionActivate,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	table, err := s.Tables().GetByID(ctx, tables[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, table.Status)

	logs, err := s.AuditLogs().ListByEntity(ctx, models.EntityBlock, tables[0].ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestStore_LockTimeout(t *testing.T) {
	s := memory.NewStore(50 * time.Millisecond)
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Transaction(ctx, func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := s.Transaction(ctx, func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, repository.ErrLockTimeout)

	close(release)
	require.NoError(t, <-done)

	// The slot is free again
	require.NoError(t, s.Transaction(ctx, func(ctx context.Context) error { return nil }))
}

func TestStore_LockScopeOutsideTransaction(t *testing.T) {
	s := memory.NewStore(time.Second)
	require.Error(t, s.LockScope(context.Background(), []uuid.UUID{uuid.New()}))
}

func TestStore_ReservationListing(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	_, zone, tables := seedHierarchy(t, s)

	base := time.Date(2026, 11, 20, 19, 0, 0, 0, time.UTC)
	mk := func(offset time.Duration, table *models.Table, status models.ReservationStatus) *models.Reservation {
		res := &models.Reservation{
			ClientName: "Ana",
			Status:     status,
			Type:       models.ReservationNormal,
			ZoneID:     zone.ID,
			StartsAt:   base.Add(offset),
			EndsAt:     base.Add(offset + 2*time.Hour),
		}
		if table != nil {
			res.TableID = &table.ID
		}
		require.NoError(t, s.Reservations().Create(ctx, res))
		return res
	}

	late := mk(3*time.Hour, tables[0], models.ReservationPending)
	early := mk(0, tables[1], models.ReservationConfirmed)
	zoneOnly := mk(time.Hour, nil, models.ReservationCancelled)

	from := base.Add(-time.Hour)
	to := base.Add(24 * time.Hour)
	status := models.ReservationConfirmed
	mesa := "mesa"

	tests := []struct {
		name   string
		filter repository.ReservationFilter
		want   []uuid.UUID
	}{
		{
			name:   "Date Range Orders By Start",
			filter: repository.ReservationFilter{From: &from, To: &to},
			want:   []uuid.UUID{early.ID, zoneOnly.ID, late.ID},
		},
		{
			name:   "No Range Orders Newest First",
			filter: repository.ReservationFilter{},
			want:   []uuid.UUID{zoneOnly.ID, early.ID, late.ID},
		},
		{
			name:   "Status Filter",
			filter: repository.ReservationFilter{Status: &status},
			want:   []uuid.UUID{early.ID},
		},
		{
			name:   "Location Label Substring",
			filter: repository.ReservationFilter{Location: &mesa, From: &from},
			want:   []uuid.UUID{early.ID, late.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Reservations().List(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]uuid.UUID, len(got))
			for i, r := range got {
				ids[i] = r.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	live, err := s.Reservations().ListLive(ctx, base.Add(time.Hour), base.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, early.ID, live[0].ID)
	assert.Equal(t, "Mesa 2", live[0].Location)

	count, err := s.Reservations().CountLiveByLocation(ctx, models.LocationZone, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_BlockZoneFilter(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	floor, zone, tables := seedHierarchy(t, s)

	other := &models.Zone{FloorID: floor.ID, Name: "Bar", Type: models.ZoneTypeBar}
	require.NoError(t, s.Zones().Create(ctx, other))

	start := time.Date(2026, 11, 20, 10, 0, 0, 0, time.UTC)
	mk := func(b *models.Block) *models.Block {
		b.Title = "Mantenimiento"
		b.Type = models.BlockMaintenance
		b.Status = models.BlockScheduled
		b.StartsAt = start
		b.EndsAt = start.Add(4 * time.Hour)
		require.NoError(t, s.Blocks().Create(ctx, b))
		return b
	}

	onTable := mk(&models.Block{TableID: &tables[0].ID})
	onFloor := mk(&models.Block{FloorID: &floor.ID})
	mk(&models.Block{ZoneID: &other.ID})

	got, err := s.Blocks().List(ctx, repository.BlockFilter{ZoneID: &zone.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []uuid.UUID{onTable.ID, onFloor.ID}, []uuid.UUID{got[0].ID, got[1].ID})
	for _, b := range got {
		assert.Equal(t, 4.0, b.DurationHours)
	}

	invalid := &models.Block{Title: "x", StartsAt: start, EndsAt: start.Add(time.Hour), ZoneID: &zone.ID, FloorID: &floor.ID}
	require.ErrorIs(t, s.Blocks().Create(ctx, invalid), repository.ErrConflict)

	count, err := s.Blocks().CountLiveByLocation(ctx, models.LocationFloor, floor.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_DeleteKeepsLiveBookingsAttached(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()

	floor := &models.Floor{Name: "Azotea", Active: true}
	require.NoError(t, s.Floors().Create(ctx, floor))
	zone := &models.Zone{FloorID: floor.ID, Name: "Jardín", Type: models.ZoneTypeTerrace, Active: true}
	require.NoError(t, s.Zones().Create(ctx, zone))
	empty := &models.Floor{Name: "Sótano", Active: true}
	require.NoError(t, s.Floors().Create(ctx, empty))

	start := time.Date(2026, 11, 21, 19, 0, 0, 0, time.UTC)
	res := &models.Reservation{
		ClientName: "Ana",
		Status:     models.ReservationPending,
		Type:       models.ReservationNormal,
		ZoneID:     zone.ID,
		StartsAt:   start,
		EndsAt:     start.Add(2 * time.Hour),
	}
	require.NoError(t, s.Reservations().Create(ctx, res))

	block := &models.Block{
		Title:    "Fumigación",
		Type:     models.BlockMaintenance,
		Status:   models.BlockScheduled,
		FloorID:  &empty.ID,
		StartsAt: start,
		EndsAt:   start.Add(4 * time.Hour),
	}
	require.NoError(t, s.Blocks().Create(ctx, block))

	require.ErrorIs(t, s.Zones().Delete(ctx, zone.ID), repository.ErrHasAssociatedRecords)
	require.ErrorIs(t, s.Floors().Delete(ctx, empty.ID), repository.ErrHasAssociatedRecords)

	res.Status = models.ReservationCancelled
	require.NoError(t, s.Reservations().Update(ctx, res))
	block.Status = models.BlockCancelled
	require.NoError(t, s.Blocks().Update(ctx, block))

	assert.NoError(t, s.Zones().Delete(ctx, zone.ID))
	assert.NoError(t, s.Floors().Delete(ctx, empty.ID))
}

func TestStore_DateRangeMatchesOverlap(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	floor, zone, tables := seedHierarchy(t, s)

	day := func(d int) time.Time { return time.Date(2026, 11, d, 0, 0, 0, 0, time.UTC) }

	spanning := &models.Block{
		Title:    "Remodelación",
		Type:     models.BlockMaintenance,
		Status:   models.BlockActive,
		FloorID:  &floor.ID,
		StartsAt: day(21).Add(10 * time.Hour),
		EndsAt:   day(23).Add(10 * time.Hour),
	}
	require.NoError(t, s.Blocks().Create(ctx, spanning))

	lateNight := &models.Reservation{
		ClientName: "Ana",
		Status:     models.ReservationConfirmed,
		Type:       models.ReservationNormal,
		ZoneID:     zone.ID,
		TableID:    &tables[0].ID,
		StartsAt:   day(21).Add(23 * time.Hour),
		EndsAt:     day(22).Add(time.Hour),
	}
	require.NoError(t, s.Reservations().Create(ctx, lateNight))

	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{name: "Day Inside The Window", from: day(22), to: day(23), want: 1},
		{name: "Day The Entry Ends", from: day(23), to: day(24), want: 1},
		{name: "Day After The End", from: day(24), to: day(25), want: 0},
		{name: "Day Before The Start", from: day(20), to: day(21), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Blocks().List(ctx, repository.BlockFilter{From: testutil.Time(tt.from), To: testutil.Time(tt.to)})
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	got, err := s.Reservations().List(ctx, repository.ReservationFilter{From: testutil.Time(day(22)), To: testutil.Time(day(23))})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lateNight.ID, got[0].ID)
}
