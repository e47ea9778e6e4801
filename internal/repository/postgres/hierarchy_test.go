package postgres_test

import (
	"context"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"floorkeeper/internal/repository/postgres/integration"
	"floorkeeper/internal/testutil"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorRepository(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()

	floor := tc.CreateTestFloor("Planta Baja")
	require.NotEqual(t, uuid.Nil, floor.ID)
	require.False(t, floor.CreatedAt.IsZero())

	t.Run("Duplicate Name", func(t *testing.T) {
		err := tc.Floors.Create(ctx, &models.Floor{Name: "Planta Baja"})
		require.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("Update", func(t *testing.T) {
		floor.Description = "Salón principal"
		floor.Order = 3
		require.NoError(t, tc.Floors.Update(ctx, floor))

		got, err := tc.Floors.GetByID(ctx, floor.ID)
		require.NoError(t, err)
		assert.Equal(t, "Salón principal", got.Description)
		assert.Equal(t, 3, got.Order)
	})

	t.Run("Update Unknown", func(t *testing.T) {
		err := tc.Floors.Update(ctx, &models.Floor{ID: uuid.New(), Name: "X"})
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Delete With Zones", func(t *testing.T) {
		tc.CreateTestZone(floor, "Terraza")
		require.ErrorIs(t, tc.Floors.Delete(ctx, floor.ID), repository.ErrHasAssociatedRecords)
	})

	t.Run("Search Is Literal", func(t *testing.T) {
		tc.CreateTestFloor("Terraza 100%")

		tests := []struct {
			search string
			want   int
		}{
			{search: "%", want: 1},
			{search: "100%", want: 1},
			{search: "_", want: 0},
			{search: "planta", want: 1},
		}
		for _, tt := range tests {
			floors, err := tc.Floors.List(ctx, repository.FloorFilter{
				Active: testutil.Bool(true),
				Search: testutil.String(tt.search),
				Limit:  testutil.Int(10),
			})
			require.NoError(t, err)
			assert.Len(t, floors, tt.want, "search %q", tt.search)
		}
	})

	t.Run("Delete Frees Name", func(t *testing.T) {
		other := tc.CreateTestFloor("Sótano")
		require.NoError(t, tc.Floors.Delete(ctx, other.ID))

		_, err := tc.Floors.GetByID(ctx, other.ID)
		require.ErrorIs(t, err, repository.ErrNotFound)
		tc.CreateTestFloor("Sótano")
	})
}

func TestZoneAndTableRepository(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()

	floor := tc.CreateTestFloor("Planta Baja")
	terrace := tc.CreateTestZone(floor, "Terraza")

	t.Run("Zone Unknown Floor", func(t *testing.T) {
		err := tc.Zones.Create(ctx, &models.Zone{FloorID: uuid.New(), Name: "Bar", Type: models.ZoneTypeBar})
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Zone Name Unique Per Floor", func(t *testing.T) {
		err := tc.Zones.Create(ctx, &models.Zone{FloorID: floor.ID, Name: "Terraza", Type: models.ZoneTypeTerrace})
		require.ErrorIs(t, err, repository.ErrConflict)

		upstairs := tc.CreateTestFloor("Planta Alta")
		tc.CreateTestZone(upstairs, "Terraza")
	})

	t5 := tc.CreateTestTable(terrace, 5)
	tc.CreateTestTable(terrace, 6)
	assert.Equal(t, models.TableAvailable, t5.Status)

	t.Run("Table Number Unique Per Zone", func(t *testing.T) {
		err := tc.Tables.Create(ctx, &models.Table{ZoneID: terrace.ID, Number: 5, Capacity: 2})
		require.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("List Tables By Floor", func(t *testing.T) {
		tables, err := tc.Tables.List(ctx, repository.TableFilter{FloorID: &floor.ID})
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, 5, tables[0].Number)
	})

	t.Run("Update Status", func(t *testing.T) {
		require.NoError(t, tc.Tables.UpdateStatus(ctx, t5.ID, models.TableOccupied))

		status := models.TableOccupied
		tables, err := tc.Tables.List(ctx, repository.TableFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, t5.ID, tables[0].ID)

		require.ErrorIs(t, tc.Tables.UpdateStatus(ctx, uuid.New(), models.TableOccupied), repository.ErrNotFound)
	})

	t.Run("Zone Delete With Tables", func(t *testing.T) {
		require.ErrorIs(t, tc.Zones.Delete(ctx, terrace.ID), repository.ErrHasAssociatedRecords)
	})
}

func TestHierarchyDelete_LiveBookings(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	svc := tc.NewBooking(time.Date(2026, 11, 20, 12, 0, 0, 0, cst), events.NoopPublisher{})

	floor := tc.CreateTestFloor("Azotea")
	garden := tc.CreateTestZone(floor, "Jardín")
	basement := tc.CreateTestFloor("Sótano")

	res, err := svc.CreateReservation(ctx, &models.ReservationRequest{
		ClientName:      "Ana López",
		ClientPhone:     "+52 55 1234 5678",
		Date:            "2026-11-21",
		Time:            "19:00",
		DurationMinutes: 120,
		PartySize:       6,
		ZoneID:          testutil.String(garden.ID.String()),
	}, nil)
	require.NoError(t, err)

	block, err := svc.CreateBlock(ctx, &models.BlockRequest{
		Title:    "Fumigación",
		Type:     models.BlockMaintenance,
		StartsAt: "2026-11-21T08:00:00-06:00",
		EndsAt:   "2026-11-21T12:00:00-06:00",
		FloorID:  testutil.String(basement.ID.String()),
	}, nil)
	require.NoError(t, err)

	t.Run("Zone With Live Reservation", func(t *testing.T) {
		require.ErrorIs(t, tc.Zones.Delete(ctx, garden.ID), repository.ErrHasAssociatedRecords)
	})

	t.Run("Floor With Live Block", func(t *testing.T) {
		require.ErrorIs(t, tc.Floors.Delete(ctx, basement.ID), repository.ErrHasAssociatedRecords)
	})

	t.Run("Released After Cancel", func(t *testing.T) {
		_, err := svc.CancelReservation(ctx, res.ID, "Cliente llamó", nil)
		require.NoError(t, err)
		_, err = svc.CancelBlock(ctx, block.ID, "Reprogramado", nil)
		require.NoError(t, err)

		assert.NoError(t, tc.Zones.Delete(ctx, garden.ID))
		assert.NoError(t, tc.Floors.Delete(ctx, basement.ID))
	})
}
