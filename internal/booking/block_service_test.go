package booking_test

import (
	"errors"
	"testing"
	"time"

	"floorkeeper/internal/booking"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBlock_FloorScenario(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:00"), nil)
	require.NoError(t, err)

	t.Run("Floor Block Over A Reservation Conflicts", func(t *testing.T) {
		_, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationFloor, f.floor.ID.String(),
			"2026-11-21T18:00:00-06:00", "2026-11-21T23:00:00-06:00"), nil)

		var ce *booking.ConflictError
		require.True(t, errors.As(err, &ce), "got %v", err)
		require.Len(t, ce.Conflicts, 1)
		assert.Equal(t, res.ID, ce.Conflicts[0].ID)
		assert.Equal(t, []uuid.UUID{f.t5.ID}, ce.Conflicts[0].Tables)
	})

	t.Run("Floor Block Before The Reservation Is Accepted", func(t *testing.T) {
		block, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationFloor, f.floor.ID.String(),
			"2026-11-21T10:00", "2026-11-21T19:00"), nil)
		require.NoError(t, err)

		assert.Equal(t, models.BlockScheduled, block.Status)
		assert.Equal(t, models.LocationFloor, block.LocationKind())
		assert.Nil(t, block.TableID)
		assert.Nil(t, block.ZoneID)
		assert.Equal(t, "Piso Planta Baja", block.Location)
		assert.InDelta(t, 9.0, block.DurationHours, 0.001)
		assert.Len(t, f.events.ByKey(events.BlockPrefix+"create"), 1)

		_, err = f.svc.CreateReservation(f.ctx, reservationAt(f.t1, "2026-11-21", "18:00"), nil)
		var ce *booking.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, booking.KindBlock, ce.Conflicts[0].Kind)
		assert.Equal(t, block.ID, ce.Conflicts[0].ID)
	})

	t.Run("Overlapping Blocks On Nested Locations Conflict", func(t *testing.T) {
		_, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationTable, f.t6.ID.String(),
			"2026-11-21T12:00", "2026-11-21T13:00"), nil)
		var ce *booking.ConflictError
		require.True(t, errors.As(err, &ce))
	})
}

func TestCreateBlock_Validation(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name      string
		req       *models.BlockRequest
		wantField string
		wantCode  string
		wantRule  error
	}{
		{
			name: "Zone And Floor",
			req: func() *models.BlockRequest {
				req := blockOn(models.LocationZone, f.terrace.ID.String(), "2026-11-21T10:00", "2026-11-21T12:00")
				req.LocationType = ""
				req.FloorID = testutil.String(f.floor.ID.String())
				return req
			}(),
			wantField: "ubicacion",
			wantCode:  booking.CodeLocationAmbiguous,
		},
		{
			name:      "Unparseable Start",
			req:       blockOn(models.LocationZone, f.terrace.ID.String(), "mañana", "2026-11-21T12:00"),
			wantField: "fecha_inicio",
			wantCode:  booking.CodeValidation,
			wantRule:  booking.ErrInvalidInstant,
		},
		{
			name:      "Reversed Window",
			req:       blockOn(models.LocationZone, f.terrace.ID.String(), "2026-11-21T12:00", "2026-11-21T10:00"),
			wantField: "fecha_fin",
			wantCode:  booking.CodeValidation,
			wantRule:  booking.ErrWindowOrder,
		},
		{
			name:      "Longer Than Ninety Days",
			req:       blockOn(models.LocationZone, f.terrace.ID.String(), "2026-11-21T10:00", "2027-03-01T10:00"),
			wantField: "fecha_fin",
			wantCode:  booking.CodeValidation,
			wantRule:  booking.ErrDuration,
		},
		{
			name: "Blank Title",
			req: func() *models.BlockRequest {
				req := blockOn(models.LocationZone, f.terrace.ID.String(), "2026-11-21T10:00", "2026-11-21T12:00")
				req.Title = " "
				return req
			}(),
			wantField: "titulo",
			wantCode:  booking.CodeValidation,
		},
		{
			name:      "Unknown Floor",
			req:       blockOn(models.LocationFloor, uuid.NewString(), "2026-11-21T10:00", "2026-11-21T12:00"),
			wantField: "piso_id",
			wantCode:  booking.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBlock(f.ctx, tt.req, nil)
			require.Error(t, err)

			var coded booking.Coded
			require.True(t, errors.As(err, &coded))
			assert.Equal(t, tt.wantCode, coded.ErrorCode())
			assert.Equal(t, tt.wantField, booking.FieldOf(err))
			if tt.wantRule != nil {
				assert.True(t, errors.Is(err, tt.wantRule))
			}
		})
	}
}

func TestBlockActivation_WithdrawsAndRestoresTables(t *testing.T) {
	f := newFixture(t, false)

	req := blockOn(models.LocationZone, f.terrace.ID.String(), "2026-11-20T13:00", "2026-11-20T17:00")
	req.Type = models.BlockMaintenance
	block, err := f.svc.CreateBlock(f.ctx, req, nil)
	require.NoError(t, err)

	f.advance(90 * time.Minute)
	active, err := f.svc.ActivateBlock(f.ctx, block.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BlockActive, active.Status)

	assert.Equal(t, models.TableMaintenance, f.tableStatus(t, f.t5))
	assert.Equal(t, models.TableMaintenance, f.tableStatus(t, f.t6))
	assert.Equal(t, models.TableAvailable, f.tableStatus(t, f.t1))
	assert.Len(t, f.events.ByKey(events.TableStatusChanged), 2)

	t.Run("Activate Twice Is Illegal", func(t *testing.T) {
		_, err := f.svc.ActivateBlock(f.ctx, block.ID, nil)
		var it *booking.IllegalTransitionError
		require.True(t, errors.As(err, &it))
		assert.Equal(t, "activo", it.From)
	})

	// A waiter takes table 6 over while the block is on
	require.NoError(t, f.store.Tables().UpdateStatus(f.ctx, f.t6.ID, models.TableOccupied))

	done, err := f.svc.CompleteBlock(f.ctx, block.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BlockCompleted, done.Status)

	assert.Equal(t, models.TableAvailable, f.tableStatus(t, f.t5))
	assert.Equal(t, models.TableOccupied, f.tableStatus(t, f.t6))

	history, err := f.svc.BlockHistory(f.ctx, block.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.AuditActionActivate, history[1].Action)
	assert.Equal(t, models.AuditActionComplete, history[2].Action)
}

func TestCompleteBlock_AnotherActiveBlockKeepsTableOut(t *testing.T) {
	f := newFixture(t, false)

	tableBlock, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationTable, f.t5.ID.String(),
		"2026-11-20T13:00", "2026-11-20T14:00"), nil)
	require.NoError(t, err)

	zoneReq := blockOn(models.LocationZone, f.terrace.ID.String(), "2026-11-20T14:00", "2026-11-20T16:00")
	zoneReq.Type = models.BlockMaintenance
	zoneBlock, err := f.svc.CreateBlock(f.ctx, zoneReq, nil)
	require.NoError(t, err)

	f.advance(90 * time.Minute)
	_, err = f.svc.ActivateBlock(f.ctx, tableBlock.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TableOutOfOrder, f.tableStatus(t, f.t5))

	f.advance(30 * time.Minute)
	_, err = f.svc.ActivateBlock(f.ctx, zoneBlock.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TableMaintenance, f.tableStatus(t, f.t5))
	assert.Equal(t, models.TableMaintenance, f.tableStatus(t, f.t6))

	_, err = f.svc.CompleteBlock(f.ctx, tableBlock.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TableMaintenance, f.tableStatus(t, f.t5))

	_, err = f.svc.CancelBlock(f.ctx, zoneBlock.ID, "Reparación terminada", nil)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, f.tableStatus(t, f.t5))
	assert.Equal(t, models.TableAvailable, f.tableStatus(t, f.t6))
}

func TestActivateBlock_AfterWindowEnded(t *testing.T) {
	f := newFixture(t, false)

	block, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationTable, f.t5.ID.String(),
		"2026-11-20T13:00", "2026-11-20T14:00"), nil)
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	_, err = f.svc.ActivateBlock(f.ctx, block.ID, nil)

	var ve *booking.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "fecha_fin", ve.Field)

	got, err := f.svc.GetBlock(f.ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BlockScheduled, got.Status)
	assert.Equal(t, models.TableAvailable, f.tableStatus(t, f.t5))
}

func TestCancelBlock(t *testing.T) {
	f := newFixture(t, false)

	block, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationZone, f.interior.ID.String(),
		"2026-11-21T10:00", "2026-11-21T12:00"), nil)
	require.NoError(t, err)

	_, err = f.svc.CancelBlock(f.ctx, block.ID, "", nil)
	var ve *booking.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "motivo", ve.Field)

	cancelled, err := f.svc.CancelBlock(f.ctx, block.ID, "Evento reprogramado", nil)
	require.NoError(t, err)
	assert.Equal(t, models.BlockCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "Evento reprogramado", *cancelled.CancelReason)

	// The slot is free again
	_, err = f.svc.CreateReservation(f.ctx, reservationAt(f.t1, "2026-11-21", "10:30"), nil)
	require.NoError(t, err)

	_, err = f.svc.CompleteBlock(f.ctx, block.ID, nil)
	var it *booking.IllegalTransitionError
	require.True(t, errors.As(err, &it))
	assert.Empty(t, it.Allowed)
}

func TestUpdateBlock(t *testing.T) {
	f := newFixture(t, false)

	block, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationZone, f.terrace.ID.String(),
		"2026-11-20T13:00", "2026-11-20T18:00"), nil)
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	_, err = f.svc.ActivateBlock(f.ctx, block.ID, nil)
	require.NoError(t, err)
	require.Equal(t, models.TableOutOfOrder, f.tableStatus(t, f.t6))

	t.Run("Started Block Keeps Its Past Start", func(t *testing.T) {
		req := blockOn(models.LocationTable, f.t5.ID.String(), "2026-11-20T13:00", "2026-11-20T19:00")
		got, err := f.svc.UpdateBlock(f.ctx, block.ID, req, nil)
		require.NoError(t, err)

		assert.Equal(t, models.BlockActive, got.Status)
		assert.Equal(t, models.LocationTable, got.LocationKind())
		assert.Equal(t, "Mesa 5", got.Location)
	})

	t.Run("Released Tables Are Restored", func(t *testing.T) {
		assert.Equal(t, models.TableOutOfOrder, f.tableStatus(t, f.t5))
		assert.Equal(t, models.TableAvailable, f.tableStatus(t, f.t6))
	})

	t.Run("Terminal Block Cannot Be Edited", func(t *testing.T) {
		_, err := f.svc.CancelBlock(f.ctx, block.ID, "Se suspende", nil)
		require.NoError(t, err)

		req := blockOn(models.LocationTable, f.t5.ID.String(), "2026-11-20T15:00", "2026-11-20T19:00")
		_, err = f.svc.UpdateBlock(f.ctx, block.ID, req, nil)
		var it *booking.IllegalTransitionError
		require.True(t, errors.As(err, &it))
		assert.Equal(t, "update", it.Action)
	})
}
