package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"floorkeeper/internal/booking"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"floorkeeper/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservation(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:00"), nil)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, f.terrace.ID, res.ZoneID)
	assert.Equal(t, f.t5.ID, *res.TableID)
	assert.Equal(t, "Mesa 5", res.Location)
	assert.Equal(t, "2026-11-21", res.Date)
	assert.Equal(t, "19:00", res.Time)
	assert.True(t, time.Date(2026, 11, 21, 21, 0, 0, 0, cst).Equal(res.EndsAt))

	history, err := f.svc.ReservationHistory(f.ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.AuditActionCreate, history[0].Action)
	assert.Equal(t, "pendiente", history[0].ToStatus)

	created := f.events.ByKey(events.ReservationPrefix + "create")
	require.Len(t, created, 1)
	assert.Equal(t, res.ID.String(), created[0].EntityID)
}

func TestCreateReservation_DefaultDuration(t *testing.T) {
	f := newFixture(t, false)

	req := reservationAt(f.t5, "2026-11-21", "19:00")
	req.DurationMinutes = 0
	res, err := f.svc.CreateReservation(f.ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 120, res.DurationMinutes)
}

func TestCreateReservation_Table5Scenario(t *testing.T) {
	f := newFixture(t, false)

	first, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:00"), nil)
	require.NoError(t, err)

	t.Run("Same Table Overlapping Is Rejected", func(t *testing.T) {
		_, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "20:00"), nil)

		var ce *booking.ConflictError
		require.True(t, errors.As(err, &ce), "got %v", err)
		require.Len(t, ce.Conflicts, 1)
		assert.Equal(t, first.ID, ce.Conflicts[0].ID)
		assert.Equal(t, booking.KindReservation, ce.Conflicts[0].Kind)
		assert.Equal(t, "Mesa 5", ce.Conflicts[0].Location)
		assert.Equal(t, booking.CodeConflict, ce.ErrorCode())
	})

	t.Run("Other Table Same Time Is Accepted", func(t *testing.T) {
		_, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t6, "2026-11-21", "20:00"), nil)
		require.NoError(t, err)
	})

	t.Run("Same Table Back To Back Is Accepted", func(t *testing.T) {
		_, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "21:00"), nil)
		require.NoError(t, err)
	})

	t.Run("Cancelled Reservation Frees The Slot", func(t *testing.T) {
		_, err := f.svc.CancelReservation(f.ctx, first.ID, "Cliente llamó para cancelar", nil)
		require.NoError(t, err)

		_, err = f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:30"), nil)
		require.NoError(t, err)
	})
}

func TestCreateReservation_Validation(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name       string
		mutate     func(req *models.ReservationRequest)
		wantField  string
		wantCode   string
		wantReason booking.LocationReason
		wantRule   error
	}{
		{
			name:      "Missing Client Name",
			mutate:    func(req *models.ReservationRequest) { req.ClientName = "  " },
			wantField: "cliente_nombre",
			wantCode:  booking.CodeValidation,
		},
		{
			name:      "No Guests",
			mutate:    func(req *models.ReservationRequest) { req.PartySize = 0 },
			wantField: "numero_personas",
			wantCode:  booking.CodeValidation,
		},
		{
			name:      "Over Table Capacity",
			mutate:    func(req *models.ReservationRequest) { req.PartySize = 9 },
			wantField: "numero_personas",
			wantCode:  booking.CodeValidation,
		},
		{
			name:      "Start In The Past",
			mutate:    func(req *models.ReservationRequest) { req.Date, req.Time = "2026-11-20", "11:00" },
			wantField: "fecha_reserva",
			wantCode:  booking.CodeValidation,
			wantRule:  booking.ErrPastStart,
		},
		{
			name: "Zone And Floor Together",
			mutate: func(req *models.ReservationRequest) {
				req.TableID = nil
				req.ZoneID, req.FloorID = testutil.String("3"), testutil.String("1")
			},
			wantField:  "ubicacion",
			wantCode:   booking.CodeLocationAmbiguous,
			wantReason: booking.AmbiguousOrMissing,
		},
		{
			name:       "Table From Another Zone",
			mutate:     func(req *models.ReservationRequest) { req.ZoneID = testutil.String(f.interior.ID.String()) },
			wantField:  "ubicacion",
			wantCode:   booking.CodeLocationAmbiguous,
			wantReason: booking.Mismatch,
		},
		{
			name:      "Unknown Table",
			mutate:    func(req *models.ReservationRequest) { req.TableID = testutil.String(uuid.NewString()) },
			wantField: "mesa_id",
			wantCode:  booking.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := reservationAt(f.t5, "2026-11-21", "19:00")
			tt.mutate(req)

			_, err := f.svc.CreateReservation(f.ctx, req, nil)
			require.Error(t, err)

			var coded booking.Coded
			require.True(t, errors.As(err, &coded))
			assert.Equal(t, tt.wantCode, coded.ErrorCode())
			assert.Equal(t, tt.wantField, booking.FieldOf(err))
			if tt.wantReason != "" {
				var le *booking.LocationError
				require.True(t, errors.As(err, &le))
				assert.Equal(t, tt.wantReason, le.Reason)
			}
			if tt.wantRule != nil {
				assert.True(t, errors.Is(err, tt.wantRule))
			}
		})
	}

	page, err := f.svc.ListReservations(f.ctx, booking.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestReservationLifecycle(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:00"), nil)
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmReservation(f.ctx, res.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)

	t.Run("Confirm Twice Is Illegal", func(t *testing.T) {
		_, err := f.svc.ConfirmReservation(f.ctx, res.ID, nil)

		var it *booking.IllegalTransitionError
		require.True(t, errors.As(err, &it), "got %v", err)
		assert.Equal(t, "confirmada", it.From)
		assert.Equal(t, "confirm", it.Action)
		assert.Equal(t, []string{"cancel", "complete", "no_show"}, it.Allowed)
		assert.Equal(t, booking.CodeIllegalTransition, it.ErrorCode())

		got, err := f.svc.GetReservation(f.ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReservationConfirmed, got.Status)
	})

	t.Run("Cancel Without Motive Is Rejected", func(t *testing.T) {
		_, err := f.svc.CancelReservation(f.ctx, res.ID, "   ", nil)

		var ve *booking.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "motivo", ve.Field)

		got, err := f.svc.GetReservation(f.ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReservationConfirmed, got.Status)
	})

	t.Run("No Show Is Terminal", func(t *testing.T) {
		actor := uuid.New()
		got, err := f.svc.NoShowReservation(f.ctx, res.ID, &actor)
		require.NoError(t, err)
		assert.Equal(t, models.ReservationNoShow, got.Status)

		_, err = f.svc.CancelReservation(f.ctx, res.ID, "demasiado tarde", nil)
		var it *booking.IllegalTransitionError
		require.True(t, errors.As(err, &it))
		assert.Empty(t, it.Allowed)
		assert.Contains(t, it.Error(), "terminal")

		_, err = f.svc.UpdateReservation(f.ctx, res.ID, reservationAt(f.t5, "2026-11-21", "20:00"), nil)
		require.True(t, errors.As(err, &it))
		assert.Equal(t, "update", it.Action)
	})

	history, err := f.svc.ReservationHistory(f.ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.AuditActionCreate, history[0].Action)
	assert.Equal(t, models.AuditActionConfirm, history[1].Action)
	assert.Equal(t, "pendiente", history[1].FromStatus)
	assert.Equal(t, models.AuditActionNoShow, history[2].Action)
	require.NotNil(t, history[2].UserID)

	assert.Len(t, f.events.ByKey(events.ReservationPrefix+"no_show"), 1)
}

func TestReservation_UnknownID(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.ConfirmReservation(f.ctx, uuid.New(), nil)
	var nf *booking.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestUpdateReservation(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:00"), nil)
	require.NoError(t, err)
	other, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t6, "2026-11-21", "19:00"), nil)
	require.NoError(t, err)

	t.Run("Keeping The Same Slot Does Not Conflict With Itself", func(t *testing.T) {
		req := reservationAt(f.t5, "2026-11-21", "19:00")
		req.Notes = "Junto a la ventana"
		got, err := f.svc.UpdateReservation(f.ctx, res.ID, req, nil)
		require.NoError(t, err)
		assert.Equal(t, "Junto a la ventana", got.Notes)
		assert.Equal(t, models.ReservationPending, got.Status)
	})

	t.Run("Moving Onto A Taken Table Conflicts", func(t *testing.T) {
		_, err := f.svc.UpdateReservation(f.ctx, res.ID, reservationAt(f.t6, "2026-11-21", "20:00"), nil)
		var ce *booking.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, other.ID, ce.Conflicts[0].ID)
	})

	t.Run("Moving To A Free Table", func(t *testing.T) {
		got, err := f.svc.UpdateReservation(f.ctx, res.ID, reservationAt(f.t1, "2026-11-21", "20:00"), nil)
		require.NoError(t, err)
		assert.Equal(t, f.interior.ID, got.ZoneID)
		assert.Equal(t, "Mesa 1", got.Location)
	})
}

func TestReservation_TableStatusFollowsWindow(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-20", "12:30"), nil)
	require.NoError(t, err)

	f.advance(45 * time.Minute)
	_, err = f.svc.ConfirmReservation(f.ctx, res.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TableReserved, f.tableStatus(t, f.t5))

	changed := f.events.ByKey(events.TableStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "disponible", changed[0].Previous)
	assert.Equal(t, "reservada", changed[0].Status)
	assert.Equal(t, "reserva:"+res.ID.String(), changed[0].Source)

	_, err = f.svc.CompleteReservation(f.ctx, res.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, f.tableStatus(t, f.t5))
}

func TestZoneReservationPolicy(t *testing.T) {
	zoneOnly := func(f *fixture) *models.ReservationRequest {
		req := reservationAt(f.t5, "2026-11-21", "19:00")
		req.TableID = nil
		req.ZoneID = testutil.String(f.terrace.ID.String())
		req.LocationType = models.LocationZone
		return req
	}

	t.Run("Advisory Lets Tables Of The Zone Be Booked", func(t *testing.T) {
		f := newFixture(t, false)
		res, err := f.svc.CreateReservation(f.ctx, zoneOnly(f), nil)
		require.NoError(t, err)
		assert.Nil(t, res.TableID)
		assert.Equal(t, "Zona Terraza", res.Location)

		_, err = f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:30"), nil)
		require.NoError(t, err)
	})

	t.Run("Exclusive Claims Every Table Of The Zone", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.svc.CreateReservation(f.ctx, zoneOnly(f), nil)
		require.NoError(t, err)

		_, err = f.svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:30"), nil)
		var ce *booking.ConflictError
		require.True(t, errors.As(err, &ce))

		_, err = f.svc.CreateReservation(f.ctx, reservationAt(f.t1, "2026-11-21", "19:30"), nil)
		require.NoError(t, err)
	})

	for _, exclusive := range []bool{false, true} {
		f := newFixture(t, exclusive)
		_, err := f.svc.CreateBlock(f.ctx, blockOn(models.LocationZone, f.terrace.ID.String(),
			"2026-11-21T18:00:00-06:00", "2026-11-21T23:00:00-06:00"), nil)
		require.NoError(t, err)

		_, err = f.svc.CreateReservation(f.ctx, zoneOnly(f), nil)
		var ce *booking.ConflictError
		require.True(t, errors.As(err, &ce), "exclusive=%v", exclusive)
		assert.Equal(t, booking.KindBlock, ce.Conflicts[0].Kind)
	}
}

type busyTransactor struct {
	repository.Transactor
}

func (busyTransactor) Transaction(context.Context, func(ctx context.Context) error) error {
	return repository.ErrLockTimeout
}

func TestCreateReservation_LockTimeoutIsRetryable(t *testing.T) {
	f := newFixture(t, false)
	svc := booking.NewService(booking.Repositories{
		Tx:           busyTransactor{f.store},
		Floors:       f.store.Floors(),
		Zones:        f.store.Zones(),
		Tables:       f.store.Tables(),
		Reservations: f.store.Reservations(),
		Blocks:       f.store.Blocks(),
		AuditLogs:    f.store.AuditLogs(),
	}, booking.Options{
		Location: cst,
		Clock:    booking.ClockFunc(func() time.Time { return f.now }),
	})

	_, err := svc.CreateReservation(f.ctx, reservationAt(f.t5, "2026-11-21", "19:00"), nil)

	var re *booking.RetryableError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, booking.CodeLockTimeout, re.ErrorCode())
	assert.True(t, errors.Is(err, repository.ErrLockTimeout))
}
