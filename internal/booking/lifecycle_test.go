package booking_test

import (
	"testing"

	"floorkeeper/internal/booking"
	"floorkeeper/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNextReservationStatus(t *testing.T) {
	tests := []struct {
		from   models.ReservationStatus
		action booking.Action
		want   models.ReservationStatus
		ok     bool
	}{
		{models.ReservationPending, booking.ActionConfirm, models.ReservationConfirmed, true},
		{models.ReservationPending, booking.ActionCancel, models.ReservationCancelled, true},
		{models.ReservationPending, booking.ActionComplete, "", false},
		{models.ReservationPending, booking.ActionNoShow, "", false},
		{models.ReservationConfirmed, booking.ActionConfirm, "", false},
		{models.ReservationConfirmed, booking.ActionCancel, models.ReservationCancelled, true},
		{models.ReservationConfirmed, booking.ActionComplete, models.ReservationCompleted, true},
		{models.ReservationConfirmed, booking.ActionNoShow, models.ReservationNoShow, true},
		{models.ReservationCancelled, booking.ActionConfirm, "", false},
		{models.ReservationCompleted, booking.ActionCancel, "", false},
		{models.ReservationNoShow, booking.ActionComplete, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, ok := booking.NextReservationStatus(tt.from, tt.action)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextBlockStatus(t *testing.T) {
	tests := []struct {
		from   models.BlockStatus
		action booking.Action
		want   models.BlockStatus
		ok     bool
	}{
		{models.BlockScheduled, booking.ActionActivate, models.BlockActive, true},
		{models.BlockScheduled, booking.ActionCancel, models.BlockCancelled, true},
		{models.BlockScheduled, booking.ActionComplete, "", false},
		{models.BlockActive, booking.ActionActivate, "", false},
		{models.BlockActive, booking.ActionComplete, models.BlockCompleted, true},
		{models.BlockActive, booking.ActionCancel, models.BlockCancelled, true},
		{models.BlockCompleted, booking.ActionCancel, "", false},
		{models.BlockCancelled, booking.ActionActivate, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, ok := booking.NextBlockStatus(tt.from, tt.action)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalStatesAllowNothing(t *testing.T) {
	for _, s := range []models.ReservationStatus{models.ReservationCancelled, models.ReservationCompleted, models.ReservationNoShow} {
		assert.Empty(t, booking.ReservationActionsFrom(s), s)
		assert.False(t, s.IsLive())
	}
	for _, s := range []models.BlockStatus{models.BlockCompleted, models.BlockCancelled} {
		assert.Empty(t, booking.BlockActionsFrom(s), s)
		assert.False(t, s.IsLive())
	}

	assert.Equal(t, []string{"confirm", "cancel"}, booking.ReservationActionsFrom(models.ReservationPending))
	assert.Equal(t, []string{"activate", "cancel"}, booking.BlockActionsFrom(models.BlockScheduled))
}

// Every transition leaves a live state, and no transition ever re-enters one from a terminal state
func TestTransitionsOnlyLeaveLiveStates(t *testing.T) {
	for _, tr := range booking.ReservationTransitions() {
		assert.True(t, tr.From.IsLive(), "%s -> %s", tr.From, tr.To)
	}
	for _, tr := range booking.BlockTransitions() {
		assert.True(t, tr.From.IsLive(), "%s -> %s", tr.From, tr.To)
	}
}
