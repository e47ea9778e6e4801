package booking_test

import (
	"errors"
	"testing"

	"floorkeeper/internal/booking"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTableStatus(t *testing.T) {
	f := newFixture(t, false)
	waiter := uuid.New()

	table, err := f.svc.SetTableStatus(f.ctx, f.t5.ID, models.TableOccupied, &waiter)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, table.Status)
	assert.Equal(t, models.TableOccupied, f.tableStatus(t, f.t5))

	changes := f.events.ByKey(events.TableStatusChanged)
	require.Len(t, changes, 1)
	assert.Equal(t, string(models.TableAvailable), changes[0].Previous)
	assert.Equal(t, "personal:"+waiter.String(), changes[0].Source)

	// Same status again is a no-op
	_, err = f.svc.SetTableStatus(f.ctx, f.t5.ID, models.TableOccupied, nil)
	require.NoError(t, err)
	assert.Len(t, f.events.ByKey(events.TableStatusChanged), 1)
}

func TestSetTableStatus_UnknownTable(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.SetTableStatus(f.ctx, uuid.New(), models.TableCleaning, nil)
	var nf *booking.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "mesa", nf.Entity)
}
