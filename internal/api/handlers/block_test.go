package handlers_test

import (
	"encoding/json"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/models"
	"floorkeeper/internal/testutil"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zoneBlockBody(zone *models.Zone, start, end string) string {
	return fmt.Sprintf(`{
		"titulo": "Pintura de terraza",
		"tipo": "mantenimiento",
		"fecha_inicio": %q,
		"fecha_fin": %q,
		"tipo_ubicacion": "zona",
		"zona_id": %q
	}`, start, end, zone.ID)
}

func createBlock(t *testing.T, tc *testutil.TestContext, token, body string) models.Block {
	t.Helper()
	w := tc.Do(http.MethodPost, "/api/v1/blocks", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var block models.Block
	decodeData(t, w, &block)
	return block
}

func TestBlockLifecycle(t *testing.T) {
	tc := testutil.NewTestContext(t)
	admin := tc.TokenFor(models.RoleAdmin)
	waiter := tc.TokenFor(models.RoleWaiter)
	r := newRestaurant(tc)

	block := createBlock(t, tc, admin, zoneBlockBody(r.terrace, "2026-11-20T14:00:00-06:00", "2026-11-20T18:00:00-06:00"))
	assert.Equal(t, models.BlockScheduled, block.Status)
	assert.Equal(t, "Zona Terraza", block.Location)
	assert.InDelta(t, 4.0, block.DurationHours, 0.001)
	base := "/api/v1/blocks/" + block.ID.String()

	t.Run("Reservation Inside Block Conflicts", func(t *testing.T) {
		w := tc.Do(http.MethodPost, "/api/v1/reservations", reservationBody(r.t5, "2026-11-20", "15:00"), waiter)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		var conflicts []booking.Conflict
		require.NoError(t, json.Unmarshal(decode(t, w).Details, &conflicts))
		require.Len(t, conflicts, 1)
		assert.Equal(t, booking.KindBlock, conflicts[0].Kind)
		assert.Equal(t, block.ID, conflicts[0].ID)
	})

	t.Run("Reservation After Block", func(t *testing.T) {
		createReservation(t, tc, waiter, reservationBody(r.t5, "2026-11-20", "18:00"))
	})

	t.Run("Waiter Cannot Activate", func(t *testing.T) {
		w := tc.Do(http.MethodPost, base+"/activate", "", waiter)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Activate Withdraws Tables", func(t *testing.T) {
		tc.Advance(2 * time.Hour)
		w := tc.Do(http.MethodPost, base+"/activate", "", admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		for _, table := range []*models.Table{r.t5, r.t6} {
			var got models.Table
			decodeData(t, tc.Do(http.MethodGet, "/api/v1/tables/"+table.ID.String(), "", admin), &got)
			assert.Equal(t, models.TableMaintenance, got.Status)
		}
	})

	t.Run("Cancel Without Motive", func(t *testing.T) {
		w := tc.Do(http.MethodDelete, base, "", admin)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "motivo", decode(t, w).Field)
	})

	t.Run("Cancel Restores Tables", func(t *testing.T) {
		w := tc.Do(http.MethodDelete, base+"?motivo=Pintura%20pospuesta", "", admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got models.Block
		decodeData(t, w, &got)
		assert.Equal(t, models.BlockCancelled, got.Status)

		var table models.Table
		decodeData(t, tc.Do(http.MethodGet, "/api/v1/tables/"+r.t6.ID.String(), "", admin), &table)
		assert.Equal(t, models.TableAvailable, table.Status)
	})

	t.Run("Cancelled Is Terminal", func(t *testing.T) {
		w := tc.Do(http.MethodPost, base+"/complete", "", admin)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("History", func(t *testing.T) {
		var history []models.AuditLog
		decodeData(t, tc.Do(http.MethodGet, base+"/history", "", waiter), &history)
		require.Len(t, history, 3)
		assert.Equal(t, "Pintura pospuesta", history[2].Reason)
	})
}

func TestCreateBlock_Rejected(t *testing.T) {
	tc := testutil.NewTestContext(t)
	admin := tc.TokenFor(models.RoleAdmin)
	r := newRestaurant(tc)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "End Before Start",
			body:       zoneBlockBody(r.terrace, "2026-11-20T18:00:00-06:00", "2026-11-20T14:00:00-06:00"),
			wantStatus: http.StatusBadRequest,
			wantCode:   booking.CodeValidation,
			wantField:  "fecha_fin",
		},
		{
			name:       "Start In The Past",
			body:       zoneBlockBody(r.terrace, "2026-11-20T08:00:00-06:00", "2026-11-20T14:00:00-06:00"),
			wantStatus: http.StatusBadRequest,
			wantCode:   booking.CodeValidation,
			wantField:  "fecha_inicio",
		},
		{
			name: "Zone And Table",
			body: fmt.Sprintf(`{"titulo":"Evento","tipo":"evento","fecha_inicio":"2026-11-21T10:00:00-06:00",
				"fecha_fin":"2026-11-21T12:00:00-06:00","zona_id":%q,"mesa_id":%q}`, r.terrace.ID, r.t5.ID),
			wantStatus: http.StatusBadRequest,
			wantCode:   booking.CodeLocationAmbiguous,
			wantField:  "ubicacion",
		},
		{
			name:       "Missing Title",
			body:       `{"tipo":"evento","fecha_inicio":"2026-11-21T10:00:00-06:00","fecha_fin":"2026-11-21T12:00:00-06:00"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   booking.CodeValidation,
			wantField:  "titulo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tc.Do(http.MethodPost, "/api/v1/blocks", tt.body, admin)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			env := decode(t, w)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, tt.wantField, env.Field)
		})
	}
}

func TestListBlocks(t *testing.T) {
	tc := testutil.NewTestContext(t)
	admin := tc.TokenFor(models.RoleAdmin)
	r := newRestaurant(tc)

	createBlock(t, tc, admin, zoneBlockBody(r.terrace, "2026-11-20T14:00:00-06:00", "2026-11-20T18:00:00-06:00"))
	createBlock(t, tc, admin, fmt.Sprintf(`{"titulo":"Boda","tipo":"evento","fecha_inicio":"2026-11-22T10:00:00-06:00",
		"fecha_fin":"2026-11-22T23:00:00-06:00","tipo_ubicacion":"piso","piso_id":%q}`, r.floor.ID))

	type page struct {
		Items []models.Block `json:"items"`
	}

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{name: "All", query: "", wantCount: 2},
		{name: "By Type", query: "?tipo=evento", wantCount: 1},
		{name: "By Status", query: "?estado=activo", wantCount: 0},
		{name: "By Day", query: "?fecha_desde=2026-11-22", wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tc.Do(http.MethodGet, "/api/v1/blocks"+tt.query, "", tc.TokenFor(models.RoleKitchen))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var p page
			decodeData(t, w, &p)
			assert.Len(t, p.Items, tt.wantCount)
		})
	}
}

func TestListBlocks_SpanningDays(t *testing.T) {
	tc := testutil.NewTestContext(t)
	admin := tc.TokenFor(models.RoleAdmin)
	r := newRestaurant(tc)

	long := createBlock(t, tc, admin, zoneBlockBody(r.terrace, "2026-11-21T10:00", "2026-11-23T10:00"))

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{name: "Middle Day", query: "?fecha_desde=2026-11-22&fecha_hasta=2026-11-22", wantCount: 1},
		{name: "Last Day", query: "?fecha_desde=2026-11-23&fecha_hasta=2026-11-23", wantCount: 1},
		{name: "Only Upper Bound", query: "?fecha_hasta=2026-11-21", wantCount: 1},
		{name: "Day After", query: "?fecha_desde=2026-11-24", wantCount: 0},
		{name: "Day Before", query: "?fecha_hasta=2026-11-20", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tc.Do(http.MethodGet, "/api/v1/blocks"+tt.query, "", admin)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var p struct {
				Items []models.Block `json:"items"`
			}
			decodeData(t, w, &p)
			require.Len(t, p.Items, tt.wantCount)
			if tt.wantCount == 1 {
				assert.Equal(t, long.ID, p.Items[0].ID)
			}
		})
	}
}
