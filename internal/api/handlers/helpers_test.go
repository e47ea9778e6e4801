package handlers_test

import (
	"encoding/json"
	"floorkeeper/internal/models"
	"floorkeeper/internal/testutil"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// envelope mirrors both response shapes; Data is decoded by the caller
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
	Field   string          `json:"field"`
	Code    string          `json:"code"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, "body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// restaurant is a floor with a terrace holding tables 5 and 6
type restaurant struct {
	floor   *models.Floor
	terrace *models.Zone
	t5, t6  *models.Table
}

func newRestaurant(tc *testutil.TestContext) *restaurant {
	r := &restaurant{floor: tc.CreateTestFloor("Planta Baja")}
	r.terrace = tc.CreateTestZone(r.floor, "Terraza", models.ZoneTypeTerrace)
	r.t5 = tc.CreateTestTable(r.terrace, 5)
	r.t6 = tc.CreateTestTable(r.terrace, 6)
	return r
}
