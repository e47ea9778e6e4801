// Package testutil provides utilities for testing
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"floorkeeper/internal/api/routes"
	"floorkeeper/internal/auth"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/config"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository/memory"
	"floorkeeper/internal/testutil/db"
	"floorkeeper/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// LoadTestConfig loads the test configuration
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return db.LoadTestConfig(t)
}

// TestContext holds common test dependencies. Everything is backed by an in-memory
// store, and the booking clock only moves when Advance is called.
type TestContext struct {
	T           *testing.T
	Config      *config.Config
	Store       *memory.Store
	Events      *events.Recorder
	AuthService *auth.Service
	Booking     *booking.Service
	Now         time.Time

	router *gin.Engine
}

// NewTestContext creates a new test context with all dependencies. The clock starts
// at 2026-11-20 12:00 in the configured restaurant timezone.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)
	validation.Initialize()

	cfg := LoadTestConfig(t)
	// Handler tests fire far more requests than a client would
	cfg.RateLimit = config.RateLimitConfig{Requests: 100000, Window: 1, Burst: 100000}

	loc := cfg.Engine.Location()
	tc := &TestContext{
		T:      t,
		Config: cfg,
		Store:  memory.NewStore(cfg.Engine.LockTimeout),
		Events: &events.Recorder{},
		Now:    time.Date(2026, 11, 20, 12, 0, 0, 0, loc),
	}

	tc.AuthService = auth.NewService(cfg.Auth, tc.Store.Users())
	tc.Booking = booking.NewService(tc.Repositories(), booking.Options{
		Location:                  loc,
		ExclusiveZones:            cfg.Engine.ZoneReservationPolicy == config.ZonePolicyExclusive,
		DefaultReservationMinutes: cfg.Engine.DefaultReservationMinutes,
		Clock:                     booking.ClockFunc(func() time.Time { return tc.Now }),
		Publisher:                 tc.Events,
	})
	return tc
}

// Repositories returns the store's repositories in the shape the booking service takes
func (tc *TestContext) Repositories() booking.Repositories {
	return booking.Repositories{
		Tx:           tc.Store,
		Floors:       tc.Store.Floors(),
		Zones:        tc.Store.Zones(),
		Tables:       tc.Store.Tables(),
		Reservations: tc.Store.Reservations(),
		Blocks:       tc.Store.Blocks(),
		AuditLogs:    tc.Store.AuditLogs(),
	}
}

// Advance moves the booking clock forward
func (tc *TestContext) Advance(d time.Duration) {
	tc.Now = tc.Now.Add(d)
}

// Router returns the full API router wired to this context, without a list cache
func (tc *TestContext) Router() *gin.Engine {
	if tc.router == nil {
		tc.router = routes.SetupRoutes(routes.Dependencies{
			Config:  tc.Config,
			Repos:   tc.Repositories(),
			Users:   tc.Store.Users(),
			Auth:    tc.AuthService,
			Booking: tc.Booking,
		})
	}
	return tc.router
}

// Do sends a request through the router. A non-empty token is sent as a bearer token.
func (tc *TestContext) Do(method, path, body, token string) *httptest.ResponseRecorder {
	tc.T.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	tc.Router().ServeHTTP(w, req)
	return w
}

// CreateTestUser creates a staff account with the given role and returns it
func (tc *TestContext) CreateTestUser(username, password string, role models.Role) *models.User {
	tc.T.Helper()

	user, err := tc.AuthService.CreateUser(context.Background(), username, password, role)
	require.NoError(tc.T, err, "Failed to create test user")
	return user
}

// GetTestJWT generates a JWT token for testing
func (tc *TestContext) GetTestJWT(user *models.User) string {
	tc.T.Helper()

	token, _, err := tc.AuthService.GenerateToken(user)
	require.NoError(tc.T, err, "Failed to generate test JWT")
	return token
}

// TokenFor returns a token for the staff_<role> account, creating it on first use
func (tc *TestContext) TokenFor(role models.Role) string {
	tc.T.Helper()

	user, err := tc.Store.Users().GetByUsername(context.Background(), "staff_"+string(role))
	if err != nil {
		user = tc.CreateTestUser("staff_"+string(role), "password123", role)
	}
	return tc.GetTestJWT(user)
}

// CreateTestFloor creates an active floor and returns it
func (tc *TestContext) CreateTestFloor(name string) *models.Floor {
	tc.T.Helper()

	floor := &models.Floor{Name: name, Active: true}
	require.NoError(tc.T, tc.Store.Floors().Create(context.Background(), floor), "Failed to create test floor")
	return floor
}

// CreateTestZone creates an active zone on floor and returns it
func (tc *TestContext) CreateTestZone(floor *models.Floor, name string, zoneType models.ZoneType) *models.Zone {
	tc.T.Helper()

	zone := &models.Zone{FloorID: floor.ID, Name: name, Type: zoneType, Active: true}
	require.NoError(tc.T, tc.Store.Zones().Create(context.Background(), zone), "Failed to create test zone")
	return zone
}

// CreateTestTable creates an active four-seat table in zone and returns it
func (tc *TestContext) CreateTestTable(zone *models.Zone, number int) *models.Table {
	tc.T.Helper()

	table := &models.Table{ZoneID: zone.ID, Number: number, Capacity: 4, Active: true}
	require.NoError(tc.T, tc.Store.Tables().Create(context.Background(), table), "Failed to create test table")
	return table
}
