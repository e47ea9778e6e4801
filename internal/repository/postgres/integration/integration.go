// Package integration provides utilities for postgres integration testing
package integration

import (
	"context"
	"database/sql"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/config"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"floorkeeper/internal/repository/postgres"
	"floorkeeper/internal/testutil/db"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestContext holds the postgres repositories over a freshly migrated database. Tests
// using it are skipped when no database is reachable.
type TestContext struct {
	T      *testing.T
	DB     *sql.DB
	Config *config.Config

	Tx           repository.Transactor
	Floors       repository.FloorRepository
	Zones        repository.ZoneRepository
	Tables       repository.TableRepository
	Reservations repository.ReservationRepository
	Blocks       repository.BlockRepository
	Users        repository.UserRepository
	AuditLogs    repository.AuditLogRepository
}

// NewTestContext creates a new test context for postgres integration tests
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	cfg := db.LoadTestConfig(t)
	testDB := db.SetupTestDB(t, &cfg.Database)

	return &TestContext{
		T:            t,
		DB:           testDB,
		Config:       cfg,
		Tx:           postgres.NewTransactor(testDB, cfg.Engine.LockTimeout),
		Floors:       postgres.NewFloorRepository(testDB),
		Zones:        postgres.NewZoneRepository(testDB),
		Tables:       postgres.NewTableRepository(testDB),
		Reservations: postgres.NewReservationRepository(testDB),
		Blocks:       postgres.NewBlockRepository(testDB),
		Users:        postgres.NewUserRepository(testDB),
		AuditLogs:    postgres.NewAuditLogRepository(testDB),
	}
}

// Repositories returns the repositories in the shape the booking service takes
func (tc *TestContext) Repositories() booking.Repositories {
	return booking.Repositories{
		Tx:           tc.Tx,
		Floors:       tc.Floors,
		Zones:        tc.Zones,
		Tables:       tc.Tables,
		Reservations: tc.Reservations,
		Blocks:       tc.Blocks,
		AuditLogs:    tc.AuditLogs,
	}
}

// NewBooking creates a booking service on the database with a fixed clock
func (tc *TestContext) NewBooking(now time.Time, publisher events.Publisher) *booking.Service {
	return booking.NewService(tc.Repositories(), booking.Options{
		Location:                  now.Location(),
		DefaultReservationMinutes: tc.Config.Engine.DefaultReservationMinutes,
		Clock:                     booking.ClockFunc(func() time.Time { return now }),
		Publisher:                 publisher,
	})
}

// CreateTestFloor creates an active floor
func (tc *TestContext) CreateTestFloor(name string) *models.Floor {
	tc.T.Helper()
	floor := &models.Floor{Name: name, Active: true}
	require.NoError(tc.T, tc.Floors.Create(context.Background(), floor))
	return floor
}

// CreateTestZone creates an active terrace zone on floor
func (tc *TestContext) CreateTestZone(floor *models.Floor, name string) *models.Zone {
	tc.T.Helper()
	zone := &models.Zone{FloorID: floor.ID, Name: name, Type: models.ZoneTypeTerrace, Active: true}
	require.NoError(tc.T, tc.Zones.Create(context.Background(), zone))
	return zone
}

// CreateTestTable creates an active four-seat table in zone
func (tc *TestContext) CreateTestTable(zone *models.Zone, number int) *models.Table {
	tc.T.Helper()
	table := &models.Table{ZoneID: zone.ID, Number: number, Capacity: 4, Active: true}
	require.NoError(tc.T, tc.Tables.Create(context.Background(), table))
	return table
}

// ExecuteSQL executes a raw SQL query for testing
func (tc *TestContext) ExecuteSQL(query string, args ...interface{}) {
	tc.T.Helper()
	_, err := tc.DB.ExecContext(context.Background(), query, args...)
	require.NoError(tc.T, err)
}
