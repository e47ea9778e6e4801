package database_test

import (
	"context"
	"floorkeeper/internal/config"
	"floorkeeper/internal/database"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "floor",
		Password:        "p@ss:w/rd",
		DBName:          "floorkeeper",
		SSLMode:         "require",
		MigrationsPath:  "migrations",
		MaxOpenConns:    7,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"host=db.internal port=5433 user=floor password=p@ss:w/rd dbname=floorkeeper sslmode=require",
		database.DSN(testConfig()))
}

func TestMigrationURL(t *testing.T) {
	raw := database.MigrationURL(testConfig())

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5433", u.Host)
	assert.Equal(t, "/floorkeeper", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))

	password, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss:w/rd", password)
	assert.Equal(t, "floor", u.User.Username())
}

func TestOpen_AppliesPoolLimits(t *testing.T) {
	db, err := database.Open(testConfig())
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestMigrate_MissingDirectory(t *testing.T) {
	cfg := testConfig()
	cfg.MigrationsPath = t.TempDir() + "/absent"

	err := database.Migrate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations directory does not exist")
}

func TestSetup_UnreachableServer(t *testing.T) {
	cfg := testConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.SSLMode = "disable"

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := database.Setup(ctx, cfg)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "not reachable")
}
