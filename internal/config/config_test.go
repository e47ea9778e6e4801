package config

import (
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

// TestLoadFromEnv tests loading configuration from environment variables
func TestLoadFromEnv(t *testing.T) {
	// Load test environment
	err := godotenv.Load("../../.env.test")
	require.NoError(t, err, "Failed to load .env.test file")

	cfg := &Config{}
	err = cfg.LoadFromEnv()
	require.NoError(t, err)

	// Verify configuration values
	require.Equal(t, "8080", cfg.API.Port)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "floorkeeper_test", cfg.Database.DBName)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, 20, cfg.Database.MaxOpenConns)
	require.Equal(t, 5, cfg.Database.MaxIdleConns)
	require.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	require.Equal(t, "test_secret_key", cfg.Auth.JWTSecret)
	require.Equal(t, 12, cfg.Auth.JWTExpiration)
	require.Equal(t, StoreDriverMemory, cfg.Engine.StoreDriver)
	require.Equal(t, "America/Mexico_City", cfg.Engine.Timezone)
	require.Equal(t, 2*time.Second, cfg.Engine.LockTimeout)
	require.Equal(t, ZonePolicyAdvisory, cfg.Engine.ZoneReservationPolicy)
	require.Equal(t, 120, cfg.Engine.DefaultReservationMinutes)
	require.Equal(t, "*/5 * * * *", cfg.Engine.SweepSchedule)
	require.False(t, cfg.Engine.SweepEnabled)
	require.False(t, cfg.Cache.Enabled)
	require.False(t, cfg.Events.Enabled)
	require.Equal(t, "America/Mexico_City", cfg.Engine.Location().String())
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "Missing JWT secret",
			env:  map[string]string{"JWT_SECRET": ""},
		},
		{
			name: "Invalid timezone",
			env:  map[string]string{"JWT_SECRET": "x", "RESTAURANT_TIMEZONE": "Mars/Olympus"},
		},
		{
			name: "Unknown store driver",
			env:  map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "mongo"},
		},
		{
			name: "Unknown zone policy",
			env:  map[string]string{"JWT_SECRET": "x", "ZONE_RESERVATION_POLICY": "maybe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := &Config{}
			require.Error(t, cfg.LoadFromEnv())
		})
	}
}
