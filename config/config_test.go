package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-control-backend/internal/device"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "devices.db", cfg.Database.DSN)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)

	assert.False(t, cfg.Relay.Enabled)
	assert.True(t, cfg.Relay.IsActiveLow())
	assert.True(t, cfg.Relay.ShouldActuateOnToggle())
	assert.Equal(t, DefaultPins(), cfg.Relay.Pins)
}

func TestLoad_FullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  dsn: host=db user=relay dbname=relay sslmode=disable
  max_open_conns: 8
relay:
  enabled: true
  active_low: false
  actuate_on_toggle: false
  pins:
    1: 5
    6: 6
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 8, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Relay.Enabled)
	assert.False(t, cfg.Relay.IsActiveLow())
	assert.False(t, cfg.Relay.ShouldActuateOnToggle())
	assert.Equal(t, map[int]int{1: 5, 6: 6}, cfg.Relay.Pins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RELAYD_PORT", "8123")
	t.Setenv("RELAYD_DATABASE_DSN", "/var/lib/relayd/devices.db")
	t.Setenv("RELAYD_RELAY_ENABLED", "true")

	cfg, err := Load(writeConfig(t, "server:\n  port: 1\n"))
	require.NoError(t, err)

	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "/var/lib/relayd/devices.db", cfg.Database.DSN)
	assert.True(t, cfg.Relay.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"unknown driver", "database:\n  driver: oracle\n  dsn: x\n"},
		{"postgres without dsn", "database:\n  driver: postgres\n"},
		{"port out of range", "relay:\n  pins:\n    7: 17\n"},
		{"duplicate pin", "relay:\n  pins:\n    1: 17\n    2: 17\n"},
		{"malformed yaml", "server: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_PinPortOutOfRangeIsValidationError(t *testing.T) {
	for _, port := range []int{0, 7} {
		cfg := Config{Database: DatabaseConfig{Driver: DriverSQLite, DSN: "x"}, Relay: RelayConfig{Pins: map[int]int{port: 17}}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, device.IsKind(err, device.KindValidation), "port %d: %v", port, err)
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.False(t, cfg.Relay.Enabled)
	assert.Len(t, cfg.Relay.Pins, 4)
}

func TestDefault_EnvOverrides(t *testing.T) {
	t.Setenv("RELAYD_PORT", "9000")
	t.Setenv("RELAYD_RELAY_ENABLED", "true")
	t.Setenv("RELAYD_DATABASE_DSN", "/var/lib/relayd/devices.db")

	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Relay.Enabled)
	assert.Equal(t, "/var/lib/relayd/devices.db", cfg.Database.DSN)
}

func TestDefault_InvalidEnv(t *testing.T) {
	testCases := []struct {
		name, key, value string
	}{
		{"non-numeric port", "RELAYD_PORT", "eighty"},
		{"non-boolean relay flag", "RELAYD_RELAY_ENABLED", "maybe"},
		{"unknown driver", "RELAYD_DATABASE_DRIVER", "oracle"},
		{"postgres without dsn", "RELAYD_DATABASE_DRIVER", "postgres"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Default()
			assert.Error(t, err)
		})
	}
}
