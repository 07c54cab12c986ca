package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dentalcare/internal/kv"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, kv.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "memory", cfg.Broker.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "UTC", cfg.Clinic.Timezone)
	assert.True(t, cfg.Clinic.Seed)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
storage:
  driver: memory
auth:
  jwt_secret: from-file
  token_expiry: 2h
clinic:
  timezone: Europe/Berlin
`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, kv.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenExpiry)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, `
auth:
  jwt_secret: from-file
`)
	t.Setenv("DENTALCARE_AUTH_JWT_SECRET", "from-env")
	t.Setenv("DENTALCARE_SERVER_PORT", "7000")
	t.Setenv("DENTALCARE_STORAGE_KEY_PREFIX", "test:")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "test:", cfg.Storage.KeyPrefix)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown storage driver", "storage:\n  driver: mongo\n"},
		{"redis storage without url", "storage:\n  driver: redis\n"},
		{"redis broker without url", "broker:\n  driver: redis\n"},
		{"unknown broker", "broker:\n  driver: kafka\n"},
		{"bad timezone", "clinic:\n  timezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
