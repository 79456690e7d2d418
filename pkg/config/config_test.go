package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"CONFIG_FILE", "SERVER_HOST", "SERVER_PORT", "ENV", "DB_TYPE", "DATABASE_URL", "SQLITE_PATH",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_ENABLED", "REDIS_DB", "REDIS_TTL", "OPS_ADDR", "LOG_LEVEL",
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "./data/elective_advisor.db?mode=rwc&cache=shared&timeout=5000", cfg.Database.DSN)
	assert.Equal(t, "./data/elective_advisor.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Ops.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Postgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "advisor")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "host=db.internal port=5432 user=postgres password=postgres dbname=advisor sslmode=disable", cfg.Database.DSN)
	assert.Empty(t, cfg.Database.Path)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "advisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
  env: production
redis:
  enabled: true
  addr: cache:6379
  ttl: 30s
log:
  level: warn
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "production", cfg.Server.Env)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "defaults survive a partial file")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown database", map[string]string{"DB_TYPE": "mysql"}},
		{"bad redis flag", map[string]string{"REDIS_ENABLED": "maybe"}},
		{"bad redis db", map[string]string{"REDIS_DB": "zero"}},
		{"bad ttl", map[string]string{"REDIS_TTL": "soon"}},
		{"non-positive ttl", map[string]string{"REDIS_ENABLED": "true", "REDIS_TTL": "0s"}},
		{"missing file", map[string]string{"CONFIG_FILE": "/nonexistent/advisor.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.Error(t, err)
		})
	}
}
