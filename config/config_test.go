package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  driver: memory
outbox:
  poll_interval: 500ms
cors:
  allow_origins:
    - http://reception.local
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, []string{"http://reception.local"}, cfg.CORS.AllowOrigins)

	// untouched sections keep their defaults
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, "hospital.timeline", cfg.Outbox.Channel)
	assert.True(t, cfg.Workflow.Atomic)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.DoctorCache.TTL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  host: db.internal\n")
	t.Setenv("HOSPITAL_DATABASE_HOST", "db.override")
	t.Setenv("HOSPITAL_WORKFLOW_ATOMIC", "false")
	t.Setenv("HOSPITAL_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("HOSPITAL_OUTBOX_RETENTION", "48h")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.False(t, cfg.Workflow.Atomic)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, 48*time.Hour, cfg.Outbox.Retention)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "storage:\n  driver: sqlite\n"))
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestRouterConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "rate_limit:\n  enabled: true\n  requests_per_second: 5\n  burst: 10\n"))
	require.NoError(t, err)

	rc := cfg.RouterConfig()
	assert.True(t, rc.RateLimit.Enabled)
	assert.Equal(t, 10, rc.RateLimit.Burst)
	assert.Equal(t, 60, rc.DoctorCache.MaxAge)
	assert.Equal(t, int64(1<<20), rc.SizeLimit.MaxBodySize)
}
