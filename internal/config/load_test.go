package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Search.TaskTimeout)
	assert.Equal(t, 10, cfg.Search.MaxConcurrentTasks)
	assert.Equal(t, 1000, cfg.Search.MaxTotalTasks)
	assert.Equal(t, "https://api.openalex.org/", cfg.Source.OpenAlexBaseURL)
	assert.Equal(t, "@every 1h", cfg.Maintenance.CacheSweepSchedule)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PAPERTRAIL_SERVER_PORT", "9090")
	t.Setenv("PAPERTRAIL_SERVER_LOG_LEVEL", "debug")
	t.Setenv("PAPERTRAIL_SEARCH_MAX_TOTAL_TASKS", "50")
	t.Setenv("PAPERTRAIL_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 50, cfg.Search.MaxTotalTasks)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PAPERTRAIL_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestLoadRejectsInvalidDatabaseURL(t *testing.T) {
	t.Setenv("PAPERTRAIL_DATABASE_URL", "not-a-url")

	_, err := Load()
	require.Error(t, err)
}
