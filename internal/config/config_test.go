package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/monsterbox/backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Server.BindAddr)
	assert.Equal(t, "./data", cfg.Content.DataDir)
	assert.Equal(t, ".docx", cfg.Content.DocExtension)
	assert.Equal(t, 10, cfg.Cache.BatchSize)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_BIND_ADDR", ":9090")
	t.Setenv("CONTENT_DATA_DIR", "/srv/corpus")
	t.Setenv("CACHE_BATCH_SIZE", "25")
	t.Setenv("SERVER_READ_TIMEOUT", "30s")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Server.BindAddr)
	assert.Equal(t, "/srv/corpus", cfg.Content.DataDir)
	assert.Equal(t, 25, cfg.Cache.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("CACHE_BATCH_SIZE", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg := config.Load()

	assert.Equal(t, 10, cfg.Cache.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}
