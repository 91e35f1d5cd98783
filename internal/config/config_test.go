package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURL)
	assert.Equal(t, "streaming_analytics", cfg.Store.Database)
	assert.Equal(t, 5000, cfg.Store.BatchSize)
	assert.Equal(t, 200, cfg.Generator.Movies)
	assert.Equal(t, 5000, cfg.Generator.Users)
	assert.Equal(t, 50000, cfg.Generator.Sessions)
	assert.Equal(t, 20000, cfg.Generator.Ratings)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  mongo_url: "mongodb://db:27017"
  database: "analytics_test"
  batch_size: 100
generator:
  movies: 10
  users: 20
  sessions: 50
  ratings: 30
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.MongoURL)
	assert.Equal(t, "analytics_test", cfg.Store.Database)
	assert.Equal(t, 100, cfg.Store.BatchSize)
	assert.Equal(t, 10, cfg.Generator.Movies)
	assert.Equal(t, 50, cfg.Generator.Sessions)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://override:27017")
	t.Setenv("DB_NAME", "override_db")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mongodb://override:27017", cfg.Store.MongoURL)
	assert.Equal(t, "override_db", cfg.Store.Database)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: ["), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRepairsBatchSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  batch_size: -1\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Store.BatchSize)
}
