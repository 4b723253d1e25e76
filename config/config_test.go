package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090
db_path = ":memory:"

[price]
refresh_interval = "30s"
fallback_usd = -1

[calculator]
default_growth_rate = 250.0
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Server.DBPath)
	assert.Equal(t, 30*time.Second, cfg.Price.RefreshInterval)
	assert.Equal(t, DefaultConfig().Price.FallbackUSD, cfg.Price.FallbackUSD)
	assert.Equal(t, 70.0, cfg.Calculator.DefaultGrowthRate)
	// Untouched sections keep their defaults.
	assert.Equal(t, 15*time.Minute, cfg.Price.StaleAfter)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("VESTING_DB_PATH", "/tmp/x.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/x.db", cfg.Server.DBPath)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Server.Port = 4242
	cfg.Price.Offline = true

	require.NoError(t, Save(cfg, path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, loaded.Server.Port)
	assert.True(t, loaded.Price.Offline)
}
