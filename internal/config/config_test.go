package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.Backend = "redis"
	cfg.Ledger.StartLocked = true
	cfg.Appearance.Theme = "tokyo-night"
	cfg.Appearance.Locale = "de"
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pocket"), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[ledger]\nstart_locked = true\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Ledger.StartLocked)
	assert.Equal(t, "sqlite", cfg.General.Backend)
	assert.Equal(t, "127.0.0.1:8787", cfg.Serve.Addr)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pocket"), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[general\n"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("POCKET_BACKEND", "memory")
	t.Setenv("POCKET_START_LOCKED", "true")
	t.Setenv("POCKET_REDIS_DB", "3")
	t.Setenv("POCKET_CURRENCY_SYMBOL", "€")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.General.Backend)
	assert.True(t, cfg.Ledger.StartLocked)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "€", cfg.Appearance.CurrencySymbol)
	assert.Equal(t, "pocket:", cfg.Redis.Prefix, "unset variables leave values alone")
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("POCKET_BACKEND", "memory")

	cfg, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.General.Backend)
}

func TestEnvOverrideBadValue(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("POCKET_REDIS_DB", "three")

	_, err := Load()
	assert.Error(t, err)
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/xdg-data/pocket", DataDir(cfg))
	assert.Equal(t, "/tmp/xdg-data/pocket/pocket.db", DBPath(cfg))

	cfg.General.DataDir = "/srv/pocket"
	assert.Equal(t, "/srv/pocket", DataDir(cfg))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(DefaultConfig()))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"backend", func(c *Config) { c.General.Backend = "etcd" }, "Backend"},
		{"theme", func(c *Config) { c.Appearance.Theme = "neon" }, "Theme"},
		{"serve addr", func(c *Config) { c.Serve.Addr = "nope" }, "Serve.Addr"},
		{"redis db", func(c *Config) { c.Redis.DB = 99 }, "Redis.DB"},
		{"events buffer", func(c *Config) { c.Serve.EventsBuffer = 0 }, "EventsBuffer"},
		{"locale", func(c *Config) { c.Appearance.Locale = "not a locale!" }, "Locale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAppearanceTag(t *testing.T) {
	assert.Equal(t, "de", AppearanceConfig{Locale: "de"}.Tag().String())
	assert.Equal(t, language.English.String(), AppearanceConfig{Locale: "??"}.Tag().String())
}
