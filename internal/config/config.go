package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all pocket configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Redis      RedisConfig      `toml:"redis"`
	Serve      ServeConfig      `toml:"serve"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig selects where the ledger lives.
type GeneralConfig struct {
	Backend string `toml:"backend" validate:"oneof=sqlite redis memory"`
	DataDir string `toml:"data_dir,omitempty"`
}

// LedgerConfig holds ledger behavior settings.
type LedgerConfig struct {
	// StartLocked makes the fixed values read-only until toggled.
	StartLocked bool `toml:"start_locked"`
}

// RedisConfig holds settings for the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" validate:"omitempty,hostname_port"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db" validate:"gte=0,lte=15"`
	Prefix   string `toml:"prefix"`
}

// ServeConfig holds settings for the local HTTP API.
type ServeConfig struct {
	Addr string `toml:"addr" validate:"hostname_port"`
	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit    int `toml:"rate_limit" validate:"gte=0"`
	EventsBuffer int `toml:"events_buffer" validate:"gte=1,lte=10000"`
}

// AppearanceConfig holds theme and number formatting settings.
type AppearanceConfig struct {
	Theme          string `toml:"theme" validate:"oneof=flexoki-dark tokyo-night terminal"`
	Locale         string `toml:"locale" validate:"required"`
	CurrencySymbol string `toml:"currency_symbol"`
	SymbolFirst    bool   `toml:"symbol_first"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Backend: "sqlite",
		},
		Redis: RedisConfig{
			Addr:   "127.0.0.1:6379",
			Prefix: "pocket:",
		},
		Serve: ServeConfig{
			Addr:         "127.0.0.1:8787",
			RateLimit:    120,
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme:          "flexoki-dark",
			Locale:         "en",
			CurrencySymbol: "$",
			SymbolFirst:    true,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pocket")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pocket")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the directory holding the database, pid and state files.
// An explicit data_dir wins over the XDG default.
func DataDir(cfg Config) string {
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pocket")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "pocket")
}

// DBPath returns the SQLite database path.
func DBPath(cfg Config) string {
	return filepath.Join(DataDir(cfg), "pocket.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads the config file without environment overrides. Use it when
// the result is written back to disk.
func LoadFile() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
