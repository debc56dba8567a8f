package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "POCKET"

// envOverrides mirrors the settings that may be set from the environment.
// Nil fields were not set.
type envOverrides struct {
	Backend        *string `envconfig:"BACKEND"`
	DataDir        *string `envconfig:"DATA_DIR"`
	StartLocked    *bool   `envconfig:"START_LOCKED"`
	RedisAddr      *string `envconfig:"REDIS_ADDR"`
	RedisPassword  *string `envconfig:"REDIS_PASSWORD"`
	RedisDB        *int    `envconfig:"REDIS_DB"`
	RedisPrefix    *string `envconfig:"REDIS_PREFIX"`
	ServeAddr      *string `envconfig:"SERVE_ADDR"`
	RateLimit      *int    `envconfig:"RATE_LIMIT"`
	Theme          *string `envconfig:"THEME"`
	Locale         *string `envconfig:"LOCALE"`
	CurrencySymbol *string `envconfig:"CURRENCY_SYMBOL"`
}

// ApplyEnv overlays POCKET_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	setString(&cfg.General.Backend, env.Backend)
	setString(&cfg.General.DataDir, env.DataDir)
	if env.StartLocked != nil {
		cfg.Ledger.StartLocked = *env.StartLocked
	}
	setString(&cfg.Redis.Addr, env.RedisAddr)
	setString(&cfg.Redis.Password, env.RedisPassword)
	if env.RedisDB != nil {
		cfg.Redis.DB = *env.RedisDB
	}
	setString(&cfg.Redis.Prefix, env.RedisPrefix)
	setString(&cfg.Serve.Addr, env.ServeAddr)
	if env.RateLimit != nil {
		cfg.Serve.RateLimit = *env.RateLimit
	}
	setString(&cfg.Appearance.Theme, env.Theme)
	setString(&cfg.Appearance.Locale, env.Locale)
	setString(&cfg.Appearance.CurrencySymbol, env.CurrencySymbol)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
