// Package cmd implements the pocket CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/cli"
	"github.com/theirongolddev/pocket/internal/config"
	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/log"
	"github.com/theirongolddev/pocket/internal/store"
)

var (
	flagBackend string
	flagDataDir string
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:          "pocket",
	Short:        "A small personal budget ledger",
	Long:         "Track fixed income, fixed expenses and everyday spending, and see what is left.",
	RunE:         runSummary,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "  Ignoring .env: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Storage backend (sqlite, redis, memory)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding the ledger database")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.General.Backend = flagBackend
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	lc := log.DefaultConfig()
	switch {
	case flagVerbose:
		lc.Level = slog.LevelDebug
	case flagQuiet:
		lc.Level = slog.LevelError
	}
	return log.New(lc)
}

func storeOptions(cfg config.Config) store.Options {
	return store.Options{
		Backend:    store.Backend(cfg.General.Backend),
		SQLitePath: config.DBPath(cfg),
		Redis: store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		},
	}
}

func moneyFor(cfg config.Config) cli.Money {
	return cli.NewMoney(cfg.Appearance.Tag(), cfg.Appearance.CurrencySymbol, cfg.Appearance.SymbolFirst)
}

func initialLock(cfg config.Config) *ledger.EditLock {
	return ledger.NewEditLock(ledger.LockState(!cfg.Ledger.StartLocked))
}

// runtime bundles what most commands need: config, logger, an open store
// and the ledger loaded from it.
type runtime struct {
	cfg    config.Config
	logger *log.Logger
	kv     store.KV
	ledger *ledger.Ledger
	money  cli.Money
}

// openRuntime loads config, store and ledger. Commands that write pass
// writable so they back off while a server owns the ledger.
func openRuntime(ctx context.Context, writable bool) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if writable {
		if err := ensureNoServer(cfg); err != nil {
			return nil, err
		}
	}
	logger := newLogger()

	kv, err := store.Open(ctx, storeOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.General.Backend, err)
	}
	logger.Debug("store opened", log.FieldBackend, cfg.General.Backend)

	l, err := ledger.Open(ctx, kv, ledger.WithLogger(logger))
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		kv:     kv,
		ledger: l,
		money:  moneyFor(cfg),
	}, nil
}

var errServerRunning = errors.New("a pocket server owns this ledger")

// ensureNoServer fails when a live `pocket serve` uses the same data dir.
// The server keeps the ledger in memory and rewrites every key on each
// change, so a second writer's changes would be lost.
func ensureNoServer(cfg config.Config) error {
	if cfg.General.Backend == string(store.BackendMemory) {
		return nil
	}
	paths := resolveServePaths(cfg)
	pid, err := paths.pidFile.read()
	if err != nil || !processAlive(pid) {
		return nil
	}
	addr := paths.addr
	if st, err := paths.pidFile.readState(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	return fmt.Errorf("%w (pid %d): send changes to http://%s/v1 or run `pocket serve stop` first",
		errServerRunning, pid, addr)
}

func (r *runtime) Close() {
	if err := r.kv.Close(); err != nil {
		r.logger.Warn("closing store", log.FieldError, err)
	}
}
