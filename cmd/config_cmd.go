package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagBackend != "" {
		cfg.General.Backend = flagBackend
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Printf("  Invalid: %v\n", err)
	}
	fmt.Println()

	writeConfig(os.Stdout, cfg)

	fmt.Println("  Run `pocket setup` to reconfigure.")
	return nil
}

func writeConfig(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "  [General]")
	fmt.Fprintf(w, "    Backend:   %s\n", cfg.General.Backend)
	fmt.Fprintf(w, "    Data dir:  %s\n", config.DataDir(cfg))
	if cfg.General.Backend == "sqlite" {
		fmt.Fprintf(w, "    Database:  %s\n", config.DBPath(cfg))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Ledger]")
	fmt.Fprintf(w, "    Start locked: %v\n", cfg.Ledger.StartLocked)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Redis]")
	fmt.Fprintf(w, "    Address:  %s\n", cfg.Redis.Addr)
	if cfg.Redis.Password != "" {
		fmt.Fprintf(w, "    Password: %s\n", maskSecret(cfg.Redis.Password))
	} else {
		fmt.Fprintln(w, "    Password: not set")
	}
	fmt.Fprintf(w, "    DB:       %d\n", cfg.Redis.DB)
	fmt.Fprintf(w, "    Prefix:   %s\n", cfg.Redis.Prefix)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Serve]")
	fmt.Fprintf(w, "    Address:       %s\n", cfg.Serve.Addr)
	if cfg.Serve.RateLimit > 0 {
		fmt.Fprintf(w, "    Rate limit:    %d req/min\n", cfg.Serve.RateLimit)
	} else {
		fmt.Fprintln(w, "    Rate limit:    off")
	}
	fmt.Fprintf(w, "    Events buffer: %d\n", cfg.Serve.EventsBuffer)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Appearance]")
	fmt.Fprintf(w, "    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Fprintf(w, "    Locale:   %s\n", cfg.Appearance.Locale)
	fmt.Fprintf(w, "    Sample:   %s\n", moneyFor(cfg).Format(1234567.5))
	fmt.Fprintln(w)
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
