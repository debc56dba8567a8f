package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/config"
	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/log"
	"github.com/theirongolddev/pocket/internal/store"
	"github.com/theirongolddev/pocket/internal/tui"
	"github.com/theirongolddev/pocket/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive budget dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := ensureNoServer(cfg); err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines tear the alternate screen, so stay quiet unless asked.
	logger := newLogger()
	if !flagVerbose {
		logger = log.Discard()
	}

	kv, err := store.Open(cmd.Context(), storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.General.Backend, err)
	}
	defer func() { _ = kv.Close() }()

	app := tui.NewApp(tui.Options{
		Open: func(ctx context.Context) (*ledger.Ledger, error) {
			return ledger.Open(ctx, kv, ledger.WithLogger(logger))
		},
		Lock:      initialLock(cfg),
		Money:     moneyFor(cfg),
		Logger:    logger,
		NeedSetup: !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
