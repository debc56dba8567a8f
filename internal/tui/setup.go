package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/text/language"

	"github.com/theirongolddev/pocket/internal/config"
	"github.com/theirongolddev/pocket/internal/tui/theme"
)

// SetupValues holds the answers of the first-run wizard.
type SetupValues struct {
	Backend        string
	Theme          string
	Locale         string
	CurrencySymbol string
	SymbolFirst    bool
	StartLocked    bool
}

// SetupValuesFrom seeds the wizard with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Backend:        cfg.General.Backend,
		Theme:          cfg.Appearance.Theme,
		Locale:         cfg.Appearance.Locale,
		CurrencySymbol: cfg.Appearance.CurrencySymbol,
		SymbolFirst:    cfg.Appearance.SymbolFirst,
		StartLocked:    cfg.Ledger.StartLocked,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.Backend = v.Backend
	cfg.Appearance.Theme = v.Theme
	cfg.Appearance.Locale = strings.TrimSpace(v.Locale)
	cfg.Appearance.CurrencySymbol = strings.TrimSpace(v.CurrencySymbol)
	cfg.Appearance.SymbolFirst = v.SymbolFirst
	cfg.Ledger.StartLocked = v.StartLocked
}

// NewSetupForm builds the wizard. Answers are written into v as the user
// moves through the form.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to pocket").
				Description("A small budget: fixed income, fixed expenses,\nand the everyday spending in between."),
			huh.NewSelect[string]().
				Title("Where should the ledger be stored?").
				Options(
					huh.NewOption("SQLite file (recommended)", "sqlite"),
					huh.NewOption("Redis server", "redis"),
					huh.NewOption("Memory only (nothing is saved)", "memory"),
				).
				Value(&v.Backend),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewInput().
				Title("Number locale").
				Description("BCP 47 tag used for digit grouping, e.g. en, de, fr-CH").
				Value(&v.Locale).
				Validate(validateLocale),
			huh.NewInput().
				Title("Currency symbol").
				Description("Leave empty for bare numbers").
				CharLimit(4).
				Value(&v.CurrencySymbol),
			huh.NewConfirm().
				Title("Put the currency symbol before the amount?").
				Value(&v.SymbolFirst),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Start with income and fixed expenses locked?").
				Description("Toggle with ctrl+e in the dashboard.").
				Affirmative("Locked").
				Negative("Editable").
				Value(&v.StartLocked),
		),
	).WithTheme(huh.ThemeBase16())
}

func validateLocale(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("a locale is required")
	}
	if _, err := language.Parse(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("not a valid locale: %w", err)
	}
	return nil
}

// saveSetup merges the wizard answers into the stored configuration.
func saveSetup(v SetupValues) (config.Config, error) {
	cfg, err := config.LoadFile()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	v.Apply(&cfg)
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, config.Save(cfg)
}
