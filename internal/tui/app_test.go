package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pocket/internal/config"
	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/store"
)

func newTestApp(t *testing.T, initial ledger.LockState) (App, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	l, err := ledger.Open(context.Background(), mem)
	require.NoError(t, err)

	a := NewApp(Options{Ledger: l, Lock: ledger.NewEditLock(initial)})
	a = send(a, tea.WindowSizeMsg{Width: 100, Height: 40})
	return a, mem
}

func send(a App, msg tea.Msg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

func typeText(a App, s string) App {
	return send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(a App, k tea.KeyType) App {
	return send(a, tea.KeyMsg{Type: k})
}

func TestTypingFixedValuesSavesLive(t *testing.T) {
	a, mem := newTestApp(t, ledger.Editable)
	require.Equal(t, inputIncome, a.focus)

	a = typeText(a, "5000")
	assert.Equal(t, "5000", a.Ledger().FixedIncome())

	raw, ok, err := mem.Load(context.Background(), ledger.KeyIncome)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"5000"`, raw)

	a = press(a, tea.KeyTab)
	require.Equal(t, inputFixed, a.focus)
	a = typeText(a, "300")
	assert.Equal(t, "300", a.Ledger().FixedExpenses())
	assert.Equal(t, 4700.0, a.Ledger().AvailableBalance())
}

func TestCommitExpense(t *testing.T) {
	a, _ := newTestApp(t, ledger.Editable)

	a = press(a, tea.KeyTab)
	a = press(a, tea.KeyTab)
	require.Equal(t, inputAmount, a.focus)
	a = typeText(a, "50")
	a = press(a, tea.KeyTab)
	a = typeText(a, "tea")
	assert.Equal(t, ledger.Draft{Amount: "50", Description: "tea"}, a.Ledger().Draft())

	a = press(a, tea.KeyEnter)

	entries := a.Ledger().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.Text("tea"), entries[0].Description)
	assert.Equal(t, ledger.Draft{}, a.Ledger().Draft())
	assert.Empty(t, a.inputs[inputAmount].Value())
	assert.Empty(t, a.inputs[inputDescription].Value())
	assert.Equal(t, inputAmount, a.focus)
	assert.Contains(t, a.status, "added tea")
}

func TestEnterWithIncompleteDraftIsNoop(t *testing.T) {
	a, _ := newTestApp(t, ledger.Locked)
	require.Equal(t, inputAmount, a.focus, "locked dashboard starts on the amount")

	a = typeText(a, "50")
	a = press(a, tea.KeyEnter)

	assert.Empty(t, a.Ledger().Entries())
	assert.Equal(t, "50", a.inputs[inputAmount].Value(), "draft text kept")
	assert.Equal(t, "50", a.Ledger().Draft().Amount)
}

func TestToggleLockHidesFixedInputs(t *testing.T) {
	a, _ := newTestApp(t, ledger.Editable)
	assert.Contains(t, a.View(), "Income")

	a = press(a, tea.KeyCtrlE)
	assert.False(t, a.lock.Editable())
	assert.Equal(t, inputAmount, a.focus, "focus leaves the hidden inputs")
	assert.NotContains(t, a.View(), "Fixed expenses")
	assert.Contains(t, a.View(), "locked")

	// Focus cycles through the expense inputs only.
	a = press(a, tea.KeyTab)
	assert.Equal(t, inputDescription, a.focus)
	a = press(a, tea.KeyTab)
	assert.Equal(t, inputAmount, a.focus)

	a = press(a, tea.KeyCtrlE)
	assert.True(t, a.lock.Editable())
	assert.Contains(t, a.View(), "Fixed expenses")
}

func TestViewShowsBalanceAndHistory(t *testing.T) {
	mem := store.NewMemory()
	l, err := ledger.Open(context.Background(), mem)
	require.NoError(t, err)
	require.NoError(t, l.SetFixedIncome(context.Background(), "200000"))
	require.NoError(t, l.SetFixedExpenses(context.Background(), "50000"))
	l.UpdateDraft(ledger.FieldAmount, "10000")
	l.UpdateDraft(ledger.FieldDescription, "groceries")
	_, ok, err := l.CommitDraft(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	a := NewApp(Options{Ledger: l})
	a = send(a, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := a.View()
	for _, want := range []string{"$200,000", "$50,000", "$10,000", "$140,000", "groceries"} {
		assert.Contains(t, view, want)
	}
}

func TestHistoryAlignsWideDescriptions(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Open(ctx, store.NewMemory())
	require.NoError(t, err)
	for _, e := range [][2]string{{"500", "lunch"}, {"1200", "食料品の買い物"}} {
		l.UpdateDraft(ledger.FieldAmount, e[0])
		l.UpdateDraft(ledger.FieldDescription, e[1])
		_, ok, err := l.CommitDraft(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}

	a := NewApp(Options{Ledger: l})
	lines := strings.Split(a.renderHistory(60, 10), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	assert.Equal(t, 60, lipgloss.Width(lines[0]))
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (string, bool, error) { return "", false, nil }
func (brokenStore) Save(context.Context, string, string) error        { return errors.New("read-only") }

func TestStoreErrorShownInStatus(t *testing.T) {
	l, err := ledger.Open(context.Background(), brokenStore{})
	require.NoError(t, err)
	a := NewApp(Options{Ledger: l})
	a = send(a, tea.WindowSizeMsg{Width: 100, Height: 40})

	a = typeText(a, "9")
	assert.True(t, a.statusErr)
	assert.Contains(t, a.status, "read-only")
	assert.Equal(t, "9", a.Ledger().FixedIncome(), "in-memory value kept")
}

func TestLoadingThenLoaded(t *testing.T) {
	l, err := ledger.Open(context.Background(), store.NewMemory())
	require.NoError(t, err)

	a := NewApp(Options{Open: func(context.Context) (*ledger.Ledger, error) { return l, nil }})
	a = send(a, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Contains(t, a.View(), "Opening ledger")

	msg := openLedgerCmd(a.open)()
	a = send(a, msg)
	assert.True(t, a.loaded)
	assert.Same(t, l, a.Ledger())
}

func TestLoadErrorShown(t *testing.T) {
	a := NewApp(Options{Open: func(context.Context) (*ledger.Ledger, error) {
		return nil, errors.New("redis unreachable")
	}})
	a = send(a, tea.WindowSizeMsg{Width: 100, Height: 40})
	a = send(a, openLedgerCmd(a.open)())

	assert.False(t, a.loaded)
	assert.Contains(t, a.View(), "redis unreachable")
}

func TestHelpToggle(t *testing.T) {
	a, _ := newTestApp(t, ledger.Editable)
	a = press(a, tea.KeyF1)
	assert.True(t, a.showHelp)
	assert.Contains(t, a.View(), "ctrl+e")

	a = press(a, tea.KeyEsc)
	assert.False(t, a.showHelp)
}

func TestTooNarrow(t *testing.T) {
	a, _ := newTestApp(t, ledger.Editable)
	a = send(a, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.True(t, strings.Contains(a.View(), "too narrow"))
}

func TestSetupValuesRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	v := SetupValuesFrom(cfg)
	v.Theme = "terminal"
	v.Locale = " de "
	v.StartLocked = true
	v.Apply(&cfg)

	assert.Equal(t, "terminal", cfg.Appearance.Theme)
	assert.Equal(t, "de", cfg.Appearance.Locale)
	assert.True(t, cfg.Ledger.StartLocked)
	assert.NoError(t, config.Validate(cfg))
}

func TestValidateLocale(t *testing.T) {
	assert.NoError(t, validateLocale("fr-CH"))
	assert.Error(t, validateLocale(""))
	assert.Error(t, validateLocale("not a locale!"))
}

func TestSaveSetupWritesConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v := SetupValuesFrom(config.DefaultConfig())
	v.Backend = "memory"
	cfg, err := saveSetup(v)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.General.Backend)

	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", loaded.General.Backend)
}
