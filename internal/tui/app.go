// Package tui provides the interactive Bubble Tea dashboard for pocket.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pocket/internal/cli"
	"github.com/theirongolddev/pocket/internal/config"
	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/log"
	"github.com/theirongolddev/pocket/internal/tui/components"
	"github.com/theirongolddev/pocket/internal/tui/theme"
)

// OpenFunc loads the ledger the dashboard works on.
type OpenFunc func(ctx context.Context) (*ledger.Ledger, error)

// LedgerLoadedMsg is sent when the ledger finishes loading.
type LedgerLoadedMsg struct {
	Ledger *ledger.Ledger
	Err    error
}

// Options configures the dashboard.
type Options struct {
	// Open loads the ledger in the background. Ignored when Ledger is set.
	Open   OpenFunc
	Ledger *ledger.Ledger
	Lock   *ledger.EditLock
	Money  cli.Money
	Logger *log.Logger
	// NeedSetup shows the first-run wizard before the dashboard.
	NeedSetup bool
}

// Input slots, in focus order.
const (
	inputIncome = iota
	inputFixed
	inputAmount
	inputDescription
	inputCount
)

var inputLabels = [inputCount]string{
	inputIncome:      "Income",
	inputFixed:       "Fixed expenses",
	inputAmount:      "Amount",
	inputDescription: "Description",
}

// App is the root Bubble Tea model.
type App struct {
	ledger  *ledger.Ledger
	lock    *ledger.EditLock
	money   cli.Money
	logger  *log.Logger
	open    OpenFunc
	loaded  bool
	loadErr error

	inputs [inputCount]textinput.Model
	focus  int

	// UI state
	width     int
	height    int
	showHelp  bool
	status    string
	statusErr bool

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	minHistoryRows   = 3
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	lock := opts.Lock
	if lock == nil {
		lock = ledger.NewEditLock(ledger.Editable)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	a := App{
		lock:      lock,
		money:     opts.Money,
		logger:    logger.WithComponent(log.ComponentTUI),
		open:      opts.Open,
		needSetup: opts.NeedSetup,
		spinner:   sp,
	}
	for i := range a.inputs {
		a.inputs[i] = newInput(i)
	}

	if opts.NeedSetup {
		a.setupVals = SetupValuesFrom(config.DefaultConfig())
		a.setupForm = NewSetupForm(&a.setupVals)
	}
	if opts.Ledger != nil {
		a = a.withLedger(opts.Ledger)
	}
	return a
}

func newInput(slot int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 24
	switch slot {
	case inputIncome, inputFixed, inputAmount:
		ti.Placeholder = "0"
	case inputDescription:
		ti.Placeholder = "what was it?"
		ti.CharLimit = 80
	}
	return ti
}

// withLedger seeds the inputs from l and focuses the first visible input.
func (a App) withLedger(l *ledger.Ledger) App {
	a.ledger = l
	a.loaded = true

	a.inputs[inputIncome].SetValue(l.FixedIncome())
	a.inputs[inputFixed].SetValue(l.FixedExpenses())
	draft := l.Draft()
	a.inputs[inputAmount].SetValue(draft.Amount)
	a.inputs[inputDescription].SetValue(draft.Description)

	first := inputIncome
	if !a.lock.Editable() {
		first = inputAmount
	}
	a.setFocus(first)
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if !a.loaded {
		cmds = append(cmds, a.spinner.Tick, openLedgerCmd(a.open))
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

func openLedgerCmd(open OpenFunc) tea.Cmd {
	return func() tea.Msg {
		if open == nil {
			return LedgerLoadedMsg{Err: fmt.Errorf("no ledger to open")}
		}
		l, err := open(context.Background())
		return LedgerLoadedMsg{Ledger: l, Err: err}
	}
}

// Ledger returns the ledger the dashboard edits, nil before it has loaded.
func (a App) Ledger() *ledger.Ledger { return a.ledger }

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case LedgerLoadedMsg:
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.logger.Error("loading ledger", log.FieldOperation, log.OpLoad, log.FieldError, msg.Err)
			return a, nil
		}
		a = a.withLedger(msg.Ledger)
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if !a.loaded {
			if msg.String() == "q" || msg.String() == "esc" {
				return a, tea.Quit
			}
			return a, nil
		}

		if a.showHelp {
			switch msg.String() {
			case "f1", "esc", "q":
				a.showHelp = false
			}
			return a, nil
		}

		return a.handleKey(msg)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if a.loaded {
		var cmd tea.Cmd
		a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "f1":
		a.showHelp = true
		return a, nil
	case "tab", "down":
		return a, a.moveFocus(1)
	case "shift+tab", "up":
		return a, a.moveFocus(-1)
	case "ctrl+e":
		return a, a.toggleLock()
	case "enter":
		if a.focus == inputIncome || a.focus == inputFixed {
			return a, a.moveFocus(1)
		}
		a.commit()
		return a, nil
	}

	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	a.syncInput(a.focus)
	return a, cmd
}

// syncInput pushes the text of one input into the ledger. Fixed values are
// saved on every change; draft fields stay in memory until committed.
func (a *App) syncInput(slot int) {
	value := a.inputs[slot].Value()

	var err error
	switch slot {
	case inputIncome:
		if value == a.ledger.FixedIncome() || !a.lock.Editable() {
			return
		}
		err = a.ledger.SetFixedIncome(context.Background(), value)
	case inputFixed:
		if value == a.ledger.FixedExpenses() || !a.lock.Editable() {
			return
		}
		err = a.ledger.SetFixedExpenses(context.Background(), value)
	case inputAmount:
		a.ledger.UpdateDraft(ledger.FieldAmount, value)
		return
	case inputDescription:
		a.ledger.UpdateDraft(ledger.FieldDescription, value)
		return
	}

	if err != nil {
		a.setError(err)
		return
	}
	if a.statusErr {
		a.setStatus("saved")
	}
}

func (a *App) commit() {
	entry, ok, err := a.ledger.CommitDraft(context.Background())
	if !ok {
		a.setStatus("enter an amount and a description")
		return
	}

	a.inputs[inputAmount].SetValue("")
	a.inputs[inputDescription].SetValue("")
	a.setFocus(inputAmount)

	if err != nil {
		a.setError(err)
		return
	}
	a.setStatus(fmt.Sprintf("added %s %s", string(entry.Description), a.money.Format(entry.Amount.Number())))
}

func (a *App) toggleLock() tea.Cmd {
	state := a.lock.Toggle()
	a.logger.Debug("edit lock toggled", log.FieldOperation, log.OpToggle, log.FieldEditable, bool(state))
	a.setStatus("fixed values " + state.String())

	if !a.lock.Editable() && (a.focus == inputIncome || a.focus == inputFixed) {
		return a.setFocus(inputAmount)
	}
	return nil
}

// visibleInputs lists the input slots shown for the current lock state.
func (a App) visibleInputs() []int {
	if a.lock.Editable() {
		return []int{inputIncome, inputFixed, inputAmount, inputDescription}
	}
	return []int{inputAmount, inputDescription}
}

func (a *App) moveFocus(delta int) tea.Cmd {
	visible := a.visibleInputs()
	idx := 0
	for i, slot := range visible {
		if slot == a.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(visible)) % len(visible)
	return a.setFocus(visible[idx])
}

func (a *App) setFocus(slot int) tea.Cmd {
	a.focus = slot
	var cmd tea.Cmd
	for i := range a.inputs {
		if i == slot {
			cmd = a.inputs[i].Focus()
		} else {
			a.inputs[i].Blur()
		}
	}
	return cmd
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = "not saved: " + err.Error()
	a.statusErr = true
	a.logger.Warn("store write failed", log.FieldOperation, log.OpSave, log.FieldError, err)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, err := saveSetup(a.setupVals)
		if err != nil {
			a.setError(err)
		} else {
			a.setStatus("saved " + config.ConfigPath())
		}
		theme.SetActive(cfg.Appearance.Theme)
		a.money = cli.NewMoney(cfg.Appearance.Tag(), cfg.Appearance.CurrencySymbol, cfg.Appearance.SymbolFirst)
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  pocket needs at least %d columns.\n",
		a.width, minTerminalWidth)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ pocket"))
	b.WriteString("\n\n")
	if a.loadErr != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Render("Could not open the ledger:"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(a.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("Press q to quit"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(mutedStyle.Render(" Opening ledger..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	rows := []struct{ key, desc string }{
		{"tab / ↓", "next field"},
		{"shift+tab / ↑", "previous field"},
		{"enter", "add the expense"},
		{"ctrl+e", "lock or unlock income and fixed expenses"},
		{"f1", "toggle this help"},
		{"esc", "quit"},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(keyStyle.Render(r.key))
		b.WriteString(" ")
		b.WriteString(descStyle.Render(r.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("Changes to income and fixed expenses are saved as you type."))

	card := components.ContentCard("Keys", b.String(), 64, true)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewMain() string {
	t := theme.Active
	cw := a.contentWidth()

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	header := titleStyle.Render(" ◈ pocket") + "  " + components.LockBadge(a.lock.Editable())

	available := a.ledger.AvailableBalance()
	tone := components.TonePositive
	if available < 0 {
		tone = components.ToneNegative
	}
	metrics := components.MetricRow([]components.Metric{
		{Label: "Income", Value: a.money.Format(ledger.Number(a.ledger.FixedIncome()))},
		{Label: "Fixed", Value: a.money.Format(ledger.Number(a.ledger.FixedExpenses()))},
		{Label: "Spent", Value: a.money.Format(a.ledger.VariableTotal())},
		{Label: "Available", Value: a.money.Format(available), Tone: tone},
	}, cw)

	var forms string
	if a.lock.Editable() {
		widths := components.LayoutRow(cw, 2)
		forms = components.CardRow([]string{
			a.renderInputCard("Fixed", []int{inputIncome, inputFixed}, widths[0]),
			a.renderInputCard("New expense", []int{inputAmount, inputDescription}, widths[1]),
		})
	} else {
		forms = a.renderInputCard("New expense", []int{inputAmount, inputDescription}, cw)
	}

	statusBar := components.StatusBar{
		Hints:   "[tab] next  [enter] add  [ctrl+e] lock  [f1] help  [esc] quit",
		Message: a.status,
		IsError: a.statusErr,
	}.Render(cw)

	used := lipgloss.Height(header) + lipgloss.Height(metrics) + lipgloss.Height(forms) + lipgloss.Height(statusBar)
	// Card border and title take three lines.
	historyRows := a.height - used - 3
	if historyRows < minHistoryRows {
		historyRows = minHistoryRows
	}
	history := components.ContentCard("History", a.renderHistory(components.CardInnerWidth(cw), historyRows), cw, false)

	output := lipgloss.JoinVertical(lipgloss.Left, header, metrics, forms, history, statusBar)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Top, output)
}

func (a App) renderInputCard(title string, slots []int, outerWidth int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Width(16)
	focusLabel := labelStyle.Foreground(t.Accent).Bold(true)

	focused := false
	lines := make([]string, 0, len(slots))
	for _, slot := range slots {
		style := labelStyle
		if slot == a.focus {
			style = focusLabel
			focused = true
		}
		lines = append(lines, style.Render(inputLabels[slot])+a.inputs[slot].View())
	}
	return components.ContentCard(title, strings.Join(lines, "\n"), outerWidth, focused)
}

// renderHistory lists entries newest first, at most maxRows of them.
func (a App) renderHistory(width, maxRows int) string {
	t := theme.Active
	entries := a.ledger.EntriesDescending()
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No expenses yet.")
	}

	dateStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	descStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	amountStyle := lipgloss.NewStyle().Foreground(t.Negative)

	const dateWidth = len(cli.TimestampLayout)
	amountWidth := 14
	descWidth := width - dateWidth - amountWidth - 2
	if descWidth < 8 {
		descWidth = 8
	}

	shown := entries
	if len(shown) > maxRows {
		shown = shown[:maxRows-1]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, e := range shown {
		desc := cli.Truncate(string(e.Description), descWidth)
		amount := a.money.Format(e.Amount.Number())
		lines = append(lines,
			dateStyle.Render(cli.FormatTimestamp(e.CreatedAt()))+" "+
				descStyle.Render(cli.PadRight(desc, descWidth))+" "+
				amountStyle.Render(cli.PadLeft(amount, amountWidth)))
	}
	if hidden := len(entries) - len(shown); hidden > 0 {
		lines = append(lines, dateStyle.Render(fmt.Sprintf("… %d older", hidden)))
	}
	return strings.Join(lines, "\n")
}
