package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/pocket/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, n := range []int{1, 3, 4, 7} {
		widths := LayoutRow(100, n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != 100 {
			t.Errorf("LayoutRow(100, %d) sums to %d", n, sum)
		}
		if widths[0] < widths[len(widths)-1] {
			t.Errorf("first column should absorb the remainder: %v", widths)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestContentCardWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	for _, focused := range []bool{false, true} {
		card := ContentCard("History", "lunch  $300", 40, focused)
		if w := lipgloss.Width(card); w != 40 {
			t.Errorf("focused=%v: card width = %d, want 40", focused, w)
		}
		if !strings.Contains(card, "History") {
			t.Errorf("card missing title:\n%s", card)
		}
	}
}

func TestCardRowMatchesTallestCard(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30, false)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20, false)

	joined := CardRow([]string{tallCard, shortCard})
	if got, want := lipgloss.Height(joined), lipgloss.Height(tallCard); got != want {
		t.Errorf("joined height = %d, want %d", got, want)
	}
	if got := lipgloss.Width(joined); got != 50 {
		t.Errorf("joined width = %d, want 50", got)
	}
}

func TestMetricRow(t *testing.T) {
	theme.SetActive("terminal")
	defer theme.SetActive("flexoki-dark")

	row := MetricRow([]Metric{
		{Label: "Income", Value: "$5,000"},
		{Label: "Available", Value: "-$20", Tone: ToneNegative},
	}, 60)

	if w := lipgloss.Width(row); w != 60 {
		t.Errorf("row width = %d, want 60", w)
	}
	for _, want := range []string{"Income", "$5,000", "Available", "-$20"} {
		if !strings.Contains(row, want) {
			t.Errorf("row missing %q", want)
		}
	}
	if MetricRow(nil, 60) != "" {
		t.Error("empty metric row should render nothing")
	}
}

func TestStatusBar(t *testing.T) {
	bar := StatusBar{Hints: "[tab] next", Message: "saved"}.Render(60)
	if w := lipgloss.Width(bar); w != 60 {
		t.Errorf("status bar width = %d, want 60", w)
	}
	if !strings.Contains(bar, "saved") || !strings.Contains(bar, "[tab] next") {
		t.Errorf("status bar content wrong: %q", bar)
	}
}

func TestLockBadge(t *testing.T) {
	if !strings.Contains(LockBadge(true), "editable") {
		t.Error("editable badge wrong")
	}
	if !strings.Contains(LockBadge(false), "locked") {
		t.Error("locked badge wrong")
	}
}
