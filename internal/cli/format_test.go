package cli

import (
	"math"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name  string
		money Money
		in    float64
		want  string
	}{
		{"english grouping", DefaultMoney(), 160000, "$160,000"},
		{"fraction", DefaultMoney(), 1234.5, "$1,234.5"},
		{"cents", DefaultMoney(), 19.99, "$19.99"},
		{"zero", DefaultMoney(), 0, "$0"},
		{"negative", DefaultMoney(), -1500, "-$1,500"},
		{"german trailing symbol", NewMoney(language.German, "€", false), 160000, "160.000 €"},
		{"no symbol", NewMoney(language.English, "", true), 42, "42"},
		{"zero value formatter", Money{}, 10, "$10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.Format(tt.in); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatTimestampIn(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	if got := FormatTimestampIn(ts, time.UTC); got != "2024/03/09 14:05" {
		t.Errorf("FormatTimestampIn = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-160000: "-160,000",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int64]string{
		-5:   "0s",
		45:   "45s",
		125:  "2m",
		3725: "1h 2m",
	}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.5); got != "50.0%" {
		t.Errorf("FormatPercent(0.5) = %q", got)
	}
	if got := FormatPercent(math.NaN()); got != "-" {
		t.Errorf("FormatPercent(NaN) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("groceries", 20); got != "groceries" {
		t.Errorf("short string changed: %q", got)
	}
	if got := Truncate("groceries", 5); got != "groc…" {
		t.Errorf("Truncate = %q", got)
	}
	// Wide runes take two cells each.
	if got := Truncate("食料品の買い物", 7); got != "食料品…" {
		t.Errorf("Truncate wide = %q", got)
	}
}

func TestPadByDisplayWidth(t *testing.T) {
	if got := PadRight("家賃", 6); got != "家賃  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadLeft("¥500", 6); got != "  ¥500" {
		t.Errorf("PadLeft = %q", got)
	}
	if got := PadRight("toolong", 3); got != "toolong" {
		t.Errorf("PadRight should not cut: %q", got)
	}
}

func TestRenderTableContainsCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Income", "$5,000"},
			{"---"},
			{"Available", "$4,700"},
		},
	})
	for _, want := range []string{"Item", "Amount", "Income", "$5,000", "Available", "$4,700"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 7 {
		t.Errorf("table has %d lines, want 7:\n%s", n, out)
	}
}

func TestRenderSpendBar(t *testing.T) {
	if got := RenderSpendBar(10, 0, 10); got != "" {
		t.Errorf("zero income should render nothing, got %q", got)
	}
	if got := RenderSpendBar(50, 100, 10); !strings.Contains(got, "50.0%") {
		t.Errorf("RenderSpendBar = %q", got)
	}
}
