// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TimestampLayout is how entry timestamps are shown.
const TimestampLayout = "2006/01/02 15:04"

// Money formats amounts with locale-aware grouping and a currency symbol.
type Money struct {
	printer     *message.Printer
	symbol      string
	symbolFirst bool
}

// NewMoney returns a formatter for the given locale. An empty symbol prints
// bare numbers.
func NewMoney(tag language.Tag, symbol string, symbolFirst bool) Money {
	return Money{
		printer:     message.NewPrinter(tag),
		symbol:      symbol,
		symbolFirst: symbolFirst,
	}
}

// DefaultMoney formats in English with a leading dollar sign.
func DefaultMoney() Money {
	return NewMoney(language.English, "$", true)
}

// Format renders v with at most two fraction digits.
// e.g., 160000 -> "$160,000", -12.5 -> "-$12.5"
func (m Money) Format(v float64) string {
	if m.printer == nil {
		m = DefaultMoney()
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := m.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))

	switch {
	case m.symbol == "":
		return sign + digits
	case m.symbolFirst:
		return sign + m.symbol + digits
	default:
		return sign + digits + " " + m.symbol
	}
}

// FormatTimestamp renders t in the local zone.
func FormatTimestamp(t time.Time) string {
	return FormatTimestampIn(t, time.Local)
}

// FormatTimestampIn renders t in loc.
func FormatTimestampIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a ratio as a percentage string. Ratios that are not
// finite render as "-".
func FormatPercent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", f*100)
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with "…". Wide runes count as two cells.
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width-1 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + "…"
}

// PadRight pads s with spaces to width terminal cells.
func PadRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}

// PadLeft right-aligns s in width terminal cells.
func PadLeft(s string, width int) string {
	return strings.Repeat(" ", max(width-lipgloss.Width(s), 0)) + s
}
