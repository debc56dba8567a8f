package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/cli"
	"github.com/theirongolddev/pocket/internal/ledger"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show income, fixed expenses and what is left",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	writeSummary(os.Stdout, rt.ledger, rt.money)
	return nil
}

func writeSummary(w io.Writer, l *ledger.Ledger, m cli.Money) {
	income := ledger.Number(l.FixedIncome())
	fixed := ledger.Number(l.FixedExpenses())
	variable := l.VariableTotal()

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("POCKET"))
	fmt.Fprintln(w)

	rows := [][]string{
		{"Income", m.Format(income)},
		{"Fixed expenses", m.Format(fixed)},
		{"Variable expenses", m.Format(variable)},
		{"---"},
		{"Available", cli.RenderAmount(m, l.AvailableBalance())},
		{"Entries", cli.FormatNumber(int64(len(l.Entries())))},
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if bar := cli.RenderSpendBar(fixed+variable, income, 30); bar != "" {
		fmt.Fprintf(w, "\n  Spent %s\n", bar)
	}
}
