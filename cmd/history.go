package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/cli"
	"github.com/theirongolddev/pocket/internal/ledger"
)

var (
	flagHistoryLimit int
	flagHistoryJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded expenses, newest first",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Max entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&flagHistoryJSON, "json", false, "Print entries as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	entries := limitEntries(rt.ledger.EntriesDescending(), flagHistoryLimit)
	if flagHistoryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		fmt.Println("  " + cli.RenderMuted("Add one with: pocket add 12.50 lunch"))
		return nil
	}
	writeHistory(os.Stdout, entries, len(rt.ledger.Entries()), rt.money)
	return nil
}

func limitEntries(entries []ledger.Entry, limit int) []ledger.Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func writeHistory(w io.Writer, entries []ledger.Entry, total int, m cli.Money) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			cli.FormatTimestamp(e.CreatedAt()),
			m.Format(e.Amount.Number()),
			cli.Truncate(string(e.Description), 40),
		})
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Expenses (%d of %d)", len(entries), total),
		Headers: []string{"When", "Amount", "Description"},
		Rows:    rows,
	}))
}
