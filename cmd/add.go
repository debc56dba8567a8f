package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/log"
)

var addCmd = &cobra.Command{
	Use:   "add AMOUNT [DESCRIPTION...]",
	Short: "Record a variable expense",
	Long: "Record a variable expense. The remaining arguments form the description.\n" +
		"Nothing is recorded unless both an amount and a description are given.",
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.Close()

	entry, ok, err := addExpense(cmd, rt.ledger, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("  Nothing recorded: an expense needs both an amount and a description.")
		return nil
	}

	rt.logger.Debug("expense added", log.FieldEntryID, entry.ID, log.FieldAmount, string(entry.Amount))
	if !flagQuiet {
		fmt.Printf("  Added %s  %s\n", rt.money.Format(entry.Amount.Number()), entry.Description)
		fmt.Printf("  Available: %s\n", rt.money.Format(rt.ledger.AvailableBalance()))
	}
	return nil
}

// addExpense fills the draft and commits it.
func addExpense(cmd *cobra.Command, l *ledger.Ledger, amount, description string) (ledger.Entry, bool, error) {
	l.UpdateDraft(ledger.FieldAmount, amount)
	l.UpdateDraft(ledger.FieldDescription, description)
	entry, ok, err := l.CommitDraft(cmd.Context())
	if err != nil {
		return entry, ok, fmt.Errorf("saving expense: %w", err)
	}
	return entry, ok, nil
}
