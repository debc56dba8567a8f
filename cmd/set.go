package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pocket/internal/ledger"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the fixed income or fixed expenses",
}

var setIncomeCmd = &cobra.Command{
	Use:   "income VALUE",
	Short: "Set the monthly fixed income",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSet(cmd, "Income", args[0], (*ledger.Ledger).SetFixedIncome)
	},
}

var setFixedCmd = &cobra.Command{
	Use:   "fixed VALUE",
	Short: "Set the monthly fixed expenses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSet(cmd, "Fixed expenses", args[0], (*ledger.Ledger).SetFixedExpenses)
	},
}

func init() {
	setCmd.AddCommand(setIncomeCmd)
	setCmd.AddCommand(setFixedCmd)
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, label, value string, set func(*ledger.Ledger, context.Context, string) error) error {
	rt, err := openRuntime(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := set(rt.ledger, cmd.Context(), value); err != nil {
		return fmt.Errorf("saving %s: %w", strings.ToLower(label), err)
	}

	if !flagQuiet {
		fmt.Printf("  %s: %s\n", label, rt.money.Format(ledger.Number(value)))
		fmt.Printf("  Available: %s\n", rt.money.Format(rt.ledger.AvailableBalance()))
	}
	return nil
}
