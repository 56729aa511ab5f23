package main

import (
	"fmt"
	"io"
	"strconv"

	"token-platform/domain/model"
	"token-platform/infrastructure/persistence"
	"token-platform/usecase"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Ledger maintenance",
}

var ledgerReconcileCmd = &cobra.Command{
	Use:   "reconcile <account-id>",
	Short: "Compare an account balance with the sum of its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || accountID <= 0 {
			return fmt.Errorf("account id must be a positive integer")
		}
		ledger := usecase.NewLedgerUsecase(persistence.NewLedgerRepository(psqlDb), economy().Economy.MinWithdrawal)
		rec, err := ledger.Reconcile(cmd.Context(), accountID)
		if err != nil {
			return err
		}
		if err := render(cmd.OutOrStdout(), globalFlags.OutputFormat, rec, func(w io.Writer) error {
			return printReconciliation(w, rec)
		}); err != nil {
			return err
		}
		if !rec.Consistent {
			return fmt.Errorf("account %d is out of balance", accountID)
		}
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerReconcileCmd)
}

func printReconciliation(w io.Writer, rec model.Reconciliation) error {
	status := "consistent"
	if !rec.Consistent {
		status = "MISMATCH"
	}
	_, err := fmt.Fprintf(w, "account %d: balance %d, ledger sum %d, %s\n", rec.AccountID, rec.Balance, rec.LedgerSum, status)
	return err
}
