package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"token-platform/infrastructure/configuration"
	"token-platform/infrastructure/persistence"

	"github.com/spf13/cobra"
)

type GlobalFlags struct {
	OutputFormat string
}

var (
	globalFlags GlobalFlags
	psqlDb      *sql.DB
)

var rootCmd = &cobra.Command{
	Use:           "tokenctl",
	Short:         "Operator commands for the token platform",
	Long:          "tokenctl runs weekly referral payouts, inspects the featured slot and reconciles ledger accounts against the configured PostgreSQL database.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.OutputFormat != "json" && globalFlags.OutputFormat != "text" {
			return fmt.Errorf("unknown output format %q", globalFlags.OutputFormat)
		}
		db, err := persistence.NewPostgreSQLDB()
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		psqlDb = db
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if psqlDb != nil {
			_ = psqlDb.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "json", "output format: json|text")

	rootCmd.AddCommand(payoutCmd)
	rootCmd.AddCommand(featuredCmd)
	rootCmd.AddCommand(ledgerCmd)
}

// render prints v as indented JSON, or through text when the text format is
// selected.
func render(w io.Writer, format string, v interface{}, text func(io.Writer) error) error {
	if format == "text" && text != nil {
		return text(w)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func economy() configuration.Config { return configuration.C }

func main() {
	Execute()
}
