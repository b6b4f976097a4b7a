// Package cli implements the reconciler command line: document parsing,
// reconciliation runs, run history and the HTTP server.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
)

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	globals := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "reconciler",
		Short: "Extract expenses from OCR documents and reconcile them against receipts",
		Long: `reconciler turns OCR output of card statements and receipts into expense
records, then pairs ledger transactions with receipt line items.

Example Usage:
  reconciler parse --tag card_statement --subject alice statement.pdf
  reconciler parse --tag receipt --subject alice receipts/*.json
  reconciler reconcile --subject alice --export report.xlsx
  reconciler serve --port 8085`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	globals.bind(root)

	root.AddCommand(
		newParseCommand(globals),
		newReconcileCommand(globals),
		newRunsCommand(globals),
		newServeCommand(globals),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openApp loads configuration and wires the application for a command
func openApp(cmd *cobra.Command, globals *GlobalFlags, adjust func(*config.Config)) (*App, error) {
	cfg := config.LoadOrEnvWithPath(globals.ConfigFile)
	if adjust != nil {
		adjust(cfg)
	}
	return NewApp(cfg, cmd.ErrOrStderr(), globals.Verbose)
}
