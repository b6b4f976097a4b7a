package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/export"
)

func newReconcileCommand(globals *GlobalFlags) *cobra.Command {
	flags := &ReconcileFlags{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match ledger transactions to receipt line items",
		Long: `Runs the matcher over the stored records of --subject, or over the records
in --ledger and --receipts, records the run and prints its report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, globals, flags)
		},
	}
	flags.bind(cmd)

	return cmd
}

func runReconcile(cmd *cobra.Command, globals *GlobalFlags, flags *ReconcileFlags) error {
	if (flags.LedgerFile == "") != (flags.ReceiptsFile == "") {
		return fmt.Errorf("--ledger and --receipts must be given together")
	}

	req := service.ReconcileRequest{SubjectID: flags.SubjectID, Floor: flags.Floor}
	if flags.LedgerFile != "" {
		var err error
		if req.Ledger, err = readRecords(flags.LedgerFile); err != nil {
			return err
		}
		if req.Receipts, err = readRecords(flags.ReceiptsFile); err != nil {
			return err
		}
	}

	app, err := openApp(cmd, globals, nil)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	outcome, err := app.Reconcile.Reconcile(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.ExportPath != "" {
		if err := writeWorkbook(flags.ExportPath, outcome); err != nil {
			return err
		}
	}

	if flags.JSON {
		return PrintJSON(out, outcome.Report)
	}

	PrintHeader(out, "reconcile", false)
	PrintReconcileSummary(out, outcome.Run.ID, outcome.Report)
	if flags.ExportPath != "" {
		fmt.Fprintf(out, "\nReport written to %s\n", flags.ExportPath)
	}
	return nil
}

func readRecords(path string) ([]expense.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []expense.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func writeWorkbook(path string, outcome *service.ReconcileOutcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteWorkbook(f, outcome.Report); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
