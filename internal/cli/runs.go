package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRunsCommand(globals *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded reconciliation runs",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, globals, nil)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			runs, err := app.Reconcile.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			PrintRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")

	var asJSON bool
	show := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print the report of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, globals, nil)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			rep, err := app.Reconcile.Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return PrintJSON(cmd.OutOrStdout(), rep)
			}
			PrintReconcileSummary(cmd.OutOrStdout(), args[0], rep)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Write a run's report as an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, globals, nil)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			data, err := app.Reconcile.ExportRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path := outPath
			if path == "" {
				path = fmt.Sprintf("reconciliation-%s.xlsx", args[0])
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (default reconciliation-RUN_ID.xlsx)")

	cmd.AddCommand(list, show, exportCmd)
	return cmd
}
