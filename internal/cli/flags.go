package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags are shared by every command
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
}

// ParseFlags configure the parse command
type ParseFlags struct {
	Tag       string
	SubjectID string
	Vendor    string
	Year      int
	Workers   int
	DryRun    bool
	JSON      bool
}

// ReconcileFlags configure the reconcile command
type ReconcileFlags struct {
	SubjectID    string
	LedgerFile   string
	ReceiptsFile string
	Floor        float64
	ExportPath   string
	JSON         bool
}

func (f *GlobalFlags) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.ConfigFile, "config", "config.yaml", "Configuration file path")
	cmd.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
}

func (f *ParseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Tag, "tag", "t", "", "Document type (card_statement, itemized_statement, receipt, order_receipt)")
	cmd.Flags().StringVarP(&f.SubjectID, "subject", "s", "", "Subject (employee or account) the documents belong to")
	cmd.Flags().StringVar(&f.Vendor, "vendor", "", "Vendor name to apply to every extracted record")
	cmd.Flags().IntVar(&f.Year, "year", 0, "Year for dates without one (default: config or current year)")
	cmd.Flags().IntVar(&f.Workers, "workers", 0, "Documents parsed concurrently (default 4)")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "Parse without storing records")
	cmd.Flags().BoolVar(&f.JSON, "json", false, "Print extracted records as JSON")
	_ = cmd.MarkFlagRequired("tag")
}

func (f *ReconcileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.SubjectID, "subject", "s", "", "Reconcile the stored records of this subject")
	cmd.Flags().StringVar(&f.LedgerFile, "ledger", "", "JSON file of ledger records (instead of stored records)")
	cmd.Flags().StringVar(&f.ReceiptsFile, "receipts", "", "JSON file of receipt records (instead of stored records)")
	cmd.Flags().Float64Var(&f.Floor, "floor", 0, "Minimum match score (default from config)")
	cmd.Flags().StringVar(&f.ExportPath, "export", "", "Write the report as an XLSX workbook to this path")
	cmd.Flags().BoolVar(&f.JSON, "json", false, "Print the report as JSON")
}
