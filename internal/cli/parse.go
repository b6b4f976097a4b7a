package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
)

func newParseCommand(globals *GlobalFlags) *cobra.Command {
	flags := &ParseFlags{}

	cmd := &cobra.Command{
		Use:   "parse [flags] FILE...",
		Short: "Extract expense records from OCR documents",
		Long: `Reads each file (block JSON, PDF, or an image when Azure OCR is configured),
parses it with the parser registered for --tag and stores the records.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, globals, flags, args)
		},
	}
	flags.bind(cmd)

	return cmd
}

func runParse(cmd *cobra.Command, globals *GlobalFlags, flags *ParseFlags, files []string) error {
	app, err := openApp(cmd, globals, func(cfg *config.Config) {
		if flags.Year > 0 {
			cfg.Parsing.ProcessingYear = flags.Year
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	tag := expense.SourceTag(flags.Tag)

	// Fail before reading any file when the tag is unknown
	if _, err := app.Registry.Lookup(tag); err != nil {
		return err
	}

	ingest := app.Ingest
	if flags.DryRun {
		ingest = service.NewIngestService(app.Registry, nil, app.Logger)
	}
	ingest.WithWorkers(flags.Workers)

	var loadErrors []*service.IngestResult
	reqs := make([]service.DocumentRequest, 0, len(files))
	for _, path := range files {
		docID := documentID(path)
		doc, err := app.Loader.Load(ctx, path)
		if err != nil {
			app.Logger.Error("Failed to load document", "path", path, "error", err)
			loadErrors = append(loadErrors, &service.IngestResult{DocumentID: docID, Tag: flags.Tag, Err: err})
			continue
		}
		reqs = append(reqs, service.DocumentRequest{
			Tag:        tag,
			SubjectID:  flags.SubjectID,
			DocumentID: docID,
			Vendor:     flags.Vendor,
			Document:   doc,
		})
	}

	results, err := ingest.ParseBatch(ctx, reqs)
	if err != nil {
		return err
	}
	results = append(results, loadErrors...)

	if flags.JSON {
		var records []expense.Record
		for _, r := range results {
			records = append(records, r.Records...)
		}
		if records == nil {
			records = []expense.Record{}
		}
		return PrintJSON(out, records)
	}

	PrintHeader(out, "parse", flags.DryRun)
	PrintIngestSummary(out, results)

	if len(loadErrors) == len(files) {
		return errors.New("no documents could be read")
	}
	return nil
}

// documentID derives a stable document id from a file name
func documentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
