package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/report"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// PrintHeader prints the command header
func PrintHeader(w io.Writer, command string, dryRun bool) {
	mode := "PRODUCTION"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Fprintf(w, "reconciler: %s (%s mode)\n", command, mode)
}

// PrintIngestSummary prints one line per document and a total
func PrintIngestSummary(w io.Writer, results []*service.IngestResult) {
	fmt.Fprintln(w, strings.Repeat("-", 60))

	var records, saved, failed, errors int
	for _, r := range results {
		if r.Err != nil {
			errors++
			fmt.Fprintf(w, "  %-24s %-18s error: %v\n", r.DocumentID, r.Tag, r.Err)
			continue
		}
		records += len(r.Records)
		saved += r.Saved
		failed += r.Failed
		fmt.Fprintf(w, "  %-24s %-18s records=%d\n", r.DocumentID, r.Tag, len(r.Records))
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "    warning: %s\n", warning)
		}
	}

	fmt.Fprintf(w, "Summary: Documents=%d Records=%d Saved=%d Failed=%d Errors=%d\n",
		len(results), records, saved, failed, errors)
}

// PrintReconcileSummary prints the run summary and the matched pairs
func PrintReconcileSummary(w io.Writer, runID string, rep *report.Report) {
	s := rep.Summary
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Run: %s\n", runID)
	fmt.Fprintf(w, "Summary: Ledger=%d Receipts=%d Matched=%d Rate=%.1f%%\n",
		s.LedgerCount, s.ReceiptCount, s.MatchedCount, s.MatchRate*100)
	fmt.Fprintf(w, "Confidence: High=%d Medium=%d Low=%d\n",
		s.HighConfidence, s.MediumConfidence, s.LowConfidence)
	fmt.Fprintf(w, "Amounts: Matched=$%s Unmatched=$%s\n",
		s.MatchedAmount.StringFixed(2), s.UnmatchedAmount.StringFixed(2))

	if len(rep.Matches) > 0 {
		fmt.Fprintln(w, "\nMatches:")
		for _, m := range rep.Matches {
			fmt.Fprintf(w, "  %s %-24s $%-10s <- %-24s %5.1f (%s)\n",
				m.Ledger.Date, truncate(m.Ledger.Vendor, 24), m.Ledger.Amount,
				truncate(m.Receipt.Vendor, 24), m.Confidence, m.Tier)
		}
	}

	if n := len(rep.UnmatchedLedger); n > 0 {
		fmt.Fprintf(w, "\nUnmatched ledger (%d):\n", n)
		for _, u := range rep.UnmatchedLedger {
			fmt.Fprintf(w, "  %s %-24s $%s\n", u.Date, truncate(u.Vendor, 24), u.Amount)
		}
	}
}

// PrintRuns prints a run listing
func PrintRuns(w io.Writer, runs []storage.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-12s matched=%d/%d floor=%.0f\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.SubjectID,
			r.Summary.MatchedCount, r.Summary.LedgerCount, r.Floor)
	}
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
