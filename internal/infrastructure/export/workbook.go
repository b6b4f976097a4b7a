// Package export renders reconciliation reports as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/report"
)

// Sheet names, in workbook order
const (
	SheetSummary           = "Summary"
	SheetMatches           = "Matches"
	SheetUnmatchedLedger   = "Unmatched Ledger"
	SheetUnmatchedReceipts = "Unmatched Receipts"
)

var (
	matchHeaders = []string{
		"Ledger Date", "Ledger Vendor", "Ledger Description", "Ledger Amount", "Ledger Source",
		"Receipt Date", "Receipt Vendor", "Receipt Description", "Receipt Amount", "Receipt Source",
		"Confidence", "Tier", "Diagnostics",
	}
	unmatchedHeaders = []string{"Date", "Vendor", "Description", "Amount"}
)

// WriteWorkbook writes rep as an XLSX workbook to w
func WriteWorkbook(w io.Writer, rep *report.Report) error {
	data, err := Workbook(rep)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Workbook returns rep as XLSX bytes
func Workbook(rep *report.Report) ([]byte, error) {
	if rep == nil {
		rep = report.Build(nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the summary
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{SheetMatches, SheetUnmatchedLedger, SheetUnmatchedReceipts} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	if err := writeSummary(f, rep.Summary); err != nil {
		return nil, err
	}
	if err := writeMatches(f, rep.Matches); err != nil {
		return nil, err
	}
	if err := writeUnmatched(f, SheetUnmatchedLedger, rep.UnmatchedLedger); err != nil {
		return nil, err
	}
	if err := writeUnmatched(f, SheetUnmatchedReceipts, rep.UnmatchedReceipts); err != nil {
		return nil, err
	}

	index, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeSummary(f *excelize.File, s report.Summary) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Ledger records", s.LedgerCount},
		{"Receipt records", s.ReceiptCount},
		{"Matched", s.MatchedCount},
		{"Unmatched ledger", s.UnmatchedLedger},
		{"Unmatched receipts", s.UnmatchedReceipts},
		{"Match rate", s.MatchRate},
		{"High confidence (>= 80)", s.HighConfidence},
		{"Medium confidence (60-79)", s.MediumConfidence},
		{"Low confidence (< 60)", s.LowConfidence},
		{"Matched amount", s.MatchedAmount.InexactFloat64()},
		{"Unmatched ledger amount", s.UnmatchedAmount.InexactFloat64()},
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 28)
	_ = f.SetColWidth(SheetSummary, "B", "B", 16)
	return nil
}

func writeMatches(f *excelize.File, matches []report.MatchedRow) error {
	rows := make([][]any, 0, len(matches)+1)
	rows = append(rows, toAny(matchHeaders))
	for _, m := range matches {
		rows = append(rows, []any{
			m.Ledger.Date, m.Ledger.Vendor, m.Ledger.Description, m.Ledger.Amount.InexactFloat64(), m.Ledger.Source,
			m.Receipt.Date, m.Receipt.Vendor, m.Receipt.Description, m.Receipt.Amount.InexactFloat64(), m.Receipt.Source,
			m.Confidence, m.Tier, m.Diagnostics,
		})
	}
	if err := writeRows(f, SheetMatches, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetMatches, "A", "B", 14)
	_ = f.SetColWidth(SheetMatches, "C", "C", 36)
	_ = f.SetColWidth(SheetMatches, "F", "G", 14)
	_ = f.SetColWidth(SheetMatches, "H", "H", 36)
	_ = f.SetColWidth(SheetMatches, "M", "M", 60)
	return nil
}

func writeUnmatched(f *excelize.File, sheet string, records []report.UnmatchedRow) error {
	rows := make([][]any, 0, len(records)+1)
	rows = append(rows, toAny(unmatchedHeaders))
	for _, r := range records {
		rows = append(rows, []any{r.Date, r.Vendor, r.Description, r.Amount.InexactFloat64()})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(sheet, "A", "B", 14)
	_ = f.SetColWidth(sheet, "C", "C", 48)
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
