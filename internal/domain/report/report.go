// Package report turns a reconciliation result into a summary and flat
// rows for export. It performs no scoring of its own.
package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// Confidence tier boundaries on the match score
const (
	HighConfidence   = 80.0
	MediumConfidence = 60.0
)

// Summary provides high-level statistics of a reconciliation pass
type Summary struct {
	LedgerCount       int             `json:"ledger_count"`
	ReceiptCount      int             `json:"receipt_count"`
	MatchedCount      int             `json:"matched_count"`
	UnmatchedLedger   int             `json:"unmatched_ledger"`
	UnmatchedReceipts int             `json:"unmatched_receipts"`
	MatchRate         float64         `json:"match_rate"` // matched / ledger, 0..1
	HighConfidence    int             `json:"high_confidence"`
	MediumConfidence  int             `json:"medium_confidence"`
	LowConfidence     int             `json:"low_confidence"`
	MatchedAmount     decimal.Decimal `json:"matched_amount"`
	UnmatchedAmount   decimal.Decimal `json:"unmatched_amount"`
}

// Side is the flattened view of one record in a matched row
type Side struct {
	Date        string          `json:"date"`
	Vendor      string          `json:"vendor"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
}

// MatchedRow is one exported match
type MatchedRow struct {
	Ledger      Side    `json:"ledger"`
	Receipt     Side    `json:"receipt"`
	Confidence  float64 `json:"confidence"`
	Tier        string  `json:"tier"`
	Diagnostics string  `json:"diagnostics"`
}

// UnmatchedRow is one exported residual record
type UnmatchedRow struct {
	Date        string          `json:"date"`
	Vendor      string          `json:"vendor"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Report is the presentation form of a matcher.Result
type Report struct {
	Summary           Summary        `json:"summary"`
	Matches           []MatchedRow   `json:"matches"`
	UnmatchedLedger   []UnmatchedRow `json:"unmatched_ledger"`
	UnmatchedReceipts []UnmatchedRow `json:"unmatched_receipts"`
}

// Build summarizes a result. A nil result yields an empty report.
func Build(result *matcher.Result) *Report {
	r := &Report{
		Summary: Summary{
			MatchedAmount:   decimal.Zero,
			UnmatchedAmount: decimal.Zero,
		},
		Matches:           []MatchedRow{},
		UnmatchedLedger:   []UnmatchedRow{},
		UnmatchedReceipts: []UnmatchedRow{},
	}
	if result == nil {
		return r
	}

	s := &r.Summary
	for _, m := range result.Matches {
		tier := Tier(m.Score)
		switch tier {
		case "high":
			s.HighConfidence++
		case "medium":
			s.MediumConfidence++
		default:
			s.LowConfidence++
		}
		s.MatchedAmount = s.MatchedAmount.Add(m.Ledger.Amount.Abs())

		r.Matches = append(r.Matches, MatchedRow{
			Ledger:      side(m.Ledger),
			Receipt:     side(m.Receipt),
			Confidence:  m.Score,
			Tier:        tier,
			Diagnostics: strings.Join(m.Details.Signals(), "; "),
		})
	}

	for _, rec := range result.UnmatchedLedger {
		s.UnmatchedAmount = s.UnmatchedAmount.Add(rec.Amount.Abs())
		r.UnmatchedLedger = append(r.UnmatchedLedger, unmatched(rec))
	}
	for _, rec := range result.UnmatchedReceipts {
		r.UnmatchedReceipts = append(r.UnmatchedReceipts, unmatched(rec))
	}

	s.MatchedCount = len(result.Matches)
	s.UnmatchedLedger = len(result.UnmatchedLedger)
	s.UnmatchedReceipts = len(result.UnmatchedReceipts)
	s.LedgerCount = s.MatchedCount + s.UnmatchedLedger
	s.ReceiptCount = s.MatchedCount + s.UnmatchedReceipts
	if s.LedgerCount > 0 {
		s.MatchRate = float64(s.MatchedCount) / float64(s.LedgerCount)
	}

	return r
}

// Tier buckets a match score: high (>= 80), medium (60-79) or low
func Tier(score float64) string {
	switch {
	case score >= HighConfidence:
		return "high"
	case score >= MediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

func side(rec expense.Record) Side {
	return Side{
		Date:        rec.Date,
		Vendor:      rec.Vendor,
		Description: rec.Description,
		Amount:      rec.Amount,
		Source:      string(rec.SourceTag),
	}
}

func unmatched(rec expense.Record) UnmatchedRow {
	return UnmatchedRow{
		Date:        rec.Date,
		Vendor:      rec.Vendor,
		Description: rec.Description,
		Amount:      rec.Amount,
	}
}
