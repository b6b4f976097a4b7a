package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

func rec(id, vendor, amount string, tag expense.SourceTag) expense.Record {
	return expense.Record{
		ID:          id,
		Date:        "2024-07-02",
		Vendor:      vendor,
		Description: vendor + " purchase",
		Amount:      decimal.RequireFromString(amount),
		SourceTag:   tag,
	}
}

func TestBuild_Summary(t *testing.T) {
	result := &matcher.Result{
		Matches: []matcher.Match{
			{Ledger: rec("l1", "Amazon", "10.00", expense.SourceCardStatement), Receipt: rec("r1", "Amazon", "10.00", expense.SourceReceipt), Score: 95},
			{Ledger: rec("l2", "Hilton", "200.00", expense.SourceCardStatement), Receipt: rec("r2", "Hilton", "205.00", expense.SourceReceipt), Score: 80},
			{Ledger: rec("l3", "Deli", "12.50", expense.SourceCardStatement), Receipt: rec("r3", "Deli", "12.50", expense.SourceReceipt), Score: 65},
			{Ledger: rec("l4", "Cafe", "4.00", expense.SourceCardStatement), Receipt: rec("r4", "Cafe", "4.10", expense.SourceReceipt), Score: 40},
		},
		UnmatchedLedger: []expense.Record{
			rec("l5", "Delta", "300.00", expense.SourceCardStatement),
		},
		UnmatchedReceipts: []expense.Record{
			rec("r5", "Staples", "8.00", expense.SourceReceipt),
			rec("r6", "Costco", "50.00", expense.SourceReceipt),
		},
	}

	r := Build(result)
	s := r.Summary

	assert.Equal(t, 5, s.LedgerCount)
	assert.Equal(t, 6, s.ReceiptCount)
	assert.Equal(t, 4, s.MatchedCount)
	assert.Equal(t, 1, s.UnmatchedLedger)
	assert.Equal(t, 2, s.UnmatchedReceipts)
	assert.InDelta(t, 0.8, s.MatchRate, 1e-9)
	assert.Equal(t, 2, s.HighConfidence)
	assert.Equal(t, 1, s.MediumConfidence)
	assert.Equal(t, 1, s.LowConfidence)
	assert.Equal(t, "226.5", s.MatchedAmount.String())
	assert.Equal(t, "300", s.UnmatchedAmount.String())
}

func TestBuild_Rows(t *testing.T) {
	m := matcher.NewMatcher(matcher.DefaultConfig(), nil)
	ledger := rec("l1", "AMAZON MARKETPLACE", "123.45", expense.SourceCardStatement)
	receipt := rec("r1", "Amazon.com", "123.45", expense.SourceOrderReceipt)
	receipt.Date = "2024-07-03"

	r := Build(m.Reconcile([]expense.Record{ledger}, []expense.Record{receipt}))

	require.Len(t, r.Matches, 1)
	row := r.Matches[0]
	assert.Equal(t, "2024-07-02", row.Ledger.Date)
	assert.Equal(t, "AMAZON MARKETPLACE", row.Ledger.Vendor)
	assert.Equal(t, "card_statement", row.Ledger.Source)
	assert.Equal(t, "2024-07-03", row.Receipt.Date)
	assert.Equal(t, "order_receipt", row.Receipt.Source)
	assert.Equal(t, 85.0, row.Confidence)
	assert.Equal(t, "high", row.Tier)
	assert.Equal(t, "amount:exact(+35); date:within_1_day(+30); vendor:contains(+20)", row.Diagnostics)
	assert.Empty(t, r.UnmatchedLedger)
	assert.Empty(t, r.UnmatchedReceipts)
}

func TestBuild_UnmatchedRows(t *testing.T) {
	r := Build(&matcher.Result{
		UnmatchedLedger: []expense.Record{rec("l1", "Delta", "300.00", expense.SourceCardStatement)},
	})

	require.Len(t, r.UnmatchedLedger, 1)
	assert.Equal(t, UnmatchedRow{
		Date:        "2024-07-02",
		Vendor:      "Delta",
		Description: "Delta purchase",
		Amount:      decimal.RequireFromString("300.00"),
	}, r.UnmatchedLedger[0])
	assert.Zero(t, r.Summary.MatchRate)
}

func TestBuild_NilResult(t *testing.T) {
	r := Build(nil)
	assert.Zero(t, r.Summary.LedgerCount)
	assert.Zero(t, r.Summary.MatchRate)
	assert.NotNil(t, r.Matches)
	assert.True(t, r.Summary.MatchedAmount.IsZero())
}

func TestTier(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "high"},
		{80, "high"},
		{79.9, "medium"},
		{60, "medium"},
		{59.5, "low"},
		{40, "low"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tier(tt.score), "score %v", tt.score)
	}
}
