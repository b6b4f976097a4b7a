// Package matcher reconciles ledger transactions against receipt line
// items.
//
// Every ledger/receipt pair gets an additive score built from amount, date,
// vendor and reference signals. Reconcile walks the ledger in input order
// and gives each ledger record the best-scoring receipt that is still
// unused and scores at least the floor. Earlier assignments are never
// revisited; ScoreMatrix exposes every pair score for callers that want a
// different assignment strategy.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig(), logger)
//	result := m.Reconcile(ledger, receipts)
//	for _, match := range result.Matches {
//		fmt.Println(match.Ledger.ID, match.Receipt.ID, match.Score)
//	}
package matcher

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/normalize"
)

// Score contributions
const (
	pointsAmountExact    = 35
	pointsAmountTwoCents = 32
	pointsAmountOnePct   = 28
	pointsAmountFivePct  = 20

	pointsDateSameDay   = 25
	pointsDateOneDay    = 20
	pointsStrongMatch   = 10
	pointsDateThreeDays = 10
	pointsDateSevenDays = 5

	pointsVendorEqual     = 25
	pointsVendorContains  = 20
	pointsVendorFuzzyHigh = 15
	pointsVendorFuzzyLow  = 8

	pointsReference = 20
	pointsMerchant  = 5
)

var (
	twoCents      = decimal.RequireFromString("0.02")
	tenCents      = decimal.RequireFromString("0.10")
	onePercent    = decimal.RequireFromString("0.01")
	fivePercent   = decimal.RequireFromString("0.05")
	fuzzyHighMark = 0.8
	fuzzyLowMark  = 0.6
)

// Matcher scores and pairs ledger and receipt records
type Matcher struct {
	config    Config
	merchants map[string]bool
	logger    *slog.Logger
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config, logger *slog.Logger) *Matcher {
	if config.Floor <= 0 {
		config.Floor = DefaultFloor
	}
	if config.WellKnownMerchants == nil {
		config.WellKnownMerchants = DefaultConfig().WellKnownMerchants
	}
	if logger == nil {
		logger = slog.Default()
	}

	merchants := make(map[string]bool, len(config.WellKnownMerchants))
	for _, name := range config.WellKnownMerchants {
		merchants[normalize.Vendor(name)] = true
	}

	return &Matcher{
		config:    config,
		merchants: merchants,
		logger:    logger,
	}
}

// Floor returns the acceptance threshold in use
func (m *Matcher) Floor() float64 {
	return m.config.Floor
}

// Reconcile pairs ledger records with receipts in a single greedy pass.
// Inputs are not modified; matched records are returned as annotated
// copies.
func (m *Matcher) Reconcile(ledger, receipts []expense.Record) *Result {
	result := &Result{
		Matches:           []Match{},
		UnmatchedLedger:   []expense.Record{},
		UnmatchedReceipts: []expense.Record{},
	}

	// Receipt-side features do not change during the pass
	prepared := make([]features, len(receipts))
	for j, r := range receipts {
		prepared[j] = m.features(r)
	}

	used := NewUsedSet()
	for _, l := range ledger {
		lf := m.features(l)

		best, bestIdx := m.bestCandidate(lf, receipts, prepared, used)
		if bestIdx < 0 {
			result.UnmatchedLedger = append(result.UnmatchedLedger, l)
			continue
		}

		r := receipts[bestIdx]
		used.Add(receiptKey(r, bestIdx))
		result.Matches = append(result.Matches, annotate(l, r, best))

		m.logger.Debug("Matched ledger record",
			"ledger_id", l.ID,
			"receipt_id", r.ID,
			"score", best.Total)
	}

	for j, r := range receipts {
		if !used.Has(receiptKey(r, j)) {
			result.UnmatchedReceipts = append(result.UnmatchedReceipts, r)
		}
	}

	m.logger.Info("Reconciliation pass complete",
		"ledger", len(ledger),
		"receipts", len(receipts),
		"matches", len(result.Matches),
		"unmatched_ledger", len(result.UnmatchedLedger),
		"unmatched_receipts", len(result.UnmatchedReceipts))

	return result
}

// bestCandidate returns the highest scoring unused receipt at or above the
// floor. Ties keep the earliest receipt.
func (m *Matcher) bestCandidate(lf features, receipts []expense.Record, prepared []features, used UsedSet) (Score, int) {
	var best Score
	bestIdx := -1

	for j, r := range receipts {
		if used.Has(receiptKey(r, j)) {
			continue
		}
		s := m.score(lf, prepared[j])
		if s.Total < m.config.Floor {
			continue
		}
		if bestIdx < 0 || s.Total > best.Total {
			best = s
			bestIdx = j
		}
	}

	return best, bestIdx
}

// Score computes the additive score of one pair
func (m *Matcher) Score(ledger, receipt expense.Record) Score {
	return m.score(m.features(ledger), m.features(receipt))
}

// ScoreMatrix scores every ledger/receipt pair: result[i][j] is ledger i
// against receipt j.
func (m *Matcher) ScoreMatrix(ledger, receipts []expense.Record) [][]Score {
	prepared := make([]features, len(receipts))
	for j, r := range receipts {
		prepared[j] = m.features(r)
	}

	matrix := make([][]Score, len(ledger))
	for i, l := range ledger {
		lf := m.features(l)
		row := make([]Score, len(receipts))
		for j := range receipts {
			row[j] = m.score(lf, prepared[j])
		}
		matrix[i] = row
	}
	return matrix
}

// features are the per-record inputs to scoring
type features struct {
	amount     decimal.Decimal
	date       time.Time
	hasDate    bool
	vendor     string
	references []string
}

func (m *Matcher) features(r expense.Record) features {
	f := features{amount: r.Amount.Abs()}
	f.date, f.hasDate = r.DateValue()

	vendor := r.Vendor
	if vendor == "" {
		vendor = r.Description
	}
	f.vendor = normalize.Vendor(vendor)

	f.references = ExtractReferences(r.Description)
	for _, extra := range []string{r.ReferenceNumber, r.OrderNumber} {
		if extra = strings.ToUpper(strings.TrimSpace(extra)); extra != "" && !contains(f.references, extra) {
			f.references = append(f.references, extra)
		}
	}

	return f
}

func (m *Matcher) score(l, r features) Score {
	var d Details
	d.AmountTier, d.DateTier, d.VendorTier = TierNone, TierNone, TierNone

	// Amount
	diff := l.amount.Sub(r.amount).Abs()
	d.AmountDiff = diff
	switch {
	case diff.IsZero():
		d.AmountTier, d.AmountPoints = AmountExact, pointsAmountExact
	case diff.LessThanOrEqual(twoCents):
		d.AmountTier, d.AmountPoints = AmountTwoCents, pointsAmountTwoCents
	case diff.LessThanOrEqual(l.amount.Mul(onePercent)):
		d.AmountTier, d.AmountPoints = AmountOnePct, pointsAmountOnePct
	case diff.LessThanOrEqual(l.amount.Mul(fivePercent)):
		d.AmountTier, d.AmountPoints = AmountFivePct, pointsAmountFivePct
	}

	// Date
	days := -1
	if l.hasDate && r.hasDate {
		days = dayDiff(l.date, r.date)
		d.DateDiffDays = &days
		switch {
		case days == 0:
			d.DateTier, d.DatePoints = DateSameDay, pointsDateSameDay
		case days == 1:
			d.DateTier, d.DatePoints = DateOneDay, pointsDateOneDay
		case days <= 3:
			d.DateTier, d.DatePoints = DateThreeDays, pointsDateThreeDays
		case days <= 7:
			d.DateTier, d.DatePoints = DateSevenDays, pointsDateSevenDays
		}
		if days <= 1 && d.AmountTier == AmountExact {
			d.StrongMatch = true
			d.DatePoints += pointsStrongMatch
		}
	}

	// Vendor
	if l.vendor != "" && r.vendor != "" {
		d.VendorSimilarity = levenshtein.Similarity(l.vendor, r.vendor, nil)
		switch {
		case l.vendor == r.vendor:
			d.VendorTier, d.VendorPoints = VendorEqual, pointsVendorEqual
		case strings.Contains(l.vendor, r.vendor) || strings.Contains(r.vendor, l.vendor):
			d.VendorTier, d.VendorPoints = VendorContains, pointsVendorContains
		case d.VendorSimilarity >= fuzzyHighMark:
			d.VendorTier, d.VendorPoints = VendorFuzzyHigh, pointsVendorFuzzyHigh
		case d.VendorSimilarity >= fuzzyLowMark:
			d.VendorTier, d.VendorPoints = VendorFuzzyLow, pointsVendorFuzzyLow
		}
	}

	// Reference
	if shared := sharedReferences(l.references, r.references); len(shared) > 0 {
		d.SharedReferences = shared
		d.ReferencePoints = pointsReference
	}

	// High-volume merchant heuristic
	if l.vendor != "" && l.vendor == r.vendor && m.merchants[l.vendor] &&
		diff.LessThanOrEqual(tenCents) && days >= 0 && days <= 2 {
		d.MerchantBonus = pointsMerchant
	}

	return Score{
		Total:   d.AmountPoints + d.DatePoints + d.VendorPoints + d.ReferencePoints + d.MerchantBonus,
		Details: d,
	}
}

// dayDiff is the absolute number of calendar days between two dates
func dayDiff(a, b time.Time) int {
	return int(math.Abs(math.Round(a.Sub(b).Hours() / 24)))
}

// annotate returns copies of both records carrying the match
func annotate(ledger, receipt expense.Record, s Score) Match {
	signals := s.Details.Signals()

	ledger.MatchedID = receipt.ID
	ledger.MatchConfidence = s.Total
	ledger.MatchDetails = signals
	ledger.Status = expense.StatusMatched

	receipt.MatchedID = ledger.ID
	receipt.MatchConfidence = s.Total
	receipt.MatchDetails = append([]string(nil), signals...)
	receipt.Status = expense.StatusMatched

	return Match{
		Ledger:  ledger,
		Receipt: receipt,
		Score:   s.Total,
		Details: s.Details,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
