package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

// DefaultFloor is the minimum score for a pair to be accepted
const DefaultFloor = 40.0

// Config holds matcher configuration
type Config struct {
	// Floor is the acceptance threshold on the additive score (default 40)
	Floor float64
	// WellKnownMerchants are normalized vendor names eligible for the
	// high-volume merchant bonus
	WellKnownMerchants []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Floor: DefaultFloor,
		WellKnownMerchants: []string{
			"amazon", "walmart", "target", "costco", "uber", "uber eats",
			"starbucks", "apple", "google", "whole foods",
		},
	}
}

// Tier names recorded in Details
const (
	TierNone = "none"

	AmountExact     = "exact"
	AmountTwoCents  = "within_2_cents"
	AmountOnePct    = "within_1_percent"
	AmountFivePct   = "within_5_percent"
	DateSameDay     = "same_day"
	DateOneDay      = "within_1_day"
	DateThreeDays   = "within_3_days"
	DateSevenDays   = "within_7_days"
	VendorEqual     = "equal"
	VendorContains  = "contains"
	VendorFuzzyHigh = "fuzzy_80"
	VendorFuzzyLow  = "fuzzy_60"
)

// Details records which signals fired for a pair
type Details struct {
	AmountTier       string          `json:"amount_tier"`
	AmountPoints     float64         `json:"amount_points"`
	AmountDiff       decimal.Decimal `json:"amount_diff"`
	DateTier         string          `json:"date_tier"`
	DatePoints       float64         `json:"date_points"`
	DateDiffDays     *int            `json:"date_diff_days"` // nil when either date is missing
	StrongMatch      bool            `json:"strong_match"`
	VendorTier       string          `json:"vendor_tier"`
	VendorPoints     float64         `json:"vendor_points"`
	VendorSimilarity float64         `json:"vendor_similarity"`
	SharedReferences []string        `json:"shared_references,omitempty"`
	ReferencePoints  float64         `json:"reference_points"`
	MerchantBonus    float64         `json:"merchant_bonus"`
}

// Signals lists the contributing signals in evaluation order, e.g.
// "amount:exact(+35)". Used as the record's MatchDetails.
func (d Details) Signals() []string {
	var out []string
	if d.AmountPoints > 0 {
		out = append(out, fmt.Sprintf("amount:%s(+%g)", d.AmountTier, d.AmountPoints))
	}
	if d.DatePoints > 0 {
		out = append(out, fmt.Sprintf("date:%s(+%g)", d.DateTier, d.DatePoints))
	}
	if d.VendorPoints > 0 {
		out = append(out, fmt.Sprintf("vendor:%s(+%g)", d.VendorTier, d.VendorPoints))
	}
	if d.ReferencePoints > 0 {
		out = append(out, fmt.Sprintf("reference(+%g)", d.ReferencePoints))
	}
	if d.MerchantBonus > 0 {
		out = append(out, fmt.Sprintf("merchant(+%g)", d.MerchantBonus))
	}
	return out
}

// Score is the additive score of one ledger/receipt pair
type Score struct {
	Total   float64 `json:"total"`
	Details Details `json:"details"`
}

// Match pairs one ledger record with one receipt record. Both records are
// copies carrying the match annotations.
type Match struct {
	Ledger  expense.Record `json:"ledger"`
	Receipt expense.Record `json:"receipt"`
	Score   float64        `json:"score"`
	Details Details        `json:"details"`
}

// Result is the output of one reconciliation pass
type Result struct {
	Matches           []Match          `json:"matches"`
	UnmatchedLedger   []expense.Record `json:"unmatched_ledger"`
	UnmatchedReceipts []expense.Record `json:"unmatched_receipts"`
}

// UsedSet tracks receipts already claimed during a pass
type UsedSet map[string]struct{}

// NewUsedSet creates an empty set
func NewUsedSet() UsedSet {
	return make(UsedSet)
}

// Add marks a receipt key as used
func (u UsedSet) Add(key string) { u[key] = struct{}{} }

// Has reports whether a receipt key is used
func (u UsedSet) Has(key string) bool {
	_, ok := u[key]
	return ok
}

// receiptKey identifies a receipt within one pass. Records without an id
// fall back to their position.
func receiptKey(r expense.Record, index int) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("#%d", index)
}
