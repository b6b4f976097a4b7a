// Package expense defines the canonical expense record produced by the
// format parsers and consumed by the matching engine.
//
// A Record is created once per extracted line item. After creation only the
// matcher writes to it, and only the match annotation fields
// (MatchedID, MatchConfidence, MatchDetails) on its own copies.
package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO layout used for Record.Date
const DateLayout = "2006-01-02"

// MaxAmount is the largest absolute amount accepted for a record
var MaxAmount = decimal.NewFromInt(1_000_000)

// Status values
const (
	StatusPending = "pending"
	StatusMatched = "matched"
)

// SourceTag identifies the document family a record came from
type SourceTag string

const (
	SourceCardStatement     SourceTag = "card_statement"
	SourceItemizedStatement SourceTag = "itemized_statement"
	SourceReceipt           SourceTag = "receipt"
	SourceOrderReceipt      SourceTag = "order_receipt"
)

// IsLedger reports whether records from this source are ledger transactions
// (as opposed to receipt line items).
func (s SourceTag) IsLedger() bool {
	return s == SourceCardStatement || s == SourceItemizedStatement
}

// LedgerTags returns the source tags that produce ledger transactions
func LedgerTags() []SourceTag {
	return []SourceTag{SourceCardStatement, SourceItemizedStatement}
}

// ReceiptTags returns the source tags that produce receipt line items
func ReceiptTags() []SourceTag {
	return []SourceTag{SourceReceipt, SourceOrderReceipt}
}

// Record is a single normalized expense line item
type Record struct {
	ID               string          `json:"id"`
	SubjectID        string          `json:"subject_id"`
	SourceDocumentID string          `json:"source_document_id"`
	Date             string          `json:"date,omitempty"` // YYYY-MM-DD or empty
	Description      string          `json:"description"`
	Vendor           string          `json:"vendor"`
	Amount           decimal.Decimal `json:"amount"`
	Category         Category        `json:"category"`
	SourceTag        SourceTag       `json:"source_tag"`
	Status           string          `json:"status"`
	Confidence       float64         `json:"confidence"`
	ReferenceNumber  string          `json:"reference_number,omitempty"`
	OrderNumber      string          `json:"order_number,omitempty"`

	// Written by the matcher only
	MatchedID       string   `json:"matched_id,omitempty"`
	MatchConfidence float64  `json:"match_confidence,omitempty"`
	MatchDetails    []string `json:"match_details,omitempty"`
}

// DateValue parses Date. ok is false when the record has no date.
func (r Record) DateValue() (time.Time, bool) {
	if r.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Fields are the extraction inputs for New
type Fields struct {
	SubjectID        string
	SourceDocumentID string
	Date             time.Time // zero means no date
	Description      string
	Vendor           string
	Amount           decimal.Decimal
	Category         Category
	SourceTag        SourceTag
	Confidence       float64
	ReferenceNumber  string
	OrderNumber      string
}

// New builds a pending record with a deterministic ID
func New(f Fields) Record {
	date := ""
	if !f.Date.IsZero() {
		date = f.Date.Format(DateLayout)
	}

	rec := Record{
		SubjectID:        f.SubjectID,
		SourceDocumentID: f.SourceDocumentID,
		Date:             date,
		Description:      f.Description,
		Vendor:           f.Vendor,
		Amount:           f.Amount,
		Category:         f.Category,
		SourceTag:        f.SourceTag,
		Status:           StatusPending,
		Confidence:       f.Confidence,
		ReferenceNumber:  f.ReferenceNumber,
		OrderNumber:      f.OrderNumber,
	}
	if rec.Category == "" {
		rec.Category = CategoryOther
	}
	rec.ID = RecordID(rec.SubjectID, rec.Date, rec.Amount, rec.Description, rec.SourceDocumentID)
	return rec
}
