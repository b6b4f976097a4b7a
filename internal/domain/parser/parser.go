// Package parser extracts expense records from OCR documents. There is one
// Parser per document family, selected by source tag through a Registry.
//
// Parsers never fail on bad input: a line or row that does not yield a
// date, description and amount is skipped and the rest of the document is
// still read.
package parser

import (
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/categorizer"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/normalize"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

// Per-path confidence stamped on extracted records
const (
	ConfidenceStatementTable     = 0.9
	ConfidenceStatementLine      = 0.8
	ConfidenceStatementTwoLine   = 0.75
	ConfidenceReferenceStatement = 0.9
	ConfidenceReceiptLine        = 0.85
	ConfidenceReceiptAnchor      = 0.8
	ConfidenceReceiptTable       = 0.7
)

// Meta identifies the document being parsed
type Meta struct {
	SubjectID  string
	DocumentID string
	Tag        expense.SourceTag
	// Vendor, when known to the caller (e.g. the merchant a receipt came
	// from), overrides the vendor derived from each description.
	Vendor string
}

// Parser extracts records from one document family
type Parser interface {
	// Name is a short identifier, e.g. "tabular-statement"
	Name() string
	// Description is a human readable summary of the accepted layout
	Description() string
	// Parse returns every record found. It never returns nil for a
	// document that yields nothing; an empty slice is returned instead.
	Parse(doc *ocr.Document, meta Meta) []expense.Record
}

// Options are shared by all parser constructors
type Options struct {
	// ProcessingYear resolves two-part dates. 0 uses the current year.
	ProcessingYear int
	Categorizer    *categorizer.Categorizer
	Logger         *slog.Logger
}

// base holds what every parser needs to turn fields into records
type base struct {
	dates       normalize.DateParser
	categorizer *categorizer.Categorizer
	logger      *slog.Logger
}

func newBase(opts Options) base {
	c := opts.Categorizer
	if c == nil {
		c = categorizer.NewCategorizer(nil, nil, opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		dates:       normalize.NewDateParser(opts.ProcessingYear),
		categorizer: c,
		logger:      logger,
	}
}

type extracted struct {
	date        time.Time
	description string
	amount      decimal.Decimal
	confidence  float64
	reference   string
	order       string
}

func (b base) record(meta Meta, e extracted) expense.Record {
	description := cleanText(e.description)

	vendor := meta.Vendor
	if vendor == "" {
		vendor = normalize.DisplayVendor(description)
	}

	return expense.New(expense.Fields{
		SubjectID:        meta.SubjectID,
		SourceDocumentID: meta.DocumentID,
		Date:             e.date,
		Description:      description,
		Vendor:           vendor,
		Amount:           e.amount,
		Category:         b.categorizer.Categorize(description),
		SourceTag:        meta.Tag,
		Confidence:       e.confidence,
		ReferenceNumber:  e.reference,
		OrderNumber:      e.order,
	})
}

// cleanText collapses runs of whitespace
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// rightmostAmount scans cells from the last one down to minIndex and
// returns the first that is a positive amount.
func rightmostAmount(row []string, minIndex int) (decimal.Decimal, int, bool) {
	for i := len(row) - 1; i >= minIndex; i-- {
		if v, ok := normalize.ParsePositiveAmount(row[i]); ok {
			return v, i, true
		}
	}
	return decimal.Zero, -1, false
}
