package parser

import (
	"regexp"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/normalize"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

const (
	referenceStartMarker = "transaction summary"
	referenceEndMarker   = "important information"
)

// transDate postDate reference description amount
var referenceLine = regexp.MustCompile(
	`^(` + datePart + `)\s+(` + datePart + `)\s+([A-Za-z0-9]*\d[A-Za-z0-9]*)\s+(.+?)\s+(` + amountPart + `)$`)

// minReferenceLength keeps short numbers inside descriptions ("7 ELEVEN")
// from being read as a reference column
const minReferenceLength = 4

// ReferenceStatementParser reads itemized credit card statements where each
// transaction line carries a transaction date, a posting date and a
// reference number.
type ReferenceStatementParser struct {
	base
}

// NewReferenceStatementParser creates a reference-numbered statement parser
func NewReferenceStatementParser(opts Options) *ReferenceStatementParser {
	return &ReferenceStatementParser{base: newBase(opts)}
}

func (p *ReferenceStatementParser) Name() string { return "reference-statement" }

func (p *ReferenceStatementParser) Description() string {
	return "Itemized card statement lines: trans date, post date, reference, description, amount"
}

// Parse implements Parser. Lines before the "transaction summary" marker
// and after "important information" are ignored; a document without the
// start marker is read from the top.
func (p *ReferenceStatementParser) Parse(doc *ocr.Document, meta Meta) []expense.Record {
	lines := doc.Lines()
	records := []expense.Record{}

	inSection := true
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), referenceStartMarker) {
			inSection = false
			break
		}
	}

	for _, raw := range lines {
		line := cleanText(raw)
		lower := strings.ToLower(line)

		if inSection && strings.Contains(lower, referenceEndMarker) {
			break
		}
		if strings.Contains(lower, referenceStartMarker) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}

		m := referenceLine.FindStringSubmatch(line)
		if m == nil || len(m[3]) < minReferenceLength || !hasLetter(m[4]) {
			continue
		}

		date, ok := p.dates.Parse(m[1])
		if !ok {
			continue
		}
		amount, ok := normalize.ParsePositiveAmount(m[5])
		if !ok {
			continue
		}

		records = append(records, p.record(meta, extracted{
			date:        date,
			description: m[4],
			amount:      amount,
			confidence:  ConfidenceReferenceStatement,
			reference:   m[3],
		}))
	}

	p.logger.Debug("Parsed reference statement",
		"document_id", meta.DocumentID,
		"lines", len(lines),
		"records", len(records))

	return records
}
