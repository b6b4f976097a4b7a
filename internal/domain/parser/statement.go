package parser

import (
	"regexp"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/normalize"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

// Lines starting with one of these open the transaction section
var sectionStartMarkers = []string{
	"transaction details",
	"account activity",
	"transactions",
	"new charges",
	"purchases and adjustments",
	"purchases",
}

// Lines containing one of these close it, once it has been opened by a
// start marker or, without start markers, by a first transaction
var sectionEndMarkers = []string{
	"total fees",
	"totals year-to-date",
	"total new charges",
	"total transactions",
	"interest charge calculation",
	"account summary",
}

// Summary lines are never transactions, even inside the section
var summaryPrefixes = []string{
	"total",
	"subtotal",
	"previous balance",
	"new balance",
	"minimum payment",
	"payment due",
	"credit limit",
	"available credit",
	"balance",
}

const (
	datePart   = `\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?`
	amountPart = `\(?-?\$?\s?[\d,]+\.\d{2}\)?-?`
)

var (
	statementLine    = regexp.MustCompile(`^(` + datePart + `)\s+(.+?)\s+(` + amountPart + `)$`)
	dateOnlyLine     = regexp.MustCompile(`^(` + datePart + `)$`)
	descriptionPrice = regexp.MustCompile(`^(.+?)\s+(` + amountPart + `)$`)
)

// StatementParser reads card statements laid out as tables, falling back to
// the text lines of the transaction section when no table yields a record.
type StatementParser struct {
	base
}

// NewStatementParser creates a tabular statement parser
func NewStatementParser(opts Options) *StatementParser {
	return &StatementParser{base: newBase(opts)}
}

func (p *StatementParser) Name() string { return "tabular-statement" }

func (p *StatementParser) Description() string {
	return "Card statement tables (date, description, amount); line layout fallback"
}

// Parse implements Parser
func (p *StatementParser) Parse(doc *ocr.Document, meta Meta) []expense.Record {
	records := p.parseTables(doc, meta)
	p.logger.Debug("Parsed statement tables",
		"document_id", meta.DocumentID,
		"records", len(records))

	if len(records) > 0 {
		return records
	}

	records = p.parseLines(doc.Lines(), meta)
	p.logger.Debug("Parsed statement lines",
		"document_id", meta.DocumentID,
		"records", len(records))
	return records
}

func (p *StatementParser) parseTables(doc *ocr.Document, meta Meta) []expense.Record {
	records := []expense.Record{}

	for _, table := range doc.Tables() {
		for _, row := range table.DataRows(true) {
			// date, description, and at least one amount column
			if len(row) < 3 {
				continue
			}

			amount, _, ok := rightmostAmount(row, 2)
			if !ok {
				continue
			}

			description := cleanText(row[1])
			if description == "" || isSummaryLine(strings.ToLower(description)) {
				continue
			}

			date, _ := p.dates.Parse(row[0])
			records = append(records, p.record(meta, extracted{
				date:        date,
				description: description,
				amount:      amount,
				confidence:  ConfidenceStatementTable,
			}))
		}
	}

	return records
}

func (p *StatementParser) parseLines(lines []string, meta Meta) []expense.Record {
	records := []expense.Record{}

	inSection := !hasSectionStart(lines)
	opened := false
	for i := 0; i < len(lines); i++ {
		line := cleanText(lines[i])
		lower := strings.ToLower(line)

		switch {
		case line == "":
			continue
		case containsAny(lower, sectionEndMarkers):
			if opened {
				inSection = false
			}
			continue
		case hasPrefixAny(lower, sectionStartMarkers):
			inSection = true
			opened = true
			continue
		}

		if !inSection || isSummaryLine(lower) {
			continue
		}

		if m := statementLine.FindStringSubmatch(line); m != nil {
			if rec, ok := p.lineRecord(meta, m[1], m[2], m[3], ConfidenceStatementLine); ok {
				records = append(records, rec)
				opened = true
			}
			continue
		}

		// Date on its own line, "description amount" on the next
		if m := dateOnlyLine.FindStringSubmatch(line); m != nil && i+1 < len(lines) {
			next := cleanText(lines[i+1])
			nm := descriptionPrice.FindStringSubmatch(next)
			if nm == nil || isSummaryLine(strings.ToLower(next)) {
				continue
			}
			if rec, ok := p.lineRecord(meta, m[1], nm[1], nm[2], ConfidenceStatementTwoLine); ok {
				records = append(records, rec)
				opened = true
				i++
			}
		}
	}

	return records
}

func (p *StatementParser) lineRecord(meta Meta, rawDate, description, rawAmount string, confidence float64) (expense.Record, bool) {
	amount, ok := normalize.ParsePositiveAmount(rawAmount)
	if !ok || !hasLetter(description) {
		return expense.Record{}, false
	}
	date, ok := p.dates.Parse(rawDate)
	if !ok {
		return expense.Record{}, false
	}
	return p.record(meta, extracted{
		date:        date,
		description: description,
		amount:      amount,
		confidence:  confidence,
	}), true
}

func hasSectionStart(lines []string) bool {
	for _, line := range lines {
		if hasPrefixAny(strings.ToLower(strings.TrimSpace(line)), sectionStartMarkers) {
			return true
		}
	}
	return false
}

func isSummaryLine(lower string) bool {
	return hasPrefixAny(strings.TrimSpace(lower), summaryPrefixes)
}
