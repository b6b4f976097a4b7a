package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/normalize"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

// Lines mentioning any of these are order summary rows, not items
var receiptExcludedVocabulary = []string{
	"subtotal",
	"total",
	"tax",
	"shipping",
	"refund",
	"return",
	"discount",
	"promotion",
	"payment",
	"balance",
	"estimated",
	"gift card",
	"before tax",
	"handling",
	"coupon",
	"savings",
}

// Lines that sit between a product name and its seller anchor
var receiptMetadataVocabulary = []string{
	"sold by",
	"supplied by",
	"condition",
	"qty",
	"quantity",
	"order #",
	"arriving",
	"delivered",
	"shipped",
	"buy it again",
	"track package",
	"write a product review",
	"view your item",
}

// How far the anchor pass looks around a "sold by" line
const anchorWindow = 5

var (
	placedOnPattern    = regexp.MustCompile(`(?i)(?:placed on|order placed:?)\s+([A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})`)
	orderNumberPattern = regexp.MustCompile(`(?i)order\s*#\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`)

	itemPriceLine  = regexp.MustCompile(`^(.+?)\s+\$\s?([\d,]+\.\d{2})$`)
	plainPriceLine = regexp.MustCompile(`^\$?\s?([\d,]+\.\d{2})$`)
	qtyPriceLine   = regexp.MustCompile(`(?i)^(?:qty:?\s*)?(\d+)\s*(?:x|@)?\s*\$\s?([\d,]+\.\d{2})$`)
	eachPriceLine  = regexp.MustCompile(`(?i)^\$?\s?([\d,]+\.\d{2})\s*(?:each|ea\.?|/\s?ea)$`)
)

// ReceiptParser reads itemized receipts and e-commerce order pages
type ReceiptParser struct {
	base
}

// NewReceiptParser creates an itemized receipt parser
func NewReceiptParser(opts Options) *ReceiptParser {
	return &ReceiptParser{base: newBase(opts)}
}

func (p *ReceiptParser) Name() string { return "itemized-receipt" }

func (p *ReceiptParser) Description() string {
	return "Itemized receipts and order pages: priced lines, sold-by blocks, item tables"
}

// receiptContext is document-level information applied to every item
type receiptContext struct {
	orderDate   time.Time
	orderNumber string
}

// itemSet accumulates records, dropping repeated (description, amount)
// pairs across all passes of one document.
type itemSet struct {
	seen    map[string]bool
	records []expense.Record
}

func newItemSet() *itemSet {
	return &itemSet{seen: make(map[string]bool), records: []expense.Record{}}
}

func (s *itemSet) add(description string, amount decimal.Decimal) bool {
	key := strings.ToLower(cleanText(description)) + "|" + amount.StringFixed(2)
	if s.seen[key] {
		return false
	}
	s.seen[key] = true
	return true
}

// Parse implements Parser
func (p *ReceiptParser) Parse(doc *ocr.Document, meta Meta) []expense.Record {
	lines := doc.Lines()
	rc := p.readContext(lines)
	items := newItemSet()

	lineCount := p.pricedLines(lines, meta, rc, items)
	anchorCount := p.sellerAnchors(lines, meta, rc, items)
	tableCount := p.tables(doc, meta, rc, items)

	p.logger.Debug("Parsed receipt",
		"document_id", meta.DocumentID,
		"order_number", rc.orderNumber,
		"line_items", lineCount,
		"anchor_items", anchorCount,
		"table_items", tableCount)

	return items.records
}

func (p *ReceiptParser) readContext(lines []string) receiptContext {
	var rc receiptContext
	text := strings.Join(lines, "\n")

	if m := placedOnPattern.FindStringSubmatch(text); m != nil {
		if t, ok := normalize.ParseLongDate(strings.Replace(m[1], ".", "", 1)); ok {
			rc.orderDate = t
		}
	}
	if rc.orderDate.IsZero() {
		for _, line := range lines {
			if !strings.Contains(strings.ToLower(line), "date") {
				continue
			}
			if t, ok := p.dates.Parse(line); ok {
				rc.orderDate = t
				break
			}
		}
	}

	if m := orderNumberPattern.FindStringSubmatch(text); m != nil {
		rc.orderNumber = m[1]
	}

	return rc
}

func (p *ReceiptParser) emit(meta Meta, rc receiptContext, items *itemSet, description string, amount decimal.Decimal, confidence float64) bool {
	description = cleanText(description)
	if !items.add(description, amount) {
		return false
	}
	items.records = append(items.records, p.record(meta, extracted{
		date:        rc.orderDate,
		description: description,
		amount:      amount,
		confidence:  confidence,
		order:       rc.orderNumber,
	}))
	return true
}

// pricedLines is pass 1: "description $amount" lines
func (p *ReceiptParser) pricedLines(lines []string, meta Meta, rc receiptContext, items *itemSet) int {
	count := 0
	for _, raw := range lines {
		line := cleanText(raw)
		lower := strings.ToLower(line)
		if containsAny(lower, receiptExcludedVocabulary) || containsAny(lower, receiptMetadataVocabulary) {
			continue
		}

		m := itemPriceLine.FindStringSubmatch(line)
		if m == nil || !hasLetter(m[1]) {
			continue
		}
		amount, ok := normalize.ParsePositiveAmount(m[2])
		if !ok {
			continue
		}
		if p.emit(meta, rc, items, m[1], amount, ConfidenceReceiptLine) {
			count++
		}
	}
	return count
}

// sellerAnchors is pass 2: a "sold by" or "supplied by" line, the product
// name above it and the price below it.
func (p *ReceiptParser) sellerAnchors(lines []string, meta Meta, rc receiptContext, items *itemSet) int {
	count := 0
	for i, raw := range lines {
		lower := strings.ToLower(raw)
		if !strings.Contains(lower, "sold by") && !strings.Contains(lower, "supplied by") {
			continue
		}

		name := ""
		for j := i - 1; j >= 0 && j >= i-anchorWindow; j-- {
			if candidate := cleanText(lines[j]); !isReceiptMetadata(candidate) {
				name = candidate
				break
			}
		}
		if name == "" {
			continue
		}

		for k := i + 1; k < len(lines) && k <= i+anchorWindow; k++ {
			amount, ok := anchorPrice(cleanText(lines[k]))
			if !ok {
				continue
			}
			if p.emit(meta, rc, items, name, amount, ConfidenceReceiptAnchor) {
				count++
			}
			break
		}
	}
	return count
}

// anchorPrice reads a price-shaped line: "$12.99", "2 $25.98" (the shown
// price), or "$12.99 each" (the unit price).
func anchorPrice(line string) (decimal.Decimal, bool) {
	if m := eachPriceLine.FindStringSubmatch(line); m != nil {
		return normalize.ParsePositiveAmount(m[1])
	}
	if m := qtyPriceLine.FindStringSubmatch(line); m != nil {
		return normalize.ParsePositiveAmount(m[2])
	}
	if m := plainPriceLine.FindStringSubmatch(line); m != nil {
		return normalize.ParsePositiveAmount(m[1])
	}
	return decimal.Zero, false
}

func isReceiptMetadata(line string) bool {
	if line == "" || !hasLetter(line) || strings.Contains(line, "$") {
		return true
	}
	lower := strings.ToLower(line)
	return containsAny(lower, receiptMetadataVocabulary) || containsAny(lower, receiptExcludedVocabulary)
}

// tables is pass 3. Receipts have no reliable header row, so row 1 is read
// like any other.
func (p *ReceiptParser) tables(doc *ocr.Document, meta Meta, rc receiptContext, items *itemSet) int {
	count := 0
	for _, table := range doc.Tables() {
		for _, row := range table.DataRows(false) {
			if len(row) < 2 || containsAny(strings.ToLower(strings.Join(row, " ")), receiptExcludedVocabulary) {
				continue
			}

			amount, amountIdx, ok := rightmostAmount(row, 1)
			if !ok {
				continue
			}

			description := ""
			for _, cell := range row[:amountIdx] {
				if hasLetter(cell) {
					description = cell
					break
				}
			}
			if description == "" {
				continue
			}

			if p.emit(meta, rc, items, description, amount, ConfidenceReceiptTable) {
				count++
			}
		}
	}
	return count
}
