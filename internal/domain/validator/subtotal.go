// Package validator checks extracted receipt items against the totals
// printed on the document.
//
// A receipt whose items do not add up to its printed subtotal usually means
// OCR dropped or duplicated a line. The check never changes records; it
// only reports the gap.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/normalize"
)

// Tolerance is the largest gap still treated as rounding
var Tolerance = decimal.RequireFromString("0.02")

var subtotalLine = regexp.MustCompile(`(?i)^(?:item\(?s\)?\s+)?sub-?total(?:\s*\(\d+\s+items?\))?\s*:?\s*(\$?\s?[\d,]+\.\d{2})$`)

// SubtotalCheck contains the result of comparing items to a printed subtotal.
type SubtotalCheck struct {
	// Checked is false when the document prints no subtotal
	Checked bool

	// Valid is true if the items sum to the subtotal within Tolerance
	Valid bool

	ItemsSum   decimal.Decimal
	Printed    decimal.Decimal
	Difference decimal.Decimal

	// Reason explains why validation failed (empty if valid)
	Reason string
}

// PrintedSubtotal finds the first subtotal line in the document text
func PrintedSubtotal(lines []string) (decimal.Decimal, bool) {
	for _, line := range lines {
		m := subtotalLine.FindStringSubmatch(normalizeSpace(line))
		if m == nil {
			continue
		}
		if v, ok := normalize.ParsePositiveAmount(m[1]); ok {
			return v, true
		}
	}
	return decimal.Zero, false
}

// CheckSubtotal compares the sum of records with the subtotal printed in
// lines.
func CheckSubtotal(lines []string, records []expense.Record) *SubtotalCheck {
	printed, ok := PrintedSubtotal(lines)
	if !ok {
		return &SubtotalCheck{}
	}
	return ValidateSubtotal(records, printed)
}

// ValidateSubtotal checks that record amounts sum to printed.
func ValidateSubtotal(records []expense.Record, printed decimal.Decimal) *SubtotalCheck {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Amount.Abs())
	}

	diff := sum.Sub(printed)
	check := &SubtotalCheck{
		Checked:    true,
		ItemsSum:   sum,
		Printed:    printed,
		Difference: diff,
	}

	if diff.Abs().LessThanOrEqual(Tolerance) {
		check.Valid = true
		return check
	}

	if diff.IsNegative() {
		check.Reason = fmt.Sprintf("items ($%s) are less than the printed subtotal ($%s) - missing $%s, likely an item was not extracted",
			sum.StringFixed(2), printed.StringFixed(2), diff.Neg().StringFixed(2))
	} else {
		check.Reason = fmt.Sprintf("items ($%s) exceed the printed subtotal ($%s) by $%s - possible duplicate or misread item",
			sum.StringFixed(2), printed.StringFixed(2), diff.StringFixed(2))
	}
	return check
}

var spaces = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(s), " ")
}
