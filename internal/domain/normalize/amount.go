package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d+)?$|^\.\d+$`)

// ParseAmount parses a money string. It strips "$", thousands separators
// and whitespace, and reads a leading "-", surrounding parentheses, or a
// trailing "-" or ")" as negative. Values above expense.MaxAmount in
// magnitude are not amounts.
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "", "\t", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") {
		negative = true
		cleaned = strings.TrimPrefix(cleaned, "(")
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = true
		cleaned = strings.TrimPrefix(cleaned, "-")
	}
	if strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.TrimSuffix(cleaned, ")")
	}
	if strings.HasSuffix(cleaned, "-") {
		negative = true
		cleaned = strings.TrimSuffix(cleaned, "-")
	}

	if !amountPattern.MatchString(cleaned) {
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if value.GreaterThan(expense.MaxAmount) {
		return decimal.Zero, false
	}
	if negative {
		value = value.Neg()
	}
	return value, true
}

// ParsePositiveAmount is ParseAmount restricted to values above zero
func ParsePositiveAmount(s string) (decimal.Decimal, bool) {
	v, ok := ParseAmount(s)
	if !ok || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}
