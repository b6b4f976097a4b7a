package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// corporateSuffixes are dropped when they appear as whole words
var corporateSuffixes = map[string]bool{
	"inc":          true,
	"incorporated": true,
	"llc":          true,
	"corp":         true,
	"corporation":  true,
	"ltd":          true,
	"limited":      true,
	"co":           true,
	"company":      true,
	"plc":          true,
	"gmbh":         true,
}

type synonym struct {
	key   string
	value string
}

// vendorSynonyms is evaluated in order and the first key found in the
// normalized vendor wins, so more specific keys must come first. A key must
// start at a word boundary: "aws" matches "aws emea" but not "laws".
var vendorSynonyms = []synonym{
	{"amazon web services", "aws"},
	{"aws", "aws"},
	{"amzn", "amazon"},
	{"amazon com", "amazon"},
	{"amazon mktp", "amazon"},
	{"uber eats", "uber eats"},
	{"ubereats", "uber eats"},
	{"uber", "uber"},
	{"wal mart", "walmart"},
	{"wm supercenter", "walmart"},
	{"walmart com", "walmart"},
	{"costco whse", "costco"},
	{"costco wholesale", "costco"},
	{"wholefds", "whole foods"},
	{"whole foods", "whole foods"},
	{"target com", "target"},
	{"msft", "microsoft"},
	{"googl", "google"},
	{"apple com", "apple"},
	{"itunes", "apple"},
	{"starbucks", "starbucks"},
}

// Vendor returns the comparison form of a vendor or description: lowercase,
// corporate suffixes removed, punctuation flattened, whitespace collapsed,
// then mapped through the synonym table.
func Vendor(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = stripSuffixes(s)

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	for _, syn := range vendorSynonyms {
		if strings.Contains(" "+s, " "+syn.key) {
			return syn.value
		}
	}
	return s
}

// stripSuffixes removes corporate suffix words, tolerating trailing
// punctuation such as "Inc." or "Co,".
func stripSuffixes(s string) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		bare := strings.TrimRight(w, ".,;")
		if corporateSuffixes[bare] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

var (
	processorPrefix = regexp.MustCompile(`^(?i)(sq|tst|sp|pp|paypal|pos|ach|dbt|debit|purchase)\s*\*\s*`)
	storeNumber     = regexp.MustCompile(`\s+#?\d{3,}.*$`)
	trailingID      = regexp.MustCompile(`\s*\*\s*[a-zA-Z0-9]+$`)
	locationTail    = regexp.MustCompile(`\s{2,}.*$`)
)

// DisplayVendor derives a readable vendor name from a raw transaction
// description, e.g. "SQ *BLUE BOTTLE COFFEE 0421 OAKLAND" becomes
// "Blue Bottle Coffee".
func DisplayVendor(description string) string {
	s := strings.TrimSpace(description)
	if s == "" {
		return ""
	}

	s = processorPrefix.ReplaceAllString(s, "")
	s = trailingID.ReplaceAllString(s, "")
	s = locationTail.ReplaceAllString(s, "")
	if trimmed := storeNumber.ReplaceAllString(s, ""); strings.TrimSpace(trimmed) != "" {
		s = trimmed
	}

	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return strings.TrimSpace(description)
	}
	return titleCase(s)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
