package matcher

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	orderIDPattern    = regexp.MustCompile(`\b\d{3}-\d{7}-\d{7}\b`)
	prefixedPattern   = regexp.MustCompile(`(?i)\b(?:INV|ORDER)-\d+\b`)
	hashNumberPattern = regexp.MustCompile(`#(\d{6,})\b`)
	longNumberPattern = regexp.MustCompile(`\b\d{10,}\b`)
	longTokenPattern  = regexp.MustCompile(`\b[A-Za-z0-9]{10,}\b`)
)

// ExtractReferences finds reference numbers in a description: 3-7-7 order
// ids, INV-/ORDER- numbers, "#" followed by 6+ digits, bare numbers of 10+
// digits and alphanumeric tokens of 10+ characters containing a digit.
// Results are uppercased and de-duplicated in order of first appearance.
func ExtractReferences(description string) []string {
	var refs []string
	seen := make(map[string]bool)
	add := func(ref string) {
		ref = strings.ToUpper(ref)
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	for _, m := range orderIDPattern.FindAllString(description, -1) {
		add(m)
	}
	for _, m := range prefixedPattern.FindAllString(description, -1) {
		add(m)
	}
	for _, m := range hashNumberPattern.FindAllStringSubmatch(description, -1) {
		add(m[1])
	}
	for _, m := range longNumberPattern.FindAllString(description, -1) {
		add(m)
	}
	for _, m := range longTokenPattern.FindAllString(description, -1) {
		if hasDigit(m) {
			add(m)
		}
	}

	return refs
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// sharedReferences returns references present in both sets, in a's order
func sharedReferences(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]bool, len(b))
	for _, ref := range b {
		inB[ref] = true
	}
	var shared []string
	for _, ref := range a {
		if inB[ref] {
			shared = append(shared, ref)
		}
	}
	return shared
}
