// Package normalize turns raw OCR field text into typed values. Every
// function reports "no value" through a boolean rather than an error; a
// pattern that fails to parse simply yields to the next one.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// YearBoundaryMonth is the first month that, in a two-part date, is taken
// to belong to the year before the processing year.
const YearBoundaryMonth = time.November

type datePattern struct {
	re *regexp.Regexp
	// yearDigits is 4, 2 or 0 when the year is absent
	yearDigits int
}

// Tried in order; the first pattern that both matches and yields a valid
// calendar date wins. A date must not touch other digits, slashes or dashes,
// so fragments of ISO dates and longer numbers are never read as dates.
var datePatterns = []datePattern{
	{re: dateRegexp(`(\d{1,2})/(\d{1,2})/(\d{4})`), yearDigits: 4},
	{re: dateRegexp(`(\d{1,2})/(\d{1,2})/(\d{2})`), yearDigits: 2},
	{re: dateRegexp(`(\d{1,2})/(\d{1,2})`), yearDigits: 0},
	{re: dateRegexp(`(\d{1,2})-(\d{1,2})-(\d{4})`), yearDigits: 4},
	{re: dateRegexp(`(\d{1,2})-(\d{1,2})`), yearDigits: 0},
}

func dateRegexp(core string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\d/-])` + core + `(?:$|[^\d/-])`)
}

// DateParser parses statement and receipt dates
type DateParser struct {
	// ProcessingYear is the year two-part dates resolve against
	ProcessingYear int
}

// NewDateParser returns a parser for the given processing year. A year of 0
// uses the current calendar year.
func NewDateParser(processingYear int) DateParser {
	if processingYear <= 0 {
		processingYear = time.Now().Year()
	}
	return DateParser{ProcessingYear: processingYear}
}

// Parse returns the first date found in s. Two-part dates take the
// processing year, except November and December which take the year before.
func (p DateParser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, pattern := range datePatterns {
		m := pattern.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if t, ok := p.build(m, pattern.yearDigits); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p DateParser) build(m []string, yearDigits int) (time.Time, bool) {
	month, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}

	var year int
	switch yearDigits {
	case 4:
		year, err = strconv.Atoi(m[3])
	case 2:
		year, err = strconv.Atoi(m[3])
		year += 2000
	default:
		year = p.inferYear(month)
	}
	if err != nil {
		return time.Time{}, false
	}

	return ValidDate(year, month, day)
}

func (p DateParser) inferYear(month int) int {
	year := p.ProcessingYear
	if year <= 0 {
		year = time.Now().Year()
	}
	if month >= int(YearBoundaryMonth) {
		return year - 1
	}
	return year
}

// ValidDate builds a UTC date, rejecting out-of-range parts such as 02/30
// instead of normalizing them.
func ValidDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

var longDateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// ParseLongDate parses "Month Day, Year" phrases such as "March 4, 2024"
func ParseLongDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	for _, layout := range longDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
