// Package categorizer assigns expense categories from descriptions using
// ordered keyword rules.
package categorizer

import (
	"log/slog"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

// Cache interface for category mappings keyed by normalized description
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// Categorizer evaluates rules top to bottom; the first rule with any
// matching keyword wins, otherwise the category is "other".
type Categorizer struct {
	rules  []Rule
	cache  Cache
	logger *slog.Logger
}

// NewCategorizer creates a new categorizer. Nil rules means DefaultRules,
// nil cache means no caching.
func NewCategorizer(rules []Rule, cache Cache, logger *slog.Logger) *Categorizer {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Categorizer{
		rules:  rules,
		cache:  cache,
		logger: logger,
	}
}

// Categorize returns the category for a raw description
func (c *Categorizer) Categorize(description string) expense.Category {
	key := normalizeDescription(description)
	if key == "" {
		return expense.CategoryOther
	}

	if c.cache != nil {
		if cached, found := c.cache.Get(key); found {
			category, _ := expense.ParseCategory(cached)
			return category
		}
	}

	category := c.match(key)
	if c.cache != nil {
		c.cache.Set(key, string(category))
	}
	return category
}

func (c *Categorizer) match(description string) expense.Category {
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if keyword != "" && containsAtWordStart(description, keyword) {
				c.logger.Debug("Categorized description",
					"category", rule.Category,
					"keyword", keyword)
				return rule.Category
			}
		}
	}
	return expense.CategoryOther
}

// containsAtWordStart reports whether keyword occurs in s at a position not
// preceded by a letter or digit.
func containsAtWordStart(s, keyword string) bool {
	if !isWordByte(keyword[0]) {
		return strings.Contains(s, keyword)
	}
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], keyword)
		if i < 0 {
			return false
		}
		at := from + i
		if at == 0 || !isWordByte(s[at-1]) {
			return true
		}
		from = at + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// normalizeDescription normalizes a description for matching and cache keys
func normalizeDescription(description string) string {
	return strings.Join(strings.Fields(strings.ToLower(description)), " ")
}
