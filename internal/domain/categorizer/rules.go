package categorizer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

// Rule maps a keyword set to a category. A rule fires when any keyword occurs
// in the lowercased description starting at a word boundary, so "ink" matches
// "ink cartridge" but not "linkedin".
type Rule struct {
	Category expense.Category `yaml:"name"`
	Keywords []string         `yaml:"keywords"`
}

// RulesFile is the on-disk shape of a rules override
type RulesFile struct {
	Categories []Rule `yaml:"categories"`
}

// DefaultRules returns the built-in rules. Order is priority: interest
// charges outrank meals, meals outrank travel, and so on down to platform
// and infrastructure spend.
func DefaultRules() []Rule {
	return []Rule{
		{Category: expense.CategoryInterest, Keywords: []string{
			"interest charge", "interest charged", "purchase interest", "finance charge",
			"interest on purchases", "cash advance interest", "late fee", "annual fee",
		}},
		{Category: expense.CategoryMeals, Keywords: []string{
			"restaurant", "cafe", "coffee", "starbucks", "doordash", "uber eats", "grubhub",
			"pizza", "grill", "bistro", "diner", "bakery", "chipotle", "mcdonald", "taco",
			"sushi", "catering", "lunch", "dinner", "breakfast",
		}},
		{Category: expense.CategoryTravel, Keywords: []string{
			"airline", "airlines", "delta", "united air", "american air", "southwest", "hotel",
			"marriott", "hilton", "hyatt", "airbnb", "expedia", "uber", "lyft", "taxi",
			"parking", "rental car", "hertz", "avis", "amtrak",
		}},
		{Category: expense.CategoryProfessional, Keywords: []string{
			"legal", "attorney", "law office", "accounting", "cpa", "consulting",
			"bookkeeping", "notary", "upwork", "fiverr", "legalzoom",
		}},
		{Category: expense.CategoryOffice, Keywords: []string{
			"office depot", "officemax", "staples", "office supplies", "printer paper",
			"copy paper", "printer", "toner", "ink cartridge", "printer ink", "office chair",
			"desk chair", "standing desk", "usps", "fedex", "ups store", "united parcel service",
		}},
		{Category: expense.CategoryUtilities, Keywords: []string{
			"electric", "utility", "water", "gas company", "internet", "comcast",
			"xfinity", "verizon", "at&t", "t-mobile", "spectrum", "phone",
		}},
		{Category: expense.CategoryAdvertising, Keywords: []string{
			"facebook ads", "fb ads", "meta ads", "google ads", "adwords", "linkedin ads",
			"advertising", "marketing", "mailchimp", "promotion",
		}},
		{Category: expense.CategoryPlatform, Keywords: []string{
			"aws", "amazon web services", "google cloud", "gcp", "azure", "digitalocean",
			"heroku", "github", "gitlab", "atlassian", "slack", "zoom", "dropbox",
			"adobe", "microsoft", "openai", "vercel", "netlify", "cloudflare", "saas",
			"subscription", "software",
		}},
	}
}

// LoadRules reads a YAML rules file:
//
//	categories:
//	  - name: meals
//	    keywords: [restaurant, cafe]
//
// Unknown category names are rejected; keywords are lowercased.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}

	rules := make([]Rule, 0, len(file.Categories))
	for i, r := range file.Categories {
		category, ok := expense.ParseCategory(string(r.Category))
		if !ok {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, r.Category)
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		rules = append(rules, Rule{Category: category, Keywords: keywords})
	}

	return rules, nil
}
