package expense

import "strings"

// Category is one of the closed expense taxonomy values
type Category string

const (
	CategoryInterest     Category = "interest"
	CategoryMeals        Category = "meals"
	CategoryTravel       Category = "travel"
	CategoryProfessional Category = "professional_services"
	CategoryOffice       Category = "office"
	CategoryUtilities    Category = "utilities"
	CategoryAdvertising  Category = "advertising"
	CategoryPlatform     Category = "platform"
	CategoryOther        Category = "other"
)

var allCategories = []Category{
	CategoryInterest,
	CategoryMeals,
	CategoryTravel,
	CategoryProfessional,
	CategoryOffice,
	CategoryUtilities,
	CategoryAdvertising,
	CategoryPlatform,
	CategoryOther,
}

// Categories returns the taxonomy in priority order
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory maps a string to a taxonomy value. Unknown input returns
// CategoryOther and false.
func ParseCategory(s string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, c := range allCategories {
		if normalized == string(c) {
			return c, true
		}
	}
	return CategoryOther, false
}
