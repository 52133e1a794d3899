package core

// Category is the closed set of conflict-scenario categories.
type Category string

const (
	CategoryTerritorial Category = "territorial"
	CategoryEthnic      Category = "ethnic"
	CategoryResource    Category = "resource"
	CategoryUrban       Category = "urban"
)

// Categories returns the closed category set in canonical order.
func Categories() []Category {
	return []Category{CategoryTerritorial, CategoryEthnic, CategoryResource, CategoryUrban}
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryTerritorial, CategoryEthnic, CategoryResource, CategoryUrban:
		return true
	}
	return false
}

// Sample is one conflict-scenario prompt with metadata. Samples are
// immutable once loaded into a Store.
type Sample struct {
	ID              string               `json:"id" yaml:"id"`
	Prompt          string               `json:"prompt" yaml:"prompt"`
	Category        Category             `json:"category" yaml:"category"`
	MethodTags      []string             `json:"method_tags,omitempty" yaml:"method_tags,omitempty"`
	RubricOverrides map[Dimension]string `json:"rubric_overrides,omitempty" yaml:"rubric_overrides,omitempty"`
}
