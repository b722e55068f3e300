package domain

import (
	"encoding/json"
	"fmt"
)

// AllCategoryName is the wire form of the "no filter" category.
const AllCategoryName = "all"

// Category is either the "all" sentinel or one specific, case-sensitive
// category name. The zero value is the sentinel.
type Category struct {
	name     string
	specific bool
}

// AllCategories returns the sentinel that matches every product.
func AllCategories() Category {
	return Category{}
}

// SpecificCategory returns a category matching products whose category
// equals name exactly.
func SpecificCategory(name string) Category {
	return Category{name: name, specific: true}
}

// ParseCategory maps "all" to the sentinel and anything else to a specific
// category. No validation against the catalog is performed.
func ParseCategory(s string) Category {
	if s == AllCategoryName {
		return AllCategories()
	}
	return SpecificCategory(s)
}

// IsAll reports whether c is the sentinel.
func (c Category) IsAll() bool { return !c.specific }

// Name returns the specific category name, or "" for the sentinel.
func (c Category) Name() string { return c.name }

func (c Category) String() string {
	if c.IsAll() {
		return AllCategoryName
	}
	return c.name
}

// Matches reports whether p belongs to c.
func (c Category) Matches(p Product) bool {
	return c.IsAll() || p.Category == c.name
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category must be a string: %w", err)
	}
	*c = ParseCategory(s)
	return nil
}

// FilterProducts returns the products in category c, preserving catalog
// order. The sentinel returns a copy of the whole catalog.
func FilterProducts(products []Product, c Category) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
