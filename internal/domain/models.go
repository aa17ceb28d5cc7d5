package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

type Collection struct {
	Name      string `db:"name" json:"name"`
	Title     string `db:"title" json:"title"`
	CreatedAt string `db:"created_at" json:"-"`
}

// CatalogItem is one browsable entry of a collection: product, service,
// professional, training or listing.
type CatalogItem struct {
	ID          string            `json:"id"`
	Collection  string            `json:"collection"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Category    string            `json:"category"`
	Price       *float64          `json:"price,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// SearchableText joins the non-empty label, description and tags, case
// folded. It is derived on every call so edits to the source fields are
// always reflected.
func (it CatalogItem) SearchableText() string {
	parts := make([]string, 0, 2+len(it.Tags))
	for _, p := range append([]string{it.Label, it.Description}, it.Tags...) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return cases.Fold().String(strings.Join(parts, " "))
}

func (it CatalogItem) Attr(key string) string {
	if it.Attributes == nil {
		return ""
	}
	return it.Attributes[key]
}

// FilterState is pure data; visible results are always recomputed from it.
type FilterState struct {
	ActiveCategory   string              `json:"activeCategory"`
	SearchQuery      string              `json:"searchQuery"`
	AuxiliaryFilters map[string][]string `json:"auxiliaryFilters,omitempty"`
}

func DefaultFilterState() FilterState {
	return FilterState{ActiveCategory: AllCategories}
}
