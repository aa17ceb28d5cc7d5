// Package catalog computes the visible subset of a collection for a filter
// state. Everything here is pure and synchronous.
package catalog

import (
	"golang.org/x/text/cases"

	"github.com/jainjy/servo-sub017/internal/domain"
)

// Fold normalizes s for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ComputeVisible returns the items passing the category, search and
// auxiliary filters of state, in source order. The query is matched as
// given; trimming user input is the caller's job. The input slice is never
// modified.
func ComputeVisible(items []domain.CatalogItem, state domain.FilterState) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	query := Fold(state.SearchQuery)
	for _, it := range items {
		if !MatchCategory(it, state.ActiveCategory) {
			continue
		}
		if !matchFoldedQuery(it, query) {
			continue
		}
		if !MatchAuxiliary(it, state.AuxiliaryFilters) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Categories lists the distinct categories of items in first-seen order.
func Categories(items []domain.CatalogItem) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	return out
}
