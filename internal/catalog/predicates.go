package catalog

import (
	"strconv"
	"strings"

	"github.com/jainjy/servo-sub017/internal/domain"
)

// Predicate tests one item against one accepted value of a dimension.
type Predicate func(it domain.CatalogItem, value string) bool

var dimensions = map[string]Predicate{
	"rating":   matchMinRating,
	"location": matchLocation,
	"price":    matchPriceTier,
	"tag":      matchTag,
	"duration": matchDuration,
}

// Dimensions returns the auxiliary filter keys understood by the engine.
func Dimensions() []string {
	return []string{"rating", "location", "price", "tag", "duration"}
}

// IsDimension reports whether key names an auxiliary filter.
func IsDimension(key string) bool {
	_, ok := dimensions[key]
	return ok
}

func MatchCategory(it domain.CatalogItem, category string) bool {
	return category == "" || category == domain.AllCategories || it.Category == category
}

func MatchSearch(it domain.CatalogItem, query string) bool {
	return matchFoldedQuery(it, Fold(query))
}

func matchFoldedQuery(it domain.CatalogItem, folded string) bool {
	if folded == "" {
		return true
	}
	return strings.Contains(it.SearchableText(), folded)
}

// MatchAuxiliary ANDs across dimensions and ORs within one. Unknown
// dimensions and empty value sets impose no constraint.
func MatchAuxiliary(it domain.CatalogItem, filters map[string][]string) bool {
	for key, values := range filters {
		pred, ok := dimensions[key]
		if !ok || len(values) == 0 {
			continue
		}
		matched := false
		for _, v := range values {
			if pred(it, v) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func matchMinRating(it domain.CatalogItem, value string) bool {
	floor, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	rating, err := strconv.ParseFloat(it.Attr("rating"), 64)
	if err != nil {
		return false
	}
	return rating >= floor
}

func matchLocation(it domain.CatalogItem, value string) bool {
	needle := Fold(strings.TrimSpace(value))
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(it.Attr("location")), needle)
}

// matchPriceTier accepts "min-max", "min+" and "-max" tiers.
func matchPriceTier(it domain.CatalogItem, value string) bool {
	if it.Price == nil {
		return false
	}
	lo, hi, ok := parseTier(value)
	if !ok {
		return false
	}
	p := *it.Price
	return p >= lo && p <= hi
}

func parseTier(value string) (lo, hi float64, ok bool) {
	v := strings.TrimSpace(value)
	lo, hi = 0, 1e18
	switch {
	case strings.HasSuffix(v, "+"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "+"), 64)
		if err != nil {
			return 0, 0, false
		}
		return f, hi, true
	case strings.HasPrefix(v, "-"):
		f, err := strconv.ParseFloat(strings.TrimPrefix(v, "-"), 64)
		if err != nil {
			return 0, 0, false
		}
		return lo, f, true
	}
	a, b, found := strings.Cut(v, "-")
	if !found {
		return 0, 0, false
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil || fa > fb {
		return 0, 0, false
	}
	return fa, fb, true
}

func matchTag(it domain.CatalogItem, value string) bool {
	want := Fold(strings.TrimSpace(value))
	for _, t := range it.Tags {
		if Fold(t) == want {
			return true
		}
	}
	return false
}

func matchDuration(it domain.CatalogItem, value string) bool {
	return Fold(strings.TrimSpace(it.Attr("duration"))) == Fold(strings.TrimSpace(value))
}
