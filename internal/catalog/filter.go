// Package catalog filters and sorts an already-fetched product list,
// mirroring what the products page does over its full fetch.
package catalog

import (
	"sort"
	"strings"

	"storefront-service/internal/models"
)

// Sort orders for Apply.
const (
	SortByName      = "name"
	SortByPriceAsc  = "price-asc"
	SortByPriceDesc = "price-desc"
	SortByFeatured  = "featured"
)

// Filter narrows a product list. Zero values mean "no constraint".
type Filter struct {
	// Search matches name or description, case-insensitive substring.
	Search string
	// CategoryID requires an exact category match.
	CategoryID string
	// FeaturedOnly keeps only featured products.
	FeaturedOnly bool
	// SortBy is one of the Sort constants; anything else keeps input order.
	SortBy string
}

// Apply returns the filtered and sorted products. The input slice is
// not modified and the sort is stable.
func Apply(products []models.Product, f Filter) []models.Product {
	out := make([]models.Product, 0, len(products))

	search := strings.ToLower(f.Search)
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}

	switch f.SortBy {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortByPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.LessThan(out[j].Price)
		})
	case SortByPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[j].Price.LessThan(out[i].Price)
		})
	case SortByFeatured:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Featured && !out[j].Featured
		})
	}

	return out
}
