package catalog

import (
	"testing"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, name, description, categoryID, price string, featured bool) models.Product {
	return models.Product{
		ID:          id,
		Name:        name,
		Description: description,
		CategoryID:  categoryID,
		Price:       decimal.RequireFromString(price),
		Featured:    featured,
	}
}

func testProducts() []models.Product {
	return []models.Product{
		product("1", "Smartphone Galaxy", "6.5 inch display", "electronics", "1299.99", true),
		product("2", "Notebook Inspiron", "Intel i5 notebook", "electronics", "2499.99", false),
		product("3", "Polo Shirt", "Cotton polo shirt", "clothing", "89.99", false),
		product("4", "Yoga Mat", "Non-slip mat", "sports", "59.90", true),
	}
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestSearchIsCaseInsensitiveOnNameAndDescription(t *testing.T) {
	got := Apply(testProducts(), Filter{Search: "NOTEBOOK"})
	assert.Equal(t, []string{"2"}, ids(got))

	// Matches description too.
	got = Apply(testProducts(), Filter{Search: "display"})
	assert.Equal(t, []string{"1"}, ids(got))

	got = Apply(testProducts(), Filter{Search: "no-such-thing"})
	assert.Empty(t, got)
}

func TestCategoryFilterIsExact(t *testing.T) {
	got := Apply(testProducts(), Filter{CategoryID: "electronics"})
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestFeaturedOnly(t *testing.T) {
	got := Apply(testProducts(), Filter{FeaturedOnly: true})
	assert.Equal(t, []string{"1", "4"}, ids(got))
}

func TestSortByName(t *testing.T) {
	got := Apply(testProducts(), Filter{SortBy: SortByName})
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(got))
}

func TestSortByPrice(t *testing.T) {
	asc := Apply(testProducts(), Filter{SortBy: SortByPriceAsc})
	assert.Equal(t, []string{"4", "3", "1", "2"}, ids(asc))

	desc := Apply(testProducts(), Filter{SortBy: SortByPriceDesc})
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids(desc))
}

func TestSortByFeaturedIsStable(t *testing.T) {
	got := Apply(testProducts(), Filter{SortBy: SortByFeatured})
	// Featured first, original order preserved within each group.
	assert.Equal(t, []string{"1", "4", "2", "3"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := testProducts()
	_ = Apply(in, Filter{SortBy: SortByPriceDesc})

	require.Equal(t, []string{"1", "2", "3", "4"}, ids(in))
}

func TestUnknownSortKeepsInputOrder(t *testing.T) {
	got := Apply(testProducts(), Filter{SortBy: "whatever"})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))
}
