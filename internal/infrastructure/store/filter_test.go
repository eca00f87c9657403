package store

import (
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func newTestProduct(id, name string) *product.Product {
	return &product.Product{
		ID:          id,
		Name:        name,
		Description: "A fine " + name,
		Price:       100,
		Category:    "electronics",
		Subcategory: "audio",
		Brand:       "Sony",
		Stock:       10,
		IsActive:    true,
		Tags:        []string{"wireless", "noise-cancelling"},
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// ============================================
// ProductFilter.Matches
// ============================================

func TestProductFilter_Matches(t *testing.T) {
	p := newTestProduct("p1", "Headphones")

	tests := []struct {
		name   string
		filter ProductFilter
		want   bool
	}{
		{"empty filter", ProductFilter{}, true},
		{"active only", ProductFilter{ActiveOnly: true}, true},
		{"category match", ProductFilter{Category: "electronics"}, true},
		{"category mismatch", ProductFilter{Category: "books"}, false},
		{"subcategory mismatch", ProductFilter{Subcategory: "video"}, false},
		{"brand substring ignores case", ProductFilter{Brand: "sON"}, true},
		{"brand mismatch", ProductFilter{Brand: "Bose"}, false},
		{"min price inclusive", ProductFilter{MinPrice: ptr(100)}, true},
		{"min price above", ProductFilter{MinPrice: ptr(100.01)}, false},
		{"max price inclusive", ProductFilter{MaxPrice: ptr(100)}, true},
		{"max price below", ProductFilter{MaxPrice: ptr(99.99)}, false},
		{"featured only", ProductFilter{FeaturedOnly: true}, false},
		{"text in name", ProductFilter{Text: "phones"}, true},
		{"text in description", ProductFilter{Text: "fine"}, true},
		{"text in brand", ProductFilter{Text: "sony"}, true},
		{"text equals tag", ProductFilter{Text: "WIRELESS"}, true},
		{"text partial tag with equality", ProductFilter{Text: "cancel"}, false},
		{"text partial tag with contains", ProductFilter{Text: "cancel", TextTags: TagContains}, true},
		{"text no match", ProductFilter{Text: "keyboard", TextTags: TagContains}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(p))
		})
	}
}

func TestProductFilter_Matches_Inactive(t *testing.T) {
	p := newTestProduct("p1", "Headphones")
	p.IsActive = false

	assert.False(t, ProductFilter{ActiveOnly: true}.Matches(p))
	assert.True(t, ProductFilter{}.Matches(p))
}

// ============================================
// Sort
// ============================================

func TestParseSort(t *testing.T) {
	assert.Equal(t, DefaultSort, ParseSort("", ""))
	assert.Equal(t, Sort{Key: SortPrice, Desc: false}, ParseSort("price", "asc"))
	assert.Equal(t, Sort{Key: SortPrice, Desc: true}, ParseSort("price", "sideways"))
	assert.Equal(t, Sort{Key: SortRatingAverage, Desc: true}, ParseSort("rating.average", "desc"))
	assert.Equal(t, Sort{Key: SortCreatedAt, Desc: false}, ParseSort("password", "ASC"))
}

func TestSort_Apply_StableTies(t *testing.T) {
	a := newTestProduct("a", "Alpha")
	b := newTestProduct("b", "Bravo")
	b.Price = 50
	c := newTestProduct("c", "Charlie")

	products := []*product.Product{a, b, c}
	Sort{Key: SortPrice, Desc: true}.Apply(products)

	require.Len(t, products, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{products[0].ID, products[1].ID, products[2].ID})

	Sort{Key: SortPrice}.Apply(products)
	assert.Equal(t, []string{"b", "a", "c"}, []string{products[0].ID, products[1].ID, products[2].ID})
}

func TestSort_Apply_NameIgnoresCase(t *testing.T) {
	products := []*product.Product{
		newTestProduct("z", "zebra"),
		newTestProduct("b", "Banana"),
		newTestProduct("a", "apple"),
	}

	Sort{Key: SortName}.Apply(products)

	assert.Equal(t, []string{"a", "b", "z"}, []string{products[0].ID, products[1].ID, products[2].ID})
	assert.Equal(t, "lower(name)", Sort{Key: SortName}.column())
}

func TestSort_Apply_CreatedAtDesc(t *testing.T) {
	older := newTestProduct("old", "Old")
	newer := newTestProduct("new", "New")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	products := []*product.Product{older, newer}
	DefaultSort.Apply(products)

	assert.Equal(t, "new", products[0].ID)
}

// ============================================
// SQL builder
// ============================================

func TestBuildWhere_Empty(t *testing.T) {
	where, args := buildWhere(ProductFilter{})

	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)
}

func TestBuildWhere_Conditions(t *testing.T) {
	where, args := buildWhere(ProductFilter{
		ActiveOnly: true,
		Category:   "electronics",
		Brand:      "sony",
		MinPrice:   ptr(10),
		MaxPrice:   ptr(500),
	})

	assert.Equal(t, "is_active AND category = $1 AND brand ILIKE $2 AND price >= $3 AND price <= $4", where)
	assert.Equal(t, []any{"electronics", "%sony%", 10.0, 500.0}, args)
}

func TestBuildWhere_TextEscapesWildcards(t *testing.T) {
	where, args := buildWhere(ProductFilter{Text: `50%_off\`})

	require.Len(t, args, 2)
	assert.Equal(t, `%50\%\_off\\%`, args[0])
	assert.Equal(t, `50%_off\`, args[1])
	assert.Contains(t, where, "name ILIKE $1 OR description ILIKE $1 OR brand ILIKE $1")
	assert.Contains(t, where, "lower(t) = lower($2)")
}

func TestBuildWhere_TextTagContains(t *testing.T) {
	where, args := buildWhere(ProductFilter{Text: "wire", TextTags: TagContains})

	assert.Equal(t, []any{"%wire%"}, args)
	assert.Contains(t, where, "t ILIKE $1")
}

func TestBuildFindQuery(t *testing.T) {
	pageSQL, countSQL, pageArgs, countArgs := buildFindQuery(
		ProductFilter{ActiveOnly: true, Category: "books"},
		Sort{Key: SortRatingCount, Desc: true},
		24, 12,
	)

	assert.Equal(t, "SELECT COUNT(*) FROM products WHERE is_active AND category = $1", countSQL)
	assert.Contains(t, pageSQL, "ORDER BY rating_count DESC, seq ASC LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{"books"}, countArgs)
	assert.Equal(t, []any{"books", 12, 24}, pageArgs)
}

func TestSort_Apply_NaturalKeepsOrder(t *testing.T) {
	a := newTestProduct("a", "Zulu")
	b := newTestProduct("b", "Alpha")
	b.CreatedAt = a.CreatedAt.Add(time.Hour)

	products := []*product.Product{a, b}
	NaturalSort.Apply(products)

	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "seq", NaturalSort.column())
}
