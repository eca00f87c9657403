package store

import (
	"sort"
	"strings"

	"github.com/example/ec-storefront/internal/domain/product"
)

// TagMatch selects how free text is compared against product tags.
type TagMatch int

const (
	// TagEquals matches a tag equal to the text, ignoring case.
	TagEquals TagMatch = iota
	// TagContains matches a tag containing the text, ignoring case.
	TagContains
)

// ProductFilter is the predicate half of a catalog query. Zero values impose
// no restriction.
type ProductFilter struct {
	ActiveOnly   bool
	Category     string
	Subcategory  string
	Brand        string
	MinPrice     *float64
	MaxPrice     *float64
	Text         string
	TextTags     TagMatch
	FeaturedOnly bool
}

// Matches evaluates the filter in memory. It must agree with the SQL built by
// buildWhere.
func (f ProductFilter) Matches(p *product.Product) bool {
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	if f.Category != "" && string(p.Category) != f.Category {
		return false
	}
	if f.Subcategory != "" && p.Subcategory != f.Subcategory {
		return false
	}
	if f.Brand != "" && !containsFold(p.Brand, f.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if f.Text != "" && !f.matchesText(p) {
		return false
	}
	return true
}

func (f ProductFilter) matchesText(p *product.Product) bool {
	if containsFold(p.Name, f.Text) || containsFold(p.Description, f.Text) || containsFold(p.Brand, f.Text) {
		return true
	}
	if f.TextTags == TagContains {
		for _, t := range p.Tags {
			if containsFold(t, f.Text) {
				return true
			}
		}
		return false
	}
	return p.HasTag(f.Text)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// SortKey names a sortable product attribute.
type SortKey string

const (
	SortCreatedAt     SortKey = "createdAt"
	SortPrice         SortKey = "price"
	SortName          SortKey = "name"
	SortRatingAverage SortKey = "rating.average"
	SortRatingCount   SortKey = "rating.count"
)

var sortColumns = map[SortKey]string{
	SortCreatedAt:     "created_at",
	SortPrice:         "price",
	SortName:          "lower(name)",
	SortRatingAverage: "rating_average",
	SortRatingCount:   "rating_count",
}

// Sort orders a result set. Ties keep insertion order.
type Sort struct {
	Key  SortKey
	Desc bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Key: SortCreatedAt, Desc: true}

// NaturalSort keeps insertion order.
var NaturalSort = Sort{}

// ParseSort maps request parameters to a Sort. Unknown keys fall back to
// creation time; any order other than "asc" is descending.
func ParseSort(key, order string) Sort {
	k := SortKey(key)
	if _, ok := sortColumns[k]; !ok {
		k = SortCreatedAt
	}
	return Sort{Key: k, Desc: !strings.EqualFold(order, "asc")}
}

func (s Sort) column() string {
	if s.Key == "" {
		return "seq"
	}
	if col, ok := sortColumns[s.Key]; ok {
		return col
	}
	return sortColumns[SortCreatedAt]
}

// less compares two products on the sort key only.
func (s Sort) less(a, b *product.Product) bool {
	switch s.Key {
	case "":
		return false
	case SortPrice:
		return a.Price < b.Price
	case SortName:
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	case SortRatingAverage:
		return a.Rating.Average < b.Rating.Average
	case SortRatingCount:
		return a.Rating.Count < b.Rating.Count
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// Apply sorts products in place, keeping the incoming order for ties.
func (s Sort) Apply(products []*product.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if s.Desc {
			return s.less(products[j], products[i])
		}
		return s.less(products[i], products[j])
	})
}
