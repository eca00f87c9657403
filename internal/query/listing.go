package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

const (
	DefaultPageSize = 12
	DefaultMaxPage  = 100

	// maxPage keeps offset arithmetic far from overflow.
	maxPage = 1 << 30
)

var ErrInvalidQuery = errors.New("invalid query parameter")

// ListingQuery is a parsed catalog browse request.
type ListingQuery struct {
	Category    string
	Subcategory string
	Brand       string
	MinPrice    *float64
	MaxPrice    *float64
	Search      string
	Featured    bool
	Sort        store.Sort
	Page        int
	Limit       int
}

// ParseListingQuery reads listing parameters from a URL query string. Absent
// page and limit take defaults; malformed price bounds are rejected.
func ParseListingQuery(values url.Values) (ListingQuery, error) {
	q := ListingQuery{
		Category:    strings.TrimSpace(values.Get("category")),
		Subcategory: strings.TrimSpace(values.Get("subcategory")),
		Brand:       strings.TrimSpace(values.Get("brand")),
		Search:      strings.TrimSpace(values.Get("search")),
		Featured:    values.Get("featured") == "true",
		Sort:        store.ParseSort(values.Get("sortBy"), values.Get("sortOrder")),
		Page:        1,
		Limit:       DefaultPageSize,
	}

	var err error
	if q.MinPrice, err = parsePrice(values, "minPrice"); err != nil {
		return ListingQuery{}, err
	}
	if q.MaxPrice, err = parsePrice(values, "maxPrice"); err != nil {
		return ListingQuery{}, err
	}
	if v := values.Get("page"); v != "" {
		if q.Page, err = parseInt(v, "page"); err != nil {
			return ListingQuery{}, err
		}
	}
	if v := values.Get("limit"); v != "" {
		if q.Limit, err = parseInt(v, "limit"); err != nil {
			return ListingQuery{}, err
		}
	}
	return q, nil
}

func parsePrice(values url.Values, key string) (*float64, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidQuery, key)
	}
	return &f, nil
}

func parseInt(v, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidQuery, key)
	}
	return n, nil
}

// ParseLimit reads an optional "limit" parameter, returning def when absent.
func ParseLimit(values url.Values, def int) (int, error) {
	v := values.Get("limit")
	if v == "" {
		return def, nil
	}
	return parseInt(v, "limit")
}

// normalize clamps page and limit into [1, maxPageSize].
func (q ListingQuery) normalize(maxPageSize int) ListingQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > maxPage {
		q.Page = maxPage
	}
	q.Limit = clampLimit(q.Limit, maxPageSize)
	return q
}

func clampLimit(limit, maxPageSize int) int {
	if limit < 1 {
		return 1
	}
	if maxPageSize > 0 && limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func (q ListingQuery) filter() store.ProductFilter {
	f := store.ProductFilter{
		ActiveOnly:   true,
		Subcategory:  q.Subcategory,
		Brand:        q.Brand,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		Text:         q.Search,
		TextTags:     store.TagEquals,
		FeaturedOnly: q.Featured,
	}
	if q.Category != "" && q.Category != product.CategoryAll {
		f.Category = q.Category
	}
	return f
}
