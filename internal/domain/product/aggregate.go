package product

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidStock    = errors.New("stock must not be negative")
	ErrInvalidRating   = errors.New("rating average must be between 0 and 5 and count must not be negative")
	ErrInvalidCategory = errors.New("unknown category")
)

// Category is one of the fixed catalog categories.
type Category string

// CategoryAll is the listing sentinel meaning "no category restriction".
const CategoryAll = "all"

var knownCategories = map[Category]struct{}{
	"electronics": {}, "clothing": {}, "home": {}, "audio": {}, "accessories": {},
	"kitchen": {}, "fitness": {}, "gaming": {}, "shoes": {}, "sports": {},
	"books": {}, "beauty": {}, "toys": {}, "automotive": {}, "cleaning": {},
	"laptops": {}, "smartphones": {}, "tablets": {}, "televisions": {}, "appliances": {},
	"lighting": {}, "smart-home": {}, "skincare": {}, "makeup": {}, "jeans": {},
	"shirts": {}, "outerwear": {}, "board-games": {}, "building": {}, "finance": {},
	"self-help": {},
}

// IsKnownCategory reports whether c belongs to the catalog's category set.
func IsKnownCategory(c Category) bool {
	_, ok := knownCategories[c]
	return ok
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Product is a catalog record. IsActive gates listing visibility; products
// are never hard-deleted in normal operation.
type Product struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Category      Category  `json:"category"`
	Subcategory   string    `json:"subcategory,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	Images        []string  `json:"images"`
	Stock         int       `json:"stock"`
	Rating        Rating    `json:"rating"`
	Features      []string  `json:"features"`
	IsFeatured    bool      `json:"isFeatured"`
	IsActive      bool      `json:"isActive"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewID returns a fresh product identifier.
func NewID() string {
	return uuid.New().String()
}

// Validate checks the invariants enforced on administrative inserts.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Price < 0 || (p.OriginalPrice != nil && *p.OriginalPrice < 0) {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	if p.Rating.Average < 0 || p.Rating.Average > 5 || p.Rating.Count < 0 {
		return ErrInvalidRating
	}
	if !IsKnownCategory(p.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// DiscountPercent is the rounded discount implied by OriginalPrice, or 0 when
// there is no higher original price.
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price || *p.OriginalPrice == 0 {
		return 0
	}
	orig := *p.OriginalPrice
	return int(math.Round((orig - p.Price) / orig * 100))
}

// HasTag reports whether tag equals one of the product's tags, ignoring case.
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
