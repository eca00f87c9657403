package readmodel

import (
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
)

// CartItem is a cart line with its product resolved
type CartItem struct {
	ID       string           `json:"_id"`
	Product  *product.Product `json:"product"`
	Quantity int              `json:"quantity"`
}

// Pagination describes one page of a listing
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

// ProductPage is the response of a catalog listing
type ProductPage struct {
	Products   []*product.Product `json:"products"`
	Pagination Pagination         `json:"pagination"`
}

// CartSummary is the hydrated cart together with its derived totals
type CartSummary struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  float64    `json:"subtotal"`
	Shipping  float64    `json:"shipping"`
	Tax       float64    `json:"tax"`
	Total     float64    `json:"total"`
}

// UserProfile is the public view of an account
type UserProfile struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
