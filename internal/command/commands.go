package command

import "github.com/example/ec-storefront/internal/domain/product"

// Cart Commands
type AddToCart struct {
	UserID    string
	ProductID string
	Quantity  int
}

type UpdateCartItem struct {
	UserID    string
	ProductID string
	Quantity  int
}

type RemoveFromCart struct {
	UserID    string
	ProductID string
}

type ClearCart struct {
	UserID string
}

// Wishlist Commands
type AddToWishlist struct {
	UserID    string
	ProductID string
}

type RemoveFromWishlist struct {
	UserID    string
	ProductID string
}

// Catalog Commands
type SeedCatalog struct {
	Products []*product.Product
}
