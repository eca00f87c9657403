package cart

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("productId is required")
	ErrItemNotInCart   = errors.New("item not found in cart")
)

// LineItem is one (product, quantity) pair embedded in a user's cart.
type LineItem struct {
	ID        string `json:"_id"`
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Cart holds at most one line item per product, in insertion order.
type Cart []LineItem

func (c Cart) indexOf(productID string) int {
	for i, item := range c {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Find returns the line item for productID.
func (c Cart) Find(productID string) (LineItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c[i], true
	}
	return LineItem{}, false
}

// Add increments the quantity of an existing line item or appends a new one.
func (c *Cart) Add(productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if i := c.indexOf(productID); i >= 0 {
		(*c)[i].Quantity += quantity
		return nil
	}
	*c = append(*c, LineItem{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

// Update overwrites the quantity of an existing line item. A quantity of zero
// or less removes the line.
func (c *Cart) Update(productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotInCart
	}
	if quantity <= 0 {
		*c = append((*c)[:i:i], (*c)[i+1:]...)
		return nil
	}
	(*c)[i].Quantity = quantity
	return nil
}

// Remove drops the line item for productID. Absent products are a no-op.
func (c *Cart) Remove(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		*c = append((*c)[:i:i], (*c)[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	*c = Cart{}
}

// ItemCount is the sum of all line-item quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// ProductIDs lists referenced products in cart order.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for _, item := range c {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Wishlist is a set of product ids kept in insertion order for display.
type Wishlist []string

// Contains reports whether productID is on the wishlist.
func (w Wishlist) Contains(productID string) bool {
	for _, id := range w {
		if id == productID {
			return true
		}
	}
	return false
}

// Add appends productID unless already present and reports whether the
// wishlist changed.
func (w *Wishlist) Add(productID string) (bool, error) {
	if productID == "" {
		return false, ErrInvalidProduct
	}
	if w.Contains(productID) {
		return false, nil
	}
	*w = append(*w, productID)
	return true, nil
}

// Remove drops productID and reports whether it was present.
func (w *Wishlist) Remove(productID string) bool {
	for i, id := range *w {
		if id == productID {
			*w = append((*w)[:i:i], (*w)[i+1:]...)
			return true
		}
	}
	return false
}
