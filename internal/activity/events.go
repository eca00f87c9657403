package activity

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a cart or wishlist change.
type EventType string

const (
	CartItemAdded       EventType = "CartItemAdded"
	CartItemUpdated     EventType = "CartItemUpdated"
	CartItemRemoved     EventType = "CartItemRemoved"
	CartCleared         EventType = "CartCleared"
	WishlistItemAdded   EventType = "WishlistItemAdded"
	WishlistItemRemoved EventType = "WishlistItemRemoved"
)

func (t EventType) Valid() bool {
	switch t {
	case CartItemAdded, CartItemUpdated, CartItemRemoved, CartCleared, WishlistItemAdded, WishlistItemRemoved:
		return true
	}
	return false
}

// Event records one applied mutation. Quantity is the requested quantity for
// adds and the new quantity for updates.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, userID, productID string, quantity int) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       t,
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
		OccurredAt: time.Now().UTC(),
	}
}
