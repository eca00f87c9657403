package activity

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(CartItemAdded, "user-1", "prod-1", 2)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, CartItemAdded, e.Type)
	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, "prod-1", e.ProductID)
	assert.Equal(t, 2, e.Quantity)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestHandler_HandleMessage(t *testing.T) {
	h := NewHandler(nil)
	ctx := context.Background()

	for _, e := range []Event{
		NewEvent(CartItemAdded, "u1", "a", 2),
		NewEvent(CartItemAdded, "u2", "a", 1),
		NewEvent(CartItemAdded, "u1", "b", 5),
		NewEvent(CartItemUpdated, "u1", "b", 1),
		NewEvent(CartCleared, "u1", "", 0),
	} {
		data, err := json.Marshal(e)
		require.NoError(t, err)
		require.NoError(t, h.HandleMessage(ctx, []byte(e.UserID), data))
	}

	assert.Equal(t, 3, h.Count(CartItemAdded))
	assert.Equal(t, 1, h.Count(CartItemUpdated))
	assert.Equal(t, 1, h.Count(CartCleared))
	assert.Equal(t, 0, h.Count(WishlistItemAdded))

	assert.Equal(t, []ProductAdds{{ProductID: "b", Quantity: 5}, {ProductID: "a", Quantity: 3}}, h.TopAdded(0))
	assert.Equal(t, []ProductAdds{{ProductID: "b", Quantity: 5}}, h.TopAdded(1))
}

func TestHandler_HandleMessage_Invalid(t *testing.T) {
	h := NewHandler(nil)
	ctx := context.Background()

	assert.Error(t, h.HandleMessage(ctx, nil, []byte("not json")))
	assert.Error(t, h.HandleMessage(ctx, nil, []byte(`{"type":"OrderPlaced"}`)))
	assert.Empty(t, h.TopAdded(0))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(CartCleared, "u", "", 0)))
}
