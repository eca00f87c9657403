package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Cart Add Tests
// ============================================

func TestCart_Add_NewItem(t *testing.T) {
	var c Cart

	err := c.Add("prod-1", 2)

	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, "prod-1", c[0].ProductID)
	assert.Equal(t, 2, c[0].Quantity)
	assert.NotEmpty(t, c[0].ID)
}

func TestCart_Add_AccumulatesQuantity(t *testing.T) {
	var c Cart

	require.NoError(t, c.Add("prod-1", 2))
	firstID := c[0].ID
	require.NoError(t, c.Add("prod-1", 3))

	require.Len(t, c, 1)
	assert.Equal(t, 5, c[0].Quantity)
	assert.Equal(t, firstID, c[0].ID)
}

func TestCart_Add_KeepsInsertionOrder(t *testing.T) {
	var c Cart

	require.NoError(t, c.Add("prod-b", 1))
	require.NoError(t, c.Add("prod-a", 1))
	require.NoError(t, c.Add("prod-b", 1))

	assert.Equal(t, []string{"prod-b", "prod-a"}, c.ProductIDs())
}

func TestCart_Add_InvalidInput(t *testing.T) {
	var c Cart

	assert.ErrorIs(t, c.Add("", 1), ErrInvalidProduct)
	assert.ErrorIs(t, c.Add("prod-1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("prod-1", -2), ErrInvalidQuantity)
	assert.Empty(t, c)
}

// ============================================
// Cart Update Tests
// ============================================

func TestCart_Update_Overwrites(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 3))

	err := c.Update("prod-1", 5)

	require.NoError(t, err)
	assert.Equal(t, 5, c[0].Quantity)
}

func TestCart_Update_ZeroRemoves(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 2))
	require.NoError(t, c.Add("prod-2", 1))

	err := c.Update("prod-1", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"prod-2"}, c.ProductIDs())
}

func TestCart_Update_NegativeRemoves(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 2))

	require.NoError(t, c.Update("prod-1", -4))

	assert.Empty(t, c)
}

func TestCart_Update_MissingItem(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 2))

	err := c.Update("prod-9", 1)

	assert.ErrorIs(t, err, ErrItemNotInCart)
	assert.Len(t, c, 1)
}

// ============================================
// Cart Remove / Clear Tests
// ============================================

func TestCart_Remove(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 1))
	require.NoError(t, c.Add("prod-2", 1))
	require.NoError(t, c.Add("prod-3", 1))

	c.Remove("prod-2")

	assert.Equal(t, []string{"prod-1", "prod-3"}, c.ProductIDs())
}

func TestCart_Remove_AbsentIsNoOp(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 4))
	before := append(Cart(nil), c...)

	c.Remove("prod-404")

	assert.Equal(t, before, c)
}

func TestCart_Remove_DoesNotAliasPreviousSlice(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 1))
	require.NoError(t, c.Add("prod-2", 2))
	snapshot := c

	c.Remove("prod-1")

	assert.Equal(t, "prod-1", snapshot[0].ProductID)
	assert.Equal(t, []string{"prod-2"}, c.ProductIDs())
}

func TestCart_ClearAndItemCount(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add("prod-1", 2))
	require.NoError(t, c.Add("prod-2", 3))

	assert.Equal(t, 5, c.ItemCount())

	c.Clear()

	assert.Empty(t, c)
	assert.Equal(t, 0, c.ItemCount())
}

// ============================================
// Wishlist Tests
// ============================================

func TestWishlist_Add_IsIdempotent(t *testing.T) {
	var w Wishlist

	changed, err := w.Add("prod-1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = w.Add("prod-1")
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, Wishlist{"prod-1"}, w)
}

func TestWishlist_Add_EmptyID(t *testing.T) {
	var w Wishlist

	_, err := w.Add("")

	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestWishlist_Remove(t *testing.T) {
	w := Wishlist{"prod-1", "prod-2", "prod-3"}

	assert.True(t, w.Remove("prod-2"))
	assert.False(t, w.Remove("prod-2"))
	assert.Equal(t, Wishlist{"prod-1", "prod-3"}, w)
}

// ============================================
// Totals Tests
// ============================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPricing_Compute_FreeShipping(t *testing.T) {
	summary := DefaultPricing().Compute([]PricedLine{
		{UnitPrice: d("100"), Quantity: 2},
		{UnitPrice: d("25"), Quantity: 1},
	})

	assert.Equal(t, 3, summary.ItemCount)
	assert.True(t, summary.Subtotal.Equal(d("225")), summary.Subtotal.String())
	assert.True(t, summary.Shipping.IsZero())
	assert.True(t, summary.Tax.Equal(d("18.00")), summary.Tax.String())
	assert.True(t, summary.Total.Equal(d("243.00")), summary.Total.String())
}

func TestPricing_Compute_FlatShippingBelowThreshold(t *testing.T) {
	summary := DefaultPricing().Compute([]PricedLine{
		{UnitPrice: d("19.99"), Quantity: 2},
	})

	assert.True(t, summary.Subtotal.Equal(d("39.98")))
	assert.True(t, summary.Shipping.Equal(d("9.99")))
	assert.True(t, summary.Tax.Equal(d("3.20")), summary.Tax.String())
	assert.True(t, summary.Total.Equal(d("53.17")), summary.Total.String())
}

func TestPricing_Compute_ThresholdIsExclusive(t *testing.T) {
	summary := DefaultPricing().Compute([]PricedLine{
		{UnitPrice: d("50"), Quantity: 1},
	})

	assert.True(t, summary.Shipping.Equal(d("9.99")))
}

func TestPricing_Compute_EmptyCart(t *testing.T) {
	summary := DefaultPricing().Compute(nil)

	assert.Equal(t, 0, summary.ItemCount)
	assert.True(t, summary.Subtotal.IsZero())
	assert.True(t, summary.Shipping.Equal(d("9.99")), summary.Shipping.String())
	assert.True(t, summary.Tax.IsZero())
	assert.True(t, summary.Total.Equal(d("9.99")), summary.Total.String())
}

func TestPricing_Compute_CustomPolicy(t *testing.T) {
	p := Pricing{
		FreeShippingThreshold: d("100"),
		ShippingFee:           d("5"),
		TaxRate:               d("0.1"),
	}

	summary := p.Compute([]PricedLine{{UnitPrice: d("60"), Quantity: 1}})

	assert.True(t, summary.Shipping.Equal(d("5")))
	assert.True(t, summary.Tax.Equal(d("6")))
	assert.True(t, summary.Total.Equal(d("71")))
}
