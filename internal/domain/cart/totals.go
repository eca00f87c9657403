package cart

import "github.com/shopspring/decimal"

// Pricing holds the checkout constants applied to a cart subtotal.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPricing is the storefront's observed policy: free shipping above 50,
// otherwise a flat 9.99, and a flat 8% tax.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFee:           decimal.RequireFromString("9.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// PricedLine is a hydrated line reduced to what the totals need.
type PricedLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Summary is the set of values derived from a hydrated cart. Nothing here is
// persisted.
type Summary struct {
	ItemCount int
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// Compute derives the cart totals. Shipping is waived when the subtotal
// exceeds the threshold, so an empty cart still carries the flat fee.
func (p Pricing) Compute(lines []PricedLine) Summary {
	var s Summary
	s.Subtotal = decimal.Zero
	for _, l := range lines {
		s.ItemCount += l.Quantity
		s.Subtotal = s.Subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	s.Shipping = decimal.Zero
	if !s.Subtotal.GreaterThan(p.FreeShippingThreshold) {
		s.Shipping = p.ShippingFee
	}

	s.Tax = s.Subtotal.Mul(p.TaxRate).Round(2)
	s.Total = s.Subtotal.Add(s.Shipping).Add(s.Tax).Round(2)
	return s
}
