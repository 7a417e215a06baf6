// Package pricing centralizes every price-defaulting rule in the storefront:
// sale-price precedence, shipping-cost and tax-rate fallbacks. No other
// package coalesces optional pricing fields.
package pricing

import "github.com/bloomedge/storefront/internal/model"

// EffectiveUnitPrice returns the sale price when present and positive,
// otherwise the base price.
func EffectiveUnitPrice(p model.Product) float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}

// LineSubtotal is the effective unit price times the line quantity.
func LineSubtotal(l model.CartLine) float64 {
	return EffectiveUnitPrice(l.Product) * float64(l.Quantity)
}

// lineShipping treats a missing shipping cost as zero.
func lineShipping(l model.CartLine) float64 {
	if l.ShippingCost == nil {
		return 0
	}
	return *l.ShippingCost * float64(l.Quantity)
}

// lineTax applies the line's tax rate to its subtotal; a missing rate is zero.
func lineTax(l model.CartLine) float64 {
	if l.TaxPercentage == nil {
		return 0
	}
	return LineSubtotal(l) * (*l.TaxPercentage / 100)
}

// Totals are the checkout-time monetary aggregates over a set of cart lines.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Compute sums the lines into checkout totals.
func Compute(lines []model.CartLine) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += LineSubtotal(l)
		t.Shipping += lineShipping(l)
		t.Tax += lineTax(l)
	}
	t.Total = t.Subtotal + t.Shipping + t.Tax
	return t
}
