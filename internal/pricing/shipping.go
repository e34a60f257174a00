package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingFee returns the flat fee in the base currency for shipping an order
// of the given subtotal to country. Orders at or above the free-shipping
// threshold ship free; unknown countries pay the default (highest) fee.
func (t *Tables) ShippingFee(country string, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(t.threshold) {
		return decimal.Zero
	}
	if fee, ok := t.countryShipping[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return fee
	}
	return t.defaultFee
}

// RemainingForFreeShipping is how much more the customer must spend to reach
// the threshold, zero once reached.
func (t *Tables) RemainingForFreeShipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(t.threshold) {
		return decimal.Zero
	}
	return t.threshold.Sub(subtotal)
}
