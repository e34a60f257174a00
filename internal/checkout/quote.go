package checkout

import (
	"github.com/shopspring/decimal"
)

// Quote is the price breakdown shown before the customer commits. Base
// amounts are in the base currency; the *Minor fields are in Currency.
type Quote struct {
	Country               string          `json:"country"`
	Currency              string          `json:"currency"`
	Rate                  decimal.Decimal `json:"rate"`
	CurrencyFallback      bool            `json:"currencyFallback"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	ShippingFee           decimal.Decimal `json:"shippingFee"`
	Total                 decimal.Decimal `json:"total"`
	FreeShippingRemaining decimal.Decimal `json:"freeShippingRemaining"`
	SubtotalMinor         int64           `json:"subtotalMinor"`
	ShippingMinor         int64           `json:"shippingMinor"`
	TotalMinor            int64           `json:"totalMinor"`
	SubtotalDisplay       string          `json:"subtotalDisplay"`
	ShippingDisplay       string          `json:"shippingDisplay"`
	TotalDisplay          string          `json:"totalDisplay"`
}

// Quote prices items for delivery to country. Per-line minor amounts are
// summed the same way CreateSession bills them.
func (s *Service) Quote(items []Item, country string) Quote {
	res := s.tables.Resolve(country)
	subtotal := Subtotal(items)
	fee := s.tables.ShippingFee(res.Country, subtotal)

	var subtotalMinor int64
	for _, it := range items {
		unit := s.tables.ToMinor(it.Price.Mul(res.Rate), res.Currency)
		subtotalMinor += unit * int64(it.Quantity)
	}
	shippingMinor := s.tables.ToMinor(fee.Mul(res.Rate), res.Currency)

	q := Quote{
		Country:               res.Country,
		Currency:              res.Currency,
		Rate:                  res.Rate,
		CurrencyFallback:      res.Fallback,
		Subtotal:              subtotal,
		ShippingFee:           fee,
		Total:                 subtotal.Add(fee),
		FreeShippingRemaining: s.tables.RemainingForFreeShipping(subtotal),
		SubtotalMinor:         subtotalMinor,
		ShippingMinor:         shippingMinor,
		TotalMinor:            subtotalMinor + shippingMinor,
	}
	q.SubtotalDisplay = s.tables.FormatMinor(q.SubtotalMinor, q.Currency)
	q.ShippingDisplay = s.tables.FormatMinor(q.ShippingMinor, q.Currency)
	q.TotalDisplay = s.tables.FormatMinor(q.TotalMinor, q.Currency)
	return q
}
