package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	f := newFixture(t)
	items := []Item{{Name: "Rug", Price: decimal.NewFromInt(2000), Quantity: 1}}

	q := f.svc.Quote(items, "us")
	assert.Equal(t, "US", q.Country)
	assert.Equal(t, "USD", q.Currency)
	assert.False(t, q.CurrencyFallback)
	assert.True(t, q.ShippingFee.Equal(decimal.NewFromInt(50)))
	assert.True(t, q.Total.Equal(decimal.NewFromInt(2050)))
	assert.True(t, q.FreeShippingRemaining.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, int64(2410), q.SubtotalMinor)
	assert.Equal(t, int64(60), q.ShippingMinor)
	assert.Equal(t, int64(2470), q.TotalMinor)
	assert.Equal(t, "USD 24.70", q.TotalDisplay)
}

func TestQuote_FreeShippingAndFallback(t *testing.T) {
	f := newFixture(t)
	items := []Item{{Name: "Rug", Price: decimal.NewFromInt(2500), Quantity: 2}}

	q := f.svc.Quote(items, "ZZ")
	assert.True(t, q.CurrencyFallback)
	assert.Equal(t, "INR", q.Currency)
	assert.True(t, q.ShippingFee.IsZero())
	assert.True(t, q.FreeShippingRemaining.IsZero())
	assert.Equal(t, int64(500000), q.TotalMinor)
	assert.Equal(t, "INR 5,000.00", q.TotalDisplay)
}
