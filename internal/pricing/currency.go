package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Resolution is the outcome of mapping a destination country to a currency.
type Resolution struct {
	Country  string          `json:"country"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	// Fallback is set when the country or its currency rate was unknown and
	// the base currency or a 1.0 rate was substituted.
	Fallback bool `json:"fallback"`
}

// Resolve maps a country code to its currency and exchange rate. It never
// fails: unknown countries resolve to the base currency, unknown rates to 1.0.
func (t *Tables) Resolve(country string) Resolution {
	country = strings.ToUpper(strings.TrimSpace(country))
	res := Resolution{Country: country}

	currency, ok := t.countryCurrency[country]
	if !ok {
		currency = t.base
		res.Fallback = true
	}
	res.Currency = currency

	rate, ok := t.rates[currency]
	if !ok {
		rate = decimal.NewFromInt(1)
		res.Fallback = true
	}
	res.Rate = rate
	return res
}

// CurrencyFor returns only the currency code for a country.
func (t *Tables) CurrencyFor(country string) string {
	return t.Resolve(country).Currency
}

// Rate returns the base-to-currency rate, 1.0 when the currency is unknown.
func (t *Tables) Rate(currency string) decimal.Decimal {
	if rate, ok := t.rates[strings.ToUpper(currency)]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

// Convert multiplies a base amount by the country's rate. No rounding is
// applied; round once at the minor-unit boundary.
func (t *Tables) Convert(amount decimal.Decimal, country string) decimal.Decimal {
	return amount.Mul(t.Resolve(country).Rate)
}

// ConvertMinor converts a base amount for a country straight to the integer
// minor units of the country's currency.
func (t *Tables) ConvertMinor(amount decimal.Decimal, country string) (int64, string) {
	res := t.Resolve(country)
	return t.ToMinor(amount.Mul(res.Rate), res.Currency), res.Currency
}
