package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestResolve_SupportedCountriesHaveRates(t *testing.T) {
	tables := MustLoad()
	known := map[string]bool{}
	for _, c := range tables.Currencies() {
		known[c] = true
	}

	countries := tables.AllowedCountries()
	require.Len(t, countries, 28)
	for _, country := range countries {
		res := tables.Resolve(country)
		assert.False(t, res.Fallback, country)
		assert.True(t, known[res.Currency], "country %s resolved to %s", country, res.Currency)
	}
}

func TestResolve_UnknownCountryFallsBack(t *testing.T) {
	tables := MustLoad()
	res := tables.Resolve("ZZ")
	assert.Equal(t, "INR", res.Currency)
	assert.True(t, res.Rate.Equal(decimal.NewFromInt(1)))
	assert.True(t, res.Fallback)

	res = tables.Resolve(" us ")
	assert.Equal(t, "US", res.Country)
	assert.Equal(t, "USD", res.Currency)
	assert.False(t, res.Fallback)
}

func TestConvert_IsLinear(t *testing.T) {
	tables := MustLoad()
	a, b := dec("1234.5"), dec("99.99")
	for _, country := range []string{"US", "JP", "AR", "IN", "ZZ"} {
		sum := tables.Convert(a.Add(b), country)
		parts := tables.Convert(a, country).Add(tables.Convert(b, country))
		assert.True(t, sum.Equal(parts), country)
	}
}

func TestConvertMinor(t *testing.T) {
	tables := MustLoad()
	tests := []struct {
		country  string
		amount   string
		minor    int64
		currency string
	}{
		{"US", "2000", 2410, "USD"},
		{"JP", "2000", 3614, "JPY"},
		{"IN", "2499", 249900, "INR"},
		{"GB", "50", 48, "GBP"},
		{"ZZ", "10.005", 1001, "INR"},
	}
	for _, tt := range tests {
		minor, currency := tables.ConvertMinor(dec(tt.amount), tt.country)
		assert.Equal(t, tt.minor, minor, tt.country)
		assert.Equal(t, tt.currency, currency, tt.country)
	}
}

func TestShippingFee(t *testing.T) {
	tables := MustLoad()
	assert.True(t, tables.ShippingFee("US", dec("4999.99")).Equal(dec("50")))
	assert.True(t, tables.ShippingFee("US", dec("5000")).IsZero())
	assert.True(t, tables.ShippingFee("JP", dec("10")).Equal(dec("150")))
	assert.True(t, tables.ShippingFee("ZZ", dec("10")).Equal(dec("150")))
	assert.True(t, tables.ShippingFee("in", dec("10")).Equal(dec("80")))
}

func TestShippingFee_NonIncreasingInSubtotal(t *testing.T) {
	tables := MustLoad()
	subtotals := []string{"0", "1", "2500", "4999.99", "5000", "5000.01", "100000"}
	for _, country := range append(tables.AllowedCountries(), "ZZ") {
		prev := tables.ShippingFee(country, dec(subtotals[0]))
		for _, s := range subtotals[1:] {
			fee := tables.ShippingFee(country, dec(s))
			assert.True(t, fee.LessThanOrEqual(prev), "%s at %s", country, s)
			prev = fee
		}
	}
}

func TestRemainingForFreeShipping(t *testing.T) {
	tables := MustLoad()
	assert.True(t, tables.RemainingForFreeShipping(dec("4000")).Equal(dec("1000")))
	assert.True(t, tables.RemainingForFreeShipping(dec("6000")).IsZero())
}

func TestFormatMinor(t *testing.T) {
	tables := MustLoad()
	assert.Equal(t, "USD 24.10", tables.FormatMinor(2410, "USD"))
	assert.Equal(t, "USD 1,234,567.89", tables.FormatMinor(123456789, "usd"))
	assert.Equal(t, "JPY 3,614", tables.FormatMinor(3614, "JPY"))
	assert.Equal(t, "INR 0.05", tables.FormatMinor(5, "INR"))
	assert.Equal(t, "USD -12.00", tables.FormatMinor(-1200, "USD"))
	assert.Equal(t, "USD 24.10", tables.Format(dec("2000"), "US"))
}

func TestParseMinor_RoundTrip(t *testing.T) {
	tables := MustLoad()
	values := []int64{0, 1, 9, 10, 99, 100, 999, 1000, 123456, 1000000, 987654321}
	for _, currency := range []string{"USD", "JPY", "INR", "KRW"} {
		for _, v := range values {
			got, err := tables.ParseMinor(tables.FormatMinor(v, currency), currency)
			require.NoError(t, err)
			assert.Equal(t, v, got, "%s %d", currency, v)
		}
	}
}

func TestParseMinor_Errors(t *testing.T) {
	tables := MustLoad()
	_, err := tables.ParseMinor("USD 1.234", "USD")
	assert.Error(t, err)
	_, err = tables.ParseMinor("JPY 10.5", "JPY")
	assert.Error(t, err)
	_, err = tables.ParseMinor("USD", "USD")
	assert.Error(t, err)
	_, err = tables.ParseMinor("abc", "USD")
	assert.Error(t, err)

	got, err := tables.ParseMinor("12.5", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), got)
}

func TestParse_RejectsInvalidDatasets(t *testing.T) {
	_, err := Parse([]byte("free_shipping_threshold: \"5000\"\ndefault_shipping_fee: \"100\"\ncountries:\n  US: {currency: USD, shipping_fee: \"150\"}\n"))
	assert.ErrorContains(t, err, "exceeds default")

	_, err = Parse([]byte("free_shipping_threshold: \"5000\"\ndefault_shipping_fee: \"150\"\n"))
	assert.ErrorContains(t, err, "no countries")

	_, err = Parse([]byte("free_shipping_threshold: \"abc\"\ndefault_shipping_fee: \"150\"\n"))
	assert.Error(t, err)
}

func TestParse_MissingRateFallsBackToOne(t *testing.T) {
	tables, err := Parse([]byte("free_shipping_threshold: \"5000\"\ndefault_shipping_fee: \"150\"\nrates:\n  USD: \"0.012\"\ncountries:\n  KR: {currency: KRW, shipping_fee: \"100\"}\n"))
	require.NoError(t, err)
	res := tables.Resolve("KR")
	assert.Equal(t, "KRW", res.Currency)
	assert.True(t, res.Rate.Equal(decimal.NewFromInt(1)))
	assert.True(t, res.Fallback)
}
