package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToMinor rounds an amount already expressed in currency to the integer minor
// units the payment provider expects. Zero-decimal currencies round to whole
// units; everything else to cents. Rounding is half away from zero.
func (t *Tables) ToMinor(amount decimal.Decimal, currency string) int64 {
	if t.IsZeroDecimal(currency) {
		return amount.Round(0).IntPart()
	}
	return amount.Round(2).Mul(hundred).IntPart()
}

// FromMinor is the inverse of ToMinor.
func (t *Tables) FromMinor(minor int64, currency string) decimal.Decimal {
	if t.IsZeroDecimal(currency) {
		return decimal.NewFromInt(minor)
	}
	return decimal.New(minor, -2)
}

// FormatMinor renders minor units as "USD 1,234.56" or "JPY 3,614".
func (t *Tables) FormatMinor(minor int64, currency string) string {
	currency = strings.ToUpper(currency)
	places := int32(2)
	if t.IsZeroDecimal(currency) {
		places = 0
	}
	text := t.FromMinor(minor, currency).StringFixed(places)

	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	intPart, frac := text, ""
	if i := strings.IndexByte(text, '.'); i >= 0 {
		intPart, frac = text[:i], text[i:]
	}
	return currency + " " + sign + groupThousands(intPart) + frac
}

// Format converts a base amount into the country's currency and renders it.
func (t *Tables) Format(amount decimal.Decimal, country string) string {
	minor, currency := t.ConvertMinor(amount, country)
	return t.FormatMinor(minor, currency)
}

// ParseMinor reads text produced by FormatMinor back into minor units. The
// currency prefix is optional; digits beyond the currency's precision are
// rejected rather than rounded.
func (t *Tables) ParseMinor(text, currency string) (int64, error) {
	currency = strings.ToUpper(currency)
	s := strings.TrimSpace(text)
	if len(s) >= len(currency) && strings.EqualFold(s[:len(currency)], currency) {
		s = strings.TrimSpace(s[len(currency):])
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("parse amount %q: empty", text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", text, err)
	}
	places := int32(2)
	if t.IsZeroDecimal(currency) {
		places = 0
	}
	if !d.Equal(d.Truncate(places)) {
		return 0, fmt.Errorf("parse amount %q: more than %d decimal places for %s", text, places, currency)
	}
	return t.ToMinor(d, currency), nil
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
