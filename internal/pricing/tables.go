package pricing

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed pricing.yaml
var defaultDataset []byte

// BaseCurrency is the currency every catalog and cart amount is expressed in.
const BaseCurrency = "INR"

// Tables is the immutable pricing dataset shared by the currency resolver and
// the shipping calculator. Build it with Load, LoadFile or Parse.
type Tables struct {
	base             string
	threshold        decimal.Decimal
	defaultFee       decimal.Decimal
	zeroDecimal      map[string]bool
	rates            map[string]decimal.Decimal
	countryCurrency  map[string]string
	countryShipping  map[string]decimal.Decimal
	allowedCountries []string
}

type rawDataset struct {
	BaseCurrency          string                `yaml:"base_currency"`
	FreeShippingThreshold string                `yaml:"free_shipping_threshold"`
	DefaultShippingFee    string                `yaml:"default_shipping_fee"`
	ZeroDecimalCurrencies []string              `yaml:"zero_decimal_currencies"`
	Rates                 map[string]string     `yaml:"rates"`
	Countries             map[string]rawCountry `yaml:"countries"`
}

type rawCountry struct {
	Currency    string `yaml:"currency"`
	ShippingFee string `yaml:"shipping_fee"`
}

// Load returns the dataset compiled into the binary.
func Load() (*Tables, error) {
	return Parse(defaultDataset)
}

// MustLoad is Load for package-level wiring and tests.
func MustLoad() *Tables {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadFile reads an override dataset from disk. An empty path falls back to
// the embedded dataset.
func LoadFile(path string) (*Tables, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML pricing dataset.
func Parse(data []byte) (*Tables, error) {
	var raw rawDataset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode pricing dataset: %w", err)
	}

	if raw.BaseCurrency == "" {
		raw.BaseCurrency = BaseCurrency
	}
	t := &Tables{
		base:            strings.ToUpper(raw.BaseCurrency),
		zeroDecimal:     map[string]bool{},
		rates:           map[string]decimal.Decimal{},
		countryCurrency: map[string]string{},
		countryShipping: map[string]decimal.Decimal{},
	}

	var err error
	if t.threshold, err = parseAmount("free_shipping_threshold", raw.FreeShippingThreshold); err != nil {
		return nil, err
	}
	if t.defaultFee, err = parseAmount("default_shipping_fee", raw.DefaultShippingFee); err != nil {
		return nil, err
	}

	for _, code := range raw.ZeroDecimalCurrencies {
		t.zeroDecimal[strings.ToUpper(code)] = true
	}

	for code, value := range raw.Rates {
		rate, err := parseAmount("rates."+code, value)
		if err != nil {
			return nil, err
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rates.%s: must be positive", code)
		}
		t.rates[strings.ToUpper(code)] = rate
	}
	if _, ok := t.rates[t.base]; !ok {
		t.rates[t.base] = decimal.NewFromInt(1)
	}

	for country, c := range raw.Countries {
		country = strings.ToUpper(country)
		if c.Currency == "" {
			return nil, fmt.Errorf("countries.%s: currency is required", country)
		}
		fee, err := parseAmount("countries."+country+".shipping_fee", c.ShippingFee)
		if err != nil {
			return nil, err
		}
		if fee.GreaterThan(t.defaultFee) {
			return nil, fmt.Errorf("countries.%s: shipping fee %s exceeds default %s", country, fee, t.defaultFee)
		}
		t.countryCurrency[country] = strings.ToUpper(c.Currency)
		t.countryShipping[country] = fee
		t.allowedCountries = append(t.allowedCountries, country)
	}
	if len(t.allowedCountries) == 0 {
		return nil, errors.New("pricing dataset has no countries")
	}
	sort.Strings(t.allowedCountries)

	return t, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("%s: value is required", field)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}

// Base returns the base currency code.
func (t *Tables) Base() string { return t.base }

// FreeShippingThreshold is the inclusive subtotal at which shipping is free.
func (t *Tables) FreeShippingThreshold() decimal.Decimal { return t.threshold }

// AllowedCountries lists the countries the checkout may ship to, sorted.
func (t *Tables) AllowedCountries() []string {
	out := make([]string, len(t.allowedCountries))
	copy(out, t.allowedCountries)
	return out
}

// Currencies lists every currency with a known rate, sorted.
func (t *Tables) Currencies() []string {
	out := make([]string, 0, len(t.rates))
	for code := range t.rates {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// IsZeroDecimal reports whether the currency has no minor unit.
func (t *Tables) IsZeroDecimal(currency string) bool {
	return t.zeroDecimal[strings.ToUpper(currency)]
}
