package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter narrows a product listing. Empty fields do not filter. Material,
// size and price match either the base product or any of its variants.
type Filter struct {
	Categories []string
	Materials  []string
	Sizes      []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
}

// List returns the products matching every populated field of f.
func (c *Catalog) List(f Filter) []Product {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	out := []Product{}
	for _, id := range c.order {
		d := c.details[id]
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, d.Category) {
			continue
		}
		if len(f.Materials) > 0 && !matchesAny(f.Materials, d.Material, d.Materials) {
			continue
		}
		if len(f.Sizes) > 0 && !matchesAny(f.Sizes, d.Size, d.Dimensions) {
			continue
		}
		if (f.MinPrice != nil || f.MaxPrice != nil) && !d.priceInRange(f.MinPrice, f.MaxPrice) {
			continue
		}
		if query != "" && !d.matchesSearch(query) {
			continue
		}
		out = append(out, d.Product)
	}
	return out
}

func matchesAny(wanted []string, base string, variants []string) bool {
	if slices.Contains(wanted, base) {
		return true
	}
	for _, v := range variants {
		if slices.Contains(wanted, v) {
			return true
		}
	}
	return false
}

func inRange(p decimal.Decimal, lo, hi *decimal.Decimal) bool {
	if lo != nil && p.LessThan(*lo) {
		return false
	}
	if hi != nil && p.GreaterThan(*hi) {
		return false
	}
	return true
}

func (d *ProductDetail) priceInRange(lo, hi *decimal.Decimal) bool {
	if inRange(d.Price, lo, hi) {
		return true
	}
	for _, v := range d.Variants {
		if inRange(v.Price, lo, hi) {
			return true
		}
	}
	return false
}

func (d *ProductDetail) matchesSearch(q string) bool {
	if containsFold(d.Name, q) || containsFold(d.Category, q) || containsFold(d.Material, q) {
		return true
	}
	if containsFold(d.Description, q) || containsFold(d.Origin, q) {
		return true
	}
	for _, m := range d.Materials {
		if containsFold(m, q) {
			return true
		}
	}
	for _, dim := range d.Dimensions {
		if containsFold(dim, q) {
			return true
		}
	}
	return false
}
