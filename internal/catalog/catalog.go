// Package catalog serves the storefront's product data: listing with filters,
// product detail with its dimension/material variant price table, and the
// similar/featured/search helpers used by the product pages.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrNotFound is returned when a product id is unknown.
var ErrNotFound = errors.New("product not found")

// ErrVariantUnavailable is returned for a dimension/material pair that is not
// offered or is out of stock.
var ErrVariantUnavailable = errors.New("variant unavailable")

// Variant is one priced dimension/material combination of a product.
type Variant struct {
	Dimension     string           `json:"dimension"`
	Material      string           `json:"material"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	Available     bool             `json:"available"`
}

// Product is the list view of a product.
type Product struct {
	ID            int              `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	Image         string           `json:"image"`
	Rating        int              `json:"rating"`
	Reviews       int              `json:"reviews"`
	Category      string           `json:"category"`
	Material      string           `json:"material"`
	Size          string           `json:"size"`
}

// ProductDetail is the full product page payload.
type ProductDetail struct {
	Product
	Images      []string           `json:"images"`
	Description string             `json:"description"`
	Features    []string           `json:"features"`
	Dimensions  []string           `json:"dimensions"`
	Materials   []string           `json:"material"`
	Origin      string             `json:"origin"`
	Variants    map[string]Variant `json:"variants"`
}

// FilterOptions lists the values the product grid offers as filters.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Materials  []string `json:"materials"`
	Sizes      []string `json:"sizes"`
}

// Catalog is an immutable, in-memory product catalog.
type Catalog struct {
	order   []int
	details map[int]*ProductDetail
	options FilterOptions
}

type rawCatalog struct {
	Filters  FilterOptions `yaml:"filters"`
	Products []rawProduct  `yaml:"products"`
}

type rawProduct struct {
	ID            int                   `yaml:"id"`
	Name          string                `yaml:"name"`
	Price         int64                 `yaml:"price"`
	OriginalPrice *int64                `yaml:"original_price"`
	Rating        int                   `yaml:"rating"`
	Reviews       int                   `yaml:"reviews"`
	Category      string                `yaml:"category"`
	Origin        string                `yaml:"origin"`
	Material      string                `yaml:"material"`
	Size          string                `yaml:"size"`
	Images        []string              `yaml:"images"`
	Description   string                `yaml:"description"`
	Features      []string              `yaml:"features"`
	Dimensions    []string              `yaml:"dimensions"`
	Materials     []string              `yaml:"materials"`
	Variants      map[string]rawVariant `yaml:"variants"`
}

type rawVariant struct {
	Price         int64  `yaml:"price"`
	OriginalPrice *int64 `yaml:"original_price"`
	Available     bool   `yaml:"available"`
}

// Load returns the catalog compiled into the binary.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from disk, or the embedded one when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		details: make(map[int]*ProductDetail, len(raw.Products)),
		options: raw.Filters,
	}
	for _, rp := range raw.Products {
		if rp.ID <= 0 {
			return nil, fmt.Errorf("product %q: id must be positive", rp.Name)
		}
		if _, dup := c.details[rp.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id", rp.ID)
		}
		d, err := rp.toDetail()
		if err != nil {
			return nil, err
		}
		c.details[rp.ID] = d
		c.order = append(c.order, rp.ID)
	}
	return c, nil
}

func (rp rawProduct) toDetail() (*ProductDetail, error) {
	d := &ProductDetail{
		Product: Product{
			ID:            rp.ID,
			Name:          rp.Name,
			Price:         decimal.NewFromInt(rp.Price),
			OriginalPrice: optionalPrice(rp.OriginalPrice),
			Rating:        rp.Rating,
			Reviews:       rp.Reviews,
			Category:      rp.Category,
			Material:      rp.Material,
			Size:          rp.Size,
		},
		Images:      rp.Images,
		Description: rp.Description,
		Features:    rp.Features,
		Dimensions:  rp.Dimensions,
		Materials:   rp.Materials,
		Origin:      rp.Origin,
		Variants:    make(map[string]Variant, len(rp.Variants)),
	}
	if len(rp.Images) > 0 {
		d.Image = rp.Images[0]
	}
	for key, rv := range rp.Variants {
		dim, mat, ok := strings.Cut(key, "|")
		if !ok || dim == "" || mat == "" {
			return nil, fmt.Errorf("product %d: malformed variant key %q", rp.ID, key)
		}
		d.Variants[key] = Variant{
			Dimension:     dim,
			Material:      mat,
			Price:         decimal.NewFromInt(rv.Price),
			OriginalPrice: optionalPrice(rv.OriginalPrice),
			Available:     rv.Available,
		}
	}
	return d, nil
}

func optionalPrice(p *int64) *decimal.Decimal {
	if p == nil {
		return nil
	}
	d := decimal.NewFromInt(*p)
	return &d
}

// VariantKey builds the "dimension|material" key used by the variant table.
func VariantKey(dimension, material string) string {
	return dimension + "|" + material
}

// Get returns a product's detail or ErrNotFound.
func (c *Catalog) Get(id int) (*ProductDetail, error) {
	d, ok := c.details[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// VariantPrice looks up the price of a dimension/material combination.
// Products without a variant table sell only their base size and material.
func (c *Catalog) VariantPrice(id int, dimension, material string) (*ProductDetail, Variant, error) {
	d, err := c.Get(id)
	if err != nil {
		return nil, Variant{}, err
	}
	if len(d.Variants) == 0 {
		if dimension == d.Size && material == d.Material {
			return d, Variant{Dimension: dimension, Material: material, Price: d.Price, OriginalPrice: d.OriginalPrice, Available: true}, nil
		}
		return nil, Variant{}, ErrVariantUnavailable
	}
	v, ok := d.Variants[VariantKey(dimension, material)]
	if !ok || !v.Available {
		return nil, Variant{}, ErrVariantUnavailable
	}
	return d, v, nil
}

// FilterOptions returns the category, material and size options.
func (c *Catalog) FilterOptions() FilterOptions { return c.options }

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.details[id].Product)
	}
	return out
}

// Featured returns the first limit products.
func (c *Catalog) Featured(limit int) []Product {
	all := c.All()
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	return all[:limit]
}

// Search matches query against name, category and base material.
func (c *Catalog) Search(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Product{}
	for _, p := range c.All() {
		if containsFold(p.Name, q) || containsFold(p.Category, q) || containsFold(p.Material, q) {
			out = append(out, p)
		}
	}
	return out
}

// Similar returns up to limit other products sharing the category or one of
// the product's materials.
func (c *Catalog) Similar(id, limit int) ([]Product, error) {
	d, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	materials := d.Materials
	if len(materials) == 0 {
		materials = []string{d.Material}
	}
	out := []Product{}
	for _, p := range c.All() {
		if len(out) == limit {
			break
		}
		if p.ID == id {
			continue
		}
		if p.Category == d.Category || slices.Contains(materials, p.Material) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct categories present in the catalog, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	for _, d := range c.details {
		seen[d.Category] = true
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
