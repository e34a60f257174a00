package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/carpetpalace/storefront-api/internal/catalog"
)

const defaultFeaturedLimit = 4

// ListProducts handles GET /api/products
//
// Query: category, material, size (repeatable or comma separated),
// minPrice, maxPrice, search.
func (h *Handlers) ListProducts(c *gin.Context) {
	f := catalog.Filter{
		Categories: multiValue(c, "category"),
		Materials:  multiValue(c, "material"),
		Sizes:      multiValue(c, "size"),
		Search:     c.Query("search"),
	}
	for param, dst := range map[string]**decimal.Decimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": param + " must be a number"})
			return
		}
		*dst = &d
	}

	products := h.catalog.List(f)
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// SearchProducts handles GET /api/products/search?q=
func (h *Handlers) SearchProducts(c *gin.Context) {
	products := h.catalog.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// FeaturedProducts handles GET /api/products/featured
func (h *Handlers) FeaturedProducts(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultFeaturedLimit)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": h.catalog.Featured(limit)})
}

// ProductFilters handles GET /api/products/filters
func (h *Handlers) ProductFilters(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.FilterOptions())
}

// GetProduct handles GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := h.catalog.Get(id)
	if err != nil {
		handleError(c, err, "Failed to load product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// SimilarProducts handles GET /api/products/:id/similar
func (h *Handlers) SimilarProducts(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	products, err := h.catalog.Similar(id, limit)
	if err != nil {
		handleError(c, err, "Failed to load similar products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be a non-negative integer"})
		return 0, false
	}
	return n, true
}

func multiValue(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
