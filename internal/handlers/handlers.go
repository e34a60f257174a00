// Package handlers is the storefront's HTTP surface.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/carpetpalace/storefront-api/internal/cart"
	"github.com/carpetpalace/storefront-api/internal/catalog"
	"github.com/carpetpalace/storefront-api/internal/checkout"
	"github.com/carpetpalace/storefront-api/internal/pricing"
	"github.com/carpetpalace/storefront-api/internal/tracking"
	"github.com/carpetpalace/storefront-api/internal/validation"
)

// HandlerConfig groups dependencies for the route handlers.
type HandlerConfig struct {
	Checkout *checkout.Service
	Tracker  *tracking.Service
	Carts    *cart.Service
	Catalog  *catalog.Catalog
	Tables   *pricing.Tables
}

type Handlers struct {
	checkout *checkout.Service
	tracker  *tracking.Service
	carts    *cart.Service
	catalog  *catalog.Catalog
	tables   *pricing.Tables
	validate *validatorv10.Validate
}

func New(cfg HandlerConfig) *Handlers {
	return &Handlers{
		checkout: cfg.Checkout,
		tracker:  cfg.Tracker,
		carts:    cfg.Carts,
		catalog:  cfg.Catalog,
		tables:   cfg.Tables,
		validate: validation.New(),
	}
}

// Register mounts every API route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/create-checkout-session", h.CreateCheckoutSession)
		api.POST("/checkout/quote", h.Quote)
		api.GET("/currency", h.Currency)

		api.GET("/get-order-id", h.GetOrderID)
		api.POST("/track-order", h.TrackOrder)

		api.GET("/products", h.ListProducts)
		api.GET("/products/search", h.SearchProducts)
		api.GET("/products/featured", h.FeaturedProducts)
		api.GET("/products/filters", h.ProductFilters)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/products/:id/similar", h.SimilarProducts)

		api.POST("/cart", h.CreateCart)
		api.GET("/cart/:id", h.GetCart)
		api.DELETE("/cart/:id", h.ClearCart)
		api.POST("/cart/:id/items", h.AddCartItem)
		api.PATCH("/cart/:id/items", h.UpdateCartItem)
		api.DELETE("/cart/:id/items", h.RemoveCartItem)
		api.PUT("/cart/:id/import", h.ImportCart)
	}
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
