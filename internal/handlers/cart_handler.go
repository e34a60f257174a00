package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/carpetpalace/storefront-api/internal/cart"
	"github.com/carpetpalace/storefront-api/internal/validation"
)

const maxSnapshotBytes = 1 << 20

type cartView struct {
	*cart.Cart
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

func viewOf(c *cart.Cart) cartView {
	return cartView{Cart: c, TotalItems: c.TotalItems(), Subtotal: c.Subtotal()}
}

// CreateCart handles POST /api/cart
func (h *Handlers) CreateCart(c *gin.Context) {
	cc, err := h.carts.Get(c.Request.Context(), cart.NewID())
	if err != nil {
		handleError(c, err, "Failed to create cart")
		return
	}
	c.JSON(http.StatusCreated, viewOf(cc))
}

// GetCart handles GET /api/cart/:id
func (h *Handlers) GetCart(c *gin.Context) {
	cc, err := h.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "Failed to load cart")
		return
	}
	c.JSON(http.StatusOK, viewOf(cc))
}

// ClearCart handles DELETE /api/cart/:id
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err, "Failed to clear cart")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddCartItem handles POST /api/cart/:id/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	var req validation.AddCartItemRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cc, err := h.carts.Add(c.Request.Context(), c.Param("id"), req.ProductID, req.Dimension, req.Material, req.Quantity)
	if err != nil {
		handleError(c, err, "Failed to add item")
		return
	}
	c.JSON(http.StatusOK, viewOf(cc))
}

// UpdateCartItem handles PATCH /api/cart/:id/items
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var req validation.UpdateCartItemRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	key := cart.LineKey{ProductID: req.ProductID, Dimension: req.Dimension, Material: req.Material}
	cc, err := h.carts.UpdateQuantity(c.Request.Context(), c.Param("id"), key, req.Quantity)
	if err != nil {
		handleError(c, err, "Failed to update item")
		return
	}
	c.JSON(http.StatusOK, viewOf(cc))
}

// RemoveCartItem handles DELETE /api/cart/:id/items?productId=&dimension=&material=
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	productID, err := strconv.Atoi(c.Query("productId"))
	if err != nil || productID <= 0 || c.Query("dimension") == "" || c.Query("material") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId, dimension and material are required"})
		return
	}
	key := cart.LineKey{ProductID: productID, Dimension: c.Query("dimension"), Material: c.Query("material")}
	cc, err := h.carts.Remove(c.Request.Context(), c.Param("id"), key)
	if err != nil {
		handleError(c, err, "Failed to remove item")
		return
	}
	c.JSON(http.StatusOK, viewOf(cc))
}

// ImportCart handles PUT /api/cart/:id/import. The body is a browser cart
// snapshot of any known version.
func (h *Handlers) ImportCart(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSnapshotBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cc, skipped, err := h.carts.Import(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		handleError(c, err, "Failed to import cart")
		return
	}
	if skipped == nil {
		skipped = []cart.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"cart": viewOf(cc), "skipped": skipped})
}
