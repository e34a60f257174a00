package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carpetpalace/storefront-api/internal/cart"
	"github.com/carpetpalace/storefront-api/internal/catalog"
	"github.com/carpetpalace/storefront-api/internal/checkout"
	"github.com/carpetpalace/storefront-api/internal/payments"
	"github.com/carpetpalace/storefront-api/internal/tracking"
)

type errorMapping struct {
	target  error
	status  int
	message string // empty: use err.Error()
}

var errorMappings = []errorMapping{
	{checkout.ErrEmptyCart, http.StatusBadRequest, "No items in cart"},
	{checkout.ErrShippingMismatch, http.StatusBadRequest, ""},
	{checkout.ErrCheckoutInProgress, http.StatusConflict, ""},
	{tracking.ErrMissingCredentials, http.StatusBadRequest, "Order ID and email are required"},
	{tracking.ErrMissingSessionID, http.StatusBadRequest, "Session ID is required"},
	{tracking.ErrInvalidSession, http.StatusNotFound, "Invalid order ID. Please check and try again."},
	{tracking.ErrNotFound, http.StatusNotFound, "Order not found. Please check your order ID and try again."},
	{tracking.ErrEmailMismatch, http.StatusForbidden, "Email address does not match this order. Please use the email address used during checkout."},
	{catalog.ErrNotFound, http.StatusNotFound, "Product not found"},
	{catalog.ErrVariantUnavailable, http.StatusBadRequest, "This size and material combination is not available"},
	{cart.ErrLineNotFound, http.StatusNotFound, "Item is not in the cart"},
	{cart.ErrInvalidSnapshot, http.StatusBadRequest, ""},
}

// handleError writes err as {"error": message}. Provider failures keep the
// provider's message; anything unrecognised is logged and answered with
// fallback.
func handleError(c *gin.Context, err error, fallback string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			c.JSON(m.status, gin.H{"error": msg})
			return
		}
	}

	var upstream *payments.UpstreamError
	if errors.As(err, &upstream) {
		log.Printf("[http] upstream error path=%s op=%q err=%v", c.FullPath(), upstream.Op, upstream.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": upstream.Error()})
		return
	}

	log.Printf("[http] internal error path=%s err=%v", c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
