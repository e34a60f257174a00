package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carpetpalace/storefront-api/internal/validation"
)

// GetOrderID handles GET /api/get-order-id?session_id=
func (h *Handlers) GetOrderID(c *gin.Context) {
	id, err := h.tracker.OrderIDForSession(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		handleError(c, err, "Failed to fetch order ID")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customOrderId": id})
}

// TrackOrder handles POST /api/track-order
func (h *Handlers) TrackOrder(c *gin.Context) {
	var req validation.TrackOrderRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return
	}

	order, err := h.tracker.Track(c.Request.Context(), req.OrderID, req.Email)
	if err != nil {
		handleError(c, err, "Failed to track order. Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
