package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carpetpalace/storefront-api/internal/checkout"
	"github.com/carpetpalace/storefront-api/internal/validation"
)

// CreateCheckoutSession handles POST /api/create-checkout-session
func (h *Handlers) CreateCheckoutSession(c *gin.Context) {
	var req validation.CreateSessionRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return
	}
	// an empty cart gets its own message before field validation
	if len(req.Items) == 0 {
		handleError(c, checkout.ErrEmptyCart, "")
		return
	}
	if err := validation.Validate(c, &req, h.validate); err != nil {
		return
	}

	res, err := h.checkout.CreateSession(c.Request.Context(), checkout.Request{
		Items:           toCheckoutItems(req.Items),
		ShippingAddress: checkout.Address(req.ShippingAddress),
		ShippingFee:     req.ShippingFee,
		TotalPrice:      req.TotalPrice,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
		CorrelationID:   c.GetHeader("X-Request-Id"),
	})
	if err != nil {
		handleError(c, err, "Failed to create checkout session")
		return
	}

	if res.Replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	c.JSON(http.StatusOK, res)
}

// Quote handles POST /api/checkout/quote
func (h *Handlers) Quote(c *gin.Context) {
	var req validation.QuoteRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	c.JSON(http.StatusOK, h.checkout.Quote(toCheckoutItems(req.Items), req.Country))
}

// Currency handles GET /api/currency?country=
func (h *Handlers) Currency(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country is required"})
		return
	}
	c.JSON(http.StatusOK, h.tables.Resolve(country))
}

func toCheckoutItems(in []validation.CartItem) []checkout.Item {
	out := make([]checkout.Item, 0, len(in))
	for _, it := range in {
		out = append(out, checkout.Item{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Dimension: it.Dimension,
			Material:  it.Material,
			Quantity:  it.Quantity,
		})
	}
	return out
}
