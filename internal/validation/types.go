package validation

import "github.com/shopspring/decimal"

// CartItem is a single line of the submitted cart. Price is the unit price in
// the base currency.
type CartItem struct {
	ID        int             `json:"id" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Dimension string          `json:"dimension" validate:"required"`
	Material  string          `json:"material" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"` // must be >= 1
}

// ShippingAddress is the contact collected on the checkout form.
type ShippingAddress struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
	Country   string `json:"country" validate:"required,len=2,alpha"`
}

// CreateSessionRequest is the payload for POST /api/create-checkout-session.
// Items is not required here so an empty cart reaches the checkout service
// and gets its own message.
type CreateSessionRequest struct {
	Items           []CartItem      `json:"items" validate:"dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	TotalPrice      decimal.Decimal `json:"totalPrice"` // subtotal + shipping, as the client computed it
}

// Subtotal sums price * quantity over the items.
func (r CreateSessionRequest) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// QuoteRequest is the payload for POST /api/checkout/quote.
type QuoteRequest struct {
	Items   []CartItem `json:"items" validate:"required,min=1,dive"`
	Country string     `json:"country" validate:"required,len=2,alpha"`
}

// TrackOrderRequest is the payload for POST /api/track-order. Both fields are
// checked by the tracker so its message is returned verbatim.
type TrackOrderRequest struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
}

// AddCartItemRequest is the payload for POST /api/cart/:id/items.
type AddCartItemRequest struct {
	ProductID int    `json:"productId" validate:"required,gt=0"`
	Dimension string `json:"dimension" validate:"required"`
	Material  string `json:"material" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// UpdateCartItemRequest is the payload for PATCH /api/cart/:id/items.
type UpdateCartItemRequest struct {
	ProductID int    `json:"productId" validate:"required,gt=0"`
	Dimension string `json:"dimension" validate:"required"`
	Material  string `json:"material" validate:"required"`
	Quantity  int    `json:"quantity"` // <= 0 removes the line
}
