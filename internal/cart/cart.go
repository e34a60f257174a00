// Package cart holds shopping carts server side. A cart is a list of lines
// keyed by product, dimension and material; adding an existing line bumps its
// quantity and a quantity of zero or less removes the line.
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one cart line. Prices are in the base currency.
type Item struct {
	ProductID     int              `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Image         string           `json:"image"`
	Dimension     string           `json:"dimension"`
	Material      string           `json:"material"`
	Quantity      int              `json:"quantity"`
}

// LineKey identifies a cart line.
type LineKey struct {
	ProductID int
	Dimension string
	Material  string
}

// Key returns the line identity of the item.
func (i Item) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Dimension: i.Dimension, Material: i.Material}
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a customer's cart.
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Add inserts item, or increases the quantity of the matching line.
// Quantities below one are treated as one.
func (c *Cart) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].Key() == item.Key() {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity sets the quantity of a line, removing it when quantity <= 0.
// It reports whether the line existed.
func (c *Cart) SetQuantity(key LineKey, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].Key() != key {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = quantity
		}
		return true
	}
	return false
}

// Remove deletes a line. It reports whether the line existed.
func (c *Cart) Remove(key LineKey) bool {
	return c.SetQuantity(key, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// TotalItems is the sum of quantities.
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
