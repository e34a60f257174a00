package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rug(id int, dim, mat string, price int64, qty int) Item {
	return Item{ProductID: id, Name: "Rug", Price: decimal.NewFromInt(price), Dimension: dim, Material: mat, Quantity: qty}
}

func TestAdd_MergesSameLine(t *testing.T) {
	var c Cart
	c.Add(rug(1, "5ft x 8ft", "Silk", 2299, 1))
	c.Add(rug(1, "5ft x 8ft", "Silk", 2299, 2))
	c.Add(rug(1, "6ft x 9ft", "Silk", 2699, 1))
	c.Add(rug(2, "5ft x 8ft", "Silk", 1499, 0))

	require.Len(t, c.Items, 3)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 1, c.Items[2].Quantity)
	assert.Equal(t, 5, c.TotalItems())
	assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(3*2299+2699+1499)))
}

func TestSetQuantity(t *testing.T) {
	var c Cart
	a := rug(1, "5ft x 8ft", "Silk", 100, 1)
	b := rug(2, "5ft x 8ft", "Wool", 50, 1)
	c.Add(a)
	c.Add(b)

	assert.True(t, c.SetQuantity(a.Key(), 4))
	assert.Equal(t, 4, c.Items[0].Quantity)

	assert.True(t, c.SetQuantity(a.Key(), 0))
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].ProductID)

	assert.True(t, c.Remove(b.Key()))
	assert.Empty(t, c.Items)
	assert.False(t, c.SetQuantity(b.Key(), 3))
}

func TestQuantitiesStayPositive(t *testing.T) {
	var c Cart
	key := rug(7, "6ft x 9ft", "Wool", 10, 1).Key()
	ops := []int{3, -1, 2, 0, 5, -10, 1}
	for _, q := range ops {
		c.Add(rug(7, "6ft x 9ft", "Wool", 10, 1))
		c.SetQuantity(key, q)
		for _, it := range c.Items {
			assert.GreaterOrEqual(t, it.Quantity, 1)
		}
	}
}

func TestClear(t *testing.T) {
	var c Cart
	c.Add(rug(1, "a", "b", 10, 2))
	c.Clear()
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.Subtotal().IsZero())
}
