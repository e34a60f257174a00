package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshot_MigratesBareArray(t *testing.T) {
	legacy := `[
		{"id":1,"name":"Royal Persian Masterpiece","price":2499,"originalPrice":2999,"image":"x.jpg","dimension":"8ft x 10ft","material":"Premium Wool","quantity":2},
		{"id":1,"name":"Royal Persian Masterpiece","price":2499,"image":"x.jpg","dimension":"8ft x 10ft","material":"Premium Wool","quantity":1},
		{"id":3,"name":"Modern Luxury Wool","price":1599,"image":"y.jpg","dimension":"9ft x 12ft","material":"Wool","quantity":0}
	]`
	c, err := DecodeSnapshot([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.True(t, c.Items[0].Price.Equal(decimal.NewFromInt(2499)))
	require.NotNil(t, c.Items[0].OriginalPrice)
}

func TestSnapshot_RoundTripWritesCurrentVersion(t *testing.T) {
	in := &Cart{ID: "abc", UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	in.Add(Item{ProductID: 2, Name: "Elegant Oriental Classic", Price: decimal.RequireFromString("1899"), Dimension: "6ft x 9ft", Material: "Silk", Quantity: 1})

	data, err := EncodeSnapshot(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)

	out, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))
	require.Len(t, out.Items, 1)
	assert.Equal(t, in.Items[0].Key(), out.Items[0].Key())
}

func TestEncodeSnapshot_EmptyCartHasEmptyItems(t *testing.T) {
	data, err := EncodeSnapshot(&Cart{ID: "e"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
}

func TestDecodeSnapshot_Rejects(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"version":9,"items":[]}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.ErrorContains(t, err, "unsupported version 9")

	_, err = DecodeSnapshot([]byte(`{"items":[]}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = DecodeSnapshot([]byte(`[{"id":1,`))
	assert.ErrorContains(t, err, "v0")

	c, err := DecodeSnapshot([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}
