package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carpetpalace/storefront-api/internal/catalog"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	s := NewService(NewMemoryStore(), cat)
	s.nowFunc = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestService_GetMissingReturnsEmptyCart(t *testing.T) {
	s := newTestService(t)
	c, err := s.Get(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", c.ID)
	assert.Empty(t, c.Items)
}

func TestService_AddPricesFromCatalog(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	c, err := s.Add(ctx, "c", 3, "6ft x 9ft", "Synthetic", 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Price.Equal(decimal.NewFromInt(899)))
	assert.Equal(t, "Modern Luxury Wool", c.Items[0].Name)

	c, err = s.Add(ctx, "c", 3, "6ft x 9ft", "Synthetic", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Items[0].Quantity)

	stored, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TotalItems())
	assert.False(t, stored.UpdatedAt.IsZero())
}

func TestService_AddUnavailableVariant(t *testing.T) {
	s := newTestService(t)
	_, err := s.Add(context.Background(), "c", 3, "8ft x 10ft", "Synthetic", 1)
	assert.ErrorIs(t, err, catalog.ErrVariantUnavailable)
}

func TestService_UpdateAndRemove(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	key := LineKey{ProductID: 1, Dimension: "5ft x 8ft", Material: "Silk"}

	_, err := s.Add(ctx, "c", 1, "5ft x 8ft", "Silk", 1)
	require.NoError(t, err)

	c, err := s.UpdateQuantity(ctx, "c", key, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.TotalItems())

	c, err = s.Remove(ctx, "c", key)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = s.UpdateQuantity(ctx, "c", key, 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestService_Clear(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.Add(ctx, "c", 2, "5ft x 8ft", "Silk", 1)
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx, "c"))

	c, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestService_ImportRepricesAndSkipsUnavailable(t *testing.T) {
	s := newTestService(t)
	legacy := `[
		{"id":3,"name":"tampered","price":1,"dimension":"6ft x 9ft","material":"Wool","quantity":2},
		{"id":3,"name":"gone","price":1,"dimension":"8ft x 10ft","material":"Synthetic","quantity":1}
	]`
	c, skipped, err := s.Import(context.Background(), "imp", []byte(legacy))
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Price.Equal(decimal.NewFromInt(1199)))
	assert.Equal(t, "Modern Luxury Wool", c.Items[0].Name)
	require.Len(t, skipped, 1)
	assert.Equal(t, "8ft x 10ft", skipped[0].Dimension)
}
