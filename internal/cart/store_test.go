package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := &Cart{ID: "m"}
	c.Add(rug(2, "5ft x 8ft", "Silk", 1499, 2))
	require.NoError(t, store.Save(ctx, c))

	got, err := store.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "m", got.ID)
	assert.Equal(t, 2, got.TotalItems())

	require.NoError(t, store.Delete(ctx, "m"))
	_, err = store.Get(ctx, "m")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_InvalidJSON(t *testing.T) {
	store := NewMemoryStore()
	store.carts["bad"] = []byte(`{"version":1,"items":[`)

	got, err := store.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Nil(t, got)
}
