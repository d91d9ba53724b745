package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmart/techstore/internal/shopapi/catalog"
)

var (
	laptop = &catalog.Product{ID: 1, Name: "MacBook Pro", Price: 2499, Image: "img"}
	phone  = &catalog.Product{ID: 2, Name: "iPhone", Price: 999}
)

func TestGet_UnknownSessionIsEmpty(t *testing.T) {
	store := NewStore()

	assert.Empty(t, store.Get("nope"))
}

func TestAdd_MergesQuantities(t *testing.T) {
	store := NewStore()

	store.Add("s1", laptop, 2)
	store.Add("s1", phone, 1)
	lines := store.Add("s1", laptop, 3)

	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestAdd_SnapshotsProduct(t *testing.T) {
	store := NewStore()

	lines := store.Add("s1", laptop, 1)

	require.Len(t, lines, 1)
	assert.Equal(t, *laptop, lines[0].Product)

	// Catalog edits after the add do not leak into the cart.
	laptop.Price = 1999
	defer func() { laptop.Price = 2499 }()
	assert.Equal(t, 2499.0, store.Get("s1")[0].Product.Price)
}

func TestSetQuantity(t *testing.T) {
	store := NewStore()
	store.Add("s1", laptop, 2)

	t.Run("updates the line", func(t *testing.T) {
		lines, err := store.SetQuantity("s1", 1, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, lines[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		lines, err := store.SetQuantity("s1", 1, 0)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := store.SetQuantity("nope", 1, 1)
		assert.ErrorIs(t, err, ErrNoCart)
	})

	t.Run("unknown line", func(t *testing.T) {
		_, err := store.SetQuantity("s1", 99, 1)
		assert.ErrorIs(t, err, ErrNoLine)
	})
}

func TestRemove(t *testing.T) {
	store := NewStore()
	store.Add("s1", laptop, 1)
	store.Add("s1", phone, 1)

	lines, err := store.Remove("s1", 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)

	_, err = store.Remove("s1", 1)
	assert.ErrorIs(t, err, ErrNoLine)
}

func TestClear(t *testing.T) {
	store := NewStore()
	store.Add("s1", laptop, 1)

	store.Clear("s1")

	assert.Empty(t, store.Get("s1"))
}

func TestCarts_AreSessionScoped(t *testing.T) {
	store := NewStore()

	store.Add("s1", laptop, 1)
	store.Add("s2", phone, 2)

	require.Len(t, store.Get("s1"), 1)
	require.Len(t, store.Get("s2"), 1)
	assert.Equal(t, int64(1), store.Get("s1")[0].ProductID)
	assert.Equal(t, int64(2), store.Get("s2")[0].ProductID)
}
