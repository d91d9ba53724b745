package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStoreTest(t *testing.T) *Store {
	t.Helper()

	store := NewStore()
	seed := []NewProduct{
		{Name: "MacBook Pro", Description: "Laptop", Price: 2499, Category: "laptops", Stock: 5},
		{Name: "iPhone", Description: "Phone", Price: 999, Category: "phones", Stock: 10},
		{Name: "AirPods", Description: "Earbuds with noise cancellation", Price: 249, Category: "audio", Stock: 3},
	}
	for _, np := range seed {
		_, err := store.Create(np)
		require.NoError(t, err)
	}

	return store
}

func TestList_Filters(t *testing.T) {
	store := setupStoreTest(t)

	t.Run("by category", func(t *testing.T) {
		result := store.List(Query{Category: "phones"})
		require.Len(t, result, 1)
		assert.Equal(t, "iPhone", result[0].Name)
	})

	t.Run("search matches name and description", func(t *testing.T) {
		result := store.List(Query{Search: "noise"})
		require.Len(t, result, 1)
		assert.Equal(t, "AirPods", result[0].Name)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		result := store.List(Query{Search: "MACBOOK"})
		require.Len(t, result, 1)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, store.List(Query{Search: "toaster"}))
	})
}

func TestList_Sort(t *testing.T) {
	store := setupStoreTest(t)

	asc := store.List(Query{Sort: "price-asc"})
	require.Len(t, asc, 3)
	assert.Equal(t, "AirPods", asc[0].Name)
	assert.Equal(t, "MacBook Pro", asc[2].Name)

	desc := store.List(Query{Sort: "price-desc"})
	assert.Equal(t, "MacBook Pro", desc[0].Name)

	byName := store.List(Query{Sort: "name"})
	assert.Equal(t, "AirPods", byName[0].Name)

	byID := store.List(Query{})
	assert.Equal(t, int64(1), byID[0].ID)
}

func TestCreate_AssignsNextID(t *testing.T) {
	store := setupStoreTest(t)

	p, err := store.Create(NewProduct{Name: "Mac Mini", Price: 599, Category: "desktops"})
	require.NoError(t, err)

	assert.Equal(t, int64(4), p.ID)
	assert.Equal(t, "https://via.placeholder.com/300x200", p.Image)
}

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	store := setupStoreTest(t)

	_, err := store.Create(NewProduct{Name: "iphone", Price: 1, Category: "phones"})

	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestUpdate_Partial(t *testing.T) {
	store := setupStoreTest(t)

	price := 899.0
	p, err := store.Update(2, ProductPatch{Price: &price})
	require.NoError(t, err)

	assert.Equal(t, 899.0, p.Price)
	assert.Equal(t, "iPhone", p.Name)
}

func TestUpdate_Unknown(t *testing.T) {
	store := setupStoreTest(t)

	_, err := store.Update(99, ProductPatch{})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := setupStoreTest(t)

	require.NoError(t, store.Delete(1))
	assert.ErrorIs(t, store.Delete(1), ErrNotFound)

	_, err := store.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories(t *testing.T) {
	store := setupStoreTest(t)

	assert.Equal(t, []string{"audio", "laptops", "phones"}, store.Categories())
}
