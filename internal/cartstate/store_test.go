package cartstate

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadsPersistedState(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	require.NoError(t, storage.SaveUser(ctx, &User{ID: "u1", Email: "u@example.com"}))
	require.NoError(t, storage.SaveCart(ctx, []Item{item("a", "p1", "10.00", 2)}))

	store, err := NewStore(ctx, storage, nil)
	require.NoError(t, err)

	state := store.State()
	require.NotNil(t, state.User)
	assert.Equal(t, "u1", state.User.ID)
	require.Len(t, state.Items, 1)
	assert.True(t, decimal.RequireFromString("20.00").Equal(state.Total))
	assert.Equal(t, 2, state.Count)
}

func TestDispatchPersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	store, err := NewStore(ctx, storage, nil)
	require.NoError(t, err)

	_, err = store.Dispatch(ctx, AddItem{Item: item("a", "p1", "10.00", 2)})
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, AddItem{Item: item("b", "p2", "5.00", 3)})
	require.NoError(t, err)

	// A second store over the same storage sees the same cart.
	reloaded, err := NewStore(ctx, storage, nil)
	require.NoError(t, err)

	state := reloaded.State()
	assert.Len(t, state.Items, 2)
	assert.True(t, decimal.RequireFromString("35.00").Equal(state.Total))
	assert.Equal(t, 5, state.Count)
}

func TestDispatchSetUserPersists(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	store, err := NewStore(ctx, storage, nil)
	require.NoError(t, err)

	_, err = store.Dispatch(ctx, SetUser{User: &User{ID: "u1", Email: "u@example.com"}})
	require.NoError(t, err)

	saved, err := storage.LoadUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "u1", saved.ID)

	_, err = store.Dispatch(ctx, SetUser{User: nil})
	require.NoError(t, err)

	saved, err = storage.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestMergeServerCartSumsQuantities(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	store, err := NewStore(ctx, storage, nil)
	require.NoError(t, err)

	localID := NewLocalID()
	_, err = store.Dispatch(ctx, AddItem{Item: item(localID, "p1", "10.00", 2)})
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, AddItem{Item: item(NewLocalID(), "p3", "1.00", 1)})
	require.NoError(t, err)

	serverItems := []Item{
		item("row-1", "p1", "10.00", 1),
		item("row-2", "p2", "5.00", 4),
	}

	state, err := store.MergeServerCart(ctx, serverItems)
	require.NoError(t, err)

	require.Len(t, state.Items, 3)

	byProduct := map[string]Item{}
	for _, it := range state.Items {
		byProduct[it.Product.ID] = it
	}

	// Shared product: quantities summed, server row id wins.
	assert.Equal(t, 3, byProduct["p1"].Quantity)
	assert.Equal(t, "row-1", byProduct["p1"].ID)
	// Server-only product kept as is.
	assert.Equal(t, 4, byProduct["p2"].Quantity)
	// Guest-only product survives with its local id.
	assert.Equal(t, 1, byProduct["p3"].Quantity)
	assert.True(t, IsLocalID(byProduct["p3"].ID))

	// The merge is persisted.
	saved, err := storage.LoadCart(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestMergeServerCartIsIdempotentForServerRows(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	store, err := NewStore(ctx, storage, nil)
	require.NoError(t, err)

	serverItems := []Item{
		item("row-1", "p1", "10.00", 2),
		item("row-2", "p2", "5.00", 1),
	}
	_, err = store.Dispatch(ctx, SetCart{Items: serverItems})
	require.NoError(t, err)

	// Re-merging the same server cart (reload, re-login) must not sum
	// server rows with themselves.
	state, err := store.MergeServerCart(ctx, serverItems)
	require.NoError(t, err)

	require.Len(t, state.Items, 2)
	byProduct := map[string]Item{}
	for _, it := range state.Items {
		byProduct[it.Product.ID] = it
	}
	assert.Equal(t, 2, byProduct["p1"].Quantity)
	assert.Equal(t, 1, byProduct["p2"].Quantity)
	assert.Equal(t, 3, state.Count)

	// A second pass is still stable.
	state, err = store.MergeServerCart(ctx, serverItems)
	require.NoError(t, err)
	require.Len(t, state.Items, 2)
	assert.Equal(t, 3, state.Count)
}

func TestLocalItems(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, NewMemoryStorage(), nil)
	require.NoError(t, err)

	_, err = store.Dispatch(ctx, AddItem{Item: item(NewLocalID(), "p1", "10.00", 1)})
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, AddItem{Item: item("row-9", "p2", "5.00", 1)})
	require.NoError(t, err)

	local := store.LocalItems()
	require.Len(t, local, 1)
	assert.Equal(t, "p1", local[0].Product.ID)
}
