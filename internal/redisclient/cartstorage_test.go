package redisclient

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/cartstate"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartStorageRoundTrip(t *testing.T) {
	t.Skip("Integration test - requires redis")

	client, err := NewClient("localhost:6379", "", 0, time.Minute)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	storage := client.NewCartStorage("test-session")

	items := []cartstate.Item{
		{
			ID:       cartstate.NewLocalID(),
			Quantity: 2,
			Product: cartstate.ProductRef{
				ID:    "p1",
				Name:  "test product",
				Price: decimal.RequireFromString("10.00"),
			},
		},
	}
	require.NoError(t, storage.SaveCart(ctx, items))
	require.NoError(t, storage.SaveUser(ctx, &cartstate.User{ID: "u1", Email: "u@example.com"}))

	// A cart store hydrated from this storage sees the same state.
	store, err := cartstate.NewStore(ctx, storage, nil)
	require.NoError(t, err)

	state := store.State()
	require.NotNil(t, state.User)
	assert.Equal(t, "u1", state.User.ID)
	require.Len(t, state.Items, 1)
	assert.True(t, decimal.RequireFromString("20.00").Equal(state.Total))

	// Logout removes the stored user.
	_, err = store.Dispatch(ctx, cartstate.SetUser{User: nil})
	require.NoError(t, err)

	user, err := storage.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestIdempotencyKeyRoundTrip(t *testing.T) {
	t.Skip("Integration test - requires redis")

	client, err := NewClient("localhost:6379", "", 0, time.Minute)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	// Unknown keys resolve to the empty id.
	orderID, err := client.GetIdempotentOrderID(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "", orderID)

	require.NoError(t, client.RememberIdempotencyKey(ctx, "key-1", "order-1", time.Minute))

	orderID, err = client.GetIdempotentOrderID(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", orderID)
}
