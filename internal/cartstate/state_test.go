package cartstate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, productID string, price string, qty int) Item {
	return Item{
		ID:       id,
		Quantity: qty,
		Product: ProductRef{
			ID:    productID,
			Name:  "product " + productID,
			Price: decimal.RequireFromString(price),
		},
	}
}

func TestAddItemMergesSameProduct(t *testing.T) {
	state := NewState()

	state = Reduce(state, AddItem{Item: item("a", "p1", "10.00", 2)})
	state = Reduce(state, AddItem{Item: item("b", "p1", "10.00", 3)})

	require.Len(t, state.Items, 1)
	assert.Equal(t, 5, state.Items[0].Quantity)
	assert.Equal(t, "a", state.Items[0].ID)
	assert.True(t, decimal.RequireFromString("50.00").Equal(state.Total))
	assert.Equal(t, 5, state.Count)
}

func TestDerivedTotalsMatchItems(t *testing.T) {
	state := NewState()

	actions := []Action{
		AddItem{Item: item("a", "p1", "10.00", 2)},
		AddItem{Item: item("b", "p2", "5.00", 3)},
		AddItem{Item: item("c", "p1", "10.00", 1)},
		UpdateItemQuantity{ID: "b", Quantity: 4},
		RemoveItem{ID: "a"},
		AddItem{Item: item("d", "p3", "0.99", 7)},
	}

	for _, action := range actions {
		state = Reduce(state, action)

		expectedTotal := decimal.Zero
		expectedCount := 0
		for _, it := range state.Items {
			expectedTotal = expectedTotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			expectedCount += it.Quantity
		}
		assert.True(t, expectedTotal.Equal(state.Total),
			"total %s != derived %s after %T", state.Total, expectedTotal, action)
		assert.Equal(t, expectedCount, state.Count)
	}
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	state := NewState()
	state = Reduce(state, AddItem{Item: item("a", "p1", "10.00", 2)})

	next := Reduce(state, RemoveItem{ID: "missing"})

	assert.Equal(t, state.Items, next.Items)
	assert.True(t, state.Total.Equal(next.Total))
	assert.Equal(t, state.Count, next.Count)
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	state := NewState()
	state = Reduce(state, AddItem{Item: item("a", "p1", "10.00", 2)})

	next := Reduce(state, UpdateItemQuantity{ID: "missing", Quantity: 9})

	assert.Equal(t, state.Items, next.Items)
	assert.Equal(t, state.Count, next.Count)
}

func TestClearCart(t *testing.T) {
	state := NewState()
	state = Reduce(state, AddItem{Item: item("a", "p1", "10.00", 2)})
	state = Reduce(state, ClearCart{})

	assert.Empty(t, state.Items)
	assert.True(t, state.Total.IsZero())
	assert.Zero(t, state.Count)
}

func TestEmptyCartTotals(t *testing.T) {
	state := Reduce(NewState(), SetCart{Items: nil})

	assert.True(t, state.Total.IsZero())
	assert.Zero(t, state.Count)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	state := NewState()
	state = Reduce(state, AddItem{Item: item("a", "p1", "10.00", 2)})

	_ = Reduce(state, UpdateItemQuantity{ID: "a", Quantity: 99})
	_ = Reduce(state, RemoveItem{ID: "a"})

	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)
}

func TestSetUserKeepsCart(t *testing.T) {
	state := NewState()
	state = Reduce(state, AddItem{Item: item("a", "p1", "10.00", 2)})
	state = Reduce(state, SetUser{User: &User{ID: "u1", Email: "u@example.com"}})

	require.NotNil(t, state.User)
	assert.Len(t, state.Items, 1)

	state = Reduce(state, SetUser{User: nil})
	assert.Nil(t, state.User)
	assert.Len(t, state.Items, 1)
}

func TestLocalIDs(t *testing.T) {
	id := NewLocalID()
	assert.True(t, IsLocalID(id))
	assert.False(t, IsLocalID("f47ac10b-58cc-4372-a567-0e02b2c3d479"))
}
