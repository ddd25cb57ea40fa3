package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateQuantityRejectsZeroAndNegative(t *testing.T) {
	cs := &CartService{}

	for _, qty := range []int{0, -1, -100} {
		_, err := cs.UpdateQuantity(context.Background(), "item-1", qty)
		assert.ErrorIs(t, err, ErrValidation, "quantity %d must be rejected", qty)
	}
}

func TestGetCartRequiresUserID(t *testing.T) {
	cs := &CartService{}

	_, err := cs.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddItemRequiresUserAndProduct(t *testing.T) {
	cs := &CartService{}

	_, err := cs.AddItem(context.Background(), "", "p1", 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = cs.AddItem(context.Background(), "u1", "", 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClearRequiresUserID(t *testing.T) {
	cs := &CartService{}

	err := cs.Clear(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParsePrice(t *testing.T) {
	price, err := parsePrice("10.50")
	assert.NoError(t, err)
	assert.Equal(t, "10.5", price.String())

	_, err = parsePrice("not-a-price")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = parsePrice("-1.00")
	assert.ErrorIs(t, err, ErrValidation)
}
