package service

import (
	"context"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	os := &OrderService{}

	_, err := os.UpdateStatus(context.Background(), "order-1", "DONE")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = os.UpdateStatus(context.Background(), "order-1", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidOrderStatuses(t *testing.T) {
	for _, status := range models.OrderStatuses {
		assert.True(t, models.ValidOrderStatus(status))
	}
	assert.False(t, models.ValidOrderStatus("PAID"))
	assert.False(t, models.ValidOrderStatus("pending"))
}

func TestCreateOrderRejectsNonPositiveQuantity(t *testing.T) {
	os := &OrderService{}

	req := &CreateOrderRequest{
		UserID: "u1",
		Items: []OrderItemRequest{
			{ProductID: "p1", Quantity: 0},
		},
	}

	_, err := os.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterValidation(t *testing.T) {
	as := &AuthService{}

	_, err := as.Register(context.Background(), &RegisterRequest{Email: "", Password: "secret1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = as.Register(context.Background(), &RegisterRequest{Email: "u@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)
}
