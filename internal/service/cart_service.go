package service

import (
	"context"
	"fmt"

	"storefront-service/config"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService handles server-side cart rows.
type CartService struct {
	store           *store.Store
	duplicatePolicy string
	logger          *zap.Logger
}

// NewCartService creates a new cart service with the configured
// duplicate policy.
func NewCartService(store *store.Store, duplicatePolicy string) *CartService {
	return &CartService{
		store:           store,
		duplicatePolicy: duplicatePolicy,
		logger:          util.GetLogger(),
	}
}

// CartView is a cart with its derived totals, the shape GET /api/cart
// responds with.
type CartView struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

// GetCart returns a user's cart with total and count recomputed from
// the live rows.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	items, err := s.store.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: items, Total: decimal.Zero}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		view.Total = view.Total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		view.Count += item.Quantity
	}
	if view.Items == nil {
		view.Items = []models.CartItem{}
	}
	return view, nil
}

// AddItem puts a product into a user's cart. When the product is
// already present the configured policy decides: merge increments the
// existing row's quantity, reject answers with a conflict.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if userID == "" || productID == "" {
		return nil, fmt.Errorf("%w: user id and product id are required", ErrValidation)
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fromStore(err)
	}

	existing, err := s.store.GetCartItemByUserProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	var item *models.CartItem
	if existing != nil {
		if s.duplicatePolicy == config.CartPolicyReject {
			util.CartDuplicateRejectsTotal.Inc()
			return nil, fmt.Errorf("%w: product %s is already in the cart", ErrConflict, productID)
		}
		item, err = s.store.UpdateCartItemQuantity(ctx, existing.ID, existing.Quantity+quantity)
		if err != nil {
			return nil, fromStore(err)
		}
	} else {
		item = &models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.store.CreateCartItem(ctx, item); err != nil {
			return nil, fromStore(err)
		}
	}

	item.Product = product
	util.CartItemsAddedTotal.Inc()
	s.logger.Info("Cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", item.Quantity))
	return item, nil
}

// UpdateQuantity replaces the quantity of a cart row. Quantities below
// one are rejected.
func (s *CartService) UpdateQuantity(ctx context.Context, id string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
	}

	item, err := s.store.UpdateCartItemQuantity(ctx, id, quantity)
	if err != nil {
		return nil, fromStore(err)
	}

	if product, perr := s.store.GetProductByID(ctx, item.ProductID); perr == nil {
		item.Product = product
	}
	return item, nil
}

// RemoveItem deletes a cart row; removing an already absent row is a
// not-found error.
func (s *CartService) RemoveItem(ctx context.Context, id string) error {
	return fromStore(s.store.DeleteCartItem(ctx, id))
}

// Clear removes every row of a user's cart. Clearing an already empty
// cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}

	if err := s.store.ClearCart(ctx, userID); err != nil {
		return err
	}

	util.CartsClearedTotal.Inc()
	s.logger.Info("Cart cleared", zap.String("user_id", userID))
	return nil
}
