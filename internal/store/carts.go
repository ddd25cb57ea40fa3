package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

// GetCartItems retrieves a user's cart rows with products attached.
func (s *Store) GetCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM cart_items WHERE user_id = $1 ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachProducts(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCartItemByUserProduct retrieves the row for a (user, product) pair.
// Returns (nil, nil) when the pair has no row yet.
func (s *Store) GetCartItemByUserProduct(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM cart_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateCartItem inserts a cart row. The (user, product) unique
// constraint maps to ErrDuplicate.
func (s *Store) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	item.ID = uuid.New().String()
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		item.ID, item.UserID, item.ProductID, item.Quantity).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("cart item for product %s: %w", item.ProductID, ErrDuplicate)
	}
	return err
}

// UpdateCartItemQuantity replaces the quantity of a cart row.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	query := `
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING *`

	err := s.db.GetContext(ctx, &item, query, quantity, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCartItem removes a cart row. Deleting an absent row is ErrNotFound,
// matching the API's 404 on double delete.
func (s *Store) DeleteCartItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearCart removes every cart row of a user.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	return err
}

func (s *Store) attachProducts(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.GetProductsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if err := s.AttachCategories(ctx, products); err != nil {
		return err
	}

	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}
	return nil
}
