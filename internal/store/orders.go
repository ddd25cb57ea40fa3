package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// CreateOrderTx creates an order from the given lines in one transaction:
// every referenced product is locked and validated, per-line prices are
// snapshotted, stock is decremented, and the user's cart is cleared.
// Any missing product or short stock aborts the whole operation with no
// partial writes.
func (s *Store) CreateOrderTx(ctx context.Context, userID string, lines []OrderLine, idempotencyKey string) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", userID); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		Total:          decimal.Zero,
		Status:         models.OrderStatusPending,
		IdempotencyKey: idempotencyKey,
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		var product models.Product
		err := tx.GetContext(ctx, &product,
			"SELECT * FROM products WHERE id = $1 FOR UPDATE", line.ProductID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock product %s: %w", line.ProductID, err)
		}

		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("product %s: available=%d requested=%d: %w",
				line.ProductID, product.Stock, line.Quantity, ErrInsufficientStock)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2",
			line.Quantity, line.ProductID); err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		items = append(items, models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		order.Total = order.Total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	query := `
		INSERT INTO orders (id, user_id, total, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	if err := tx.QueryRowxContext(ctx, query,
		order.ID, order.UserID, order.Total, order.Status, order.IdempotencyKey).
		Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (id, order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4, $5)",
			items[i].ID, items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].Price); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.Items = items
	return order, nil
}

// GetOrderByID retrieves an order and its items.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &order.Items,
		"SELECT * FROM order_items WHERE order_id = $1", id); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key.
// Returns (nil, nil) when no order carries the key.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves orders newest first, optionally for one user.
func (s *Store) GetOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	var err error
	if userID != "" {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	} else {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := s.db.SelectContext(ctx, &orders[i].Items,
			"SELECT * FROM order_items WHERE order_id = $1", orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateOrderStatus transitions an order to a new status and returns the
// previous one.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var previous string
	err = tx.GetContext(ctx, &previous,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID); err != nil {
		return "", err
	}

	return previous, tx.Commit()
}

// CountOrdersByStatus returns order counts grouped by status.
func (s *Store) CountOrdersByStatus(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT status, COUNT(*) AS count FROM orders GROUP BY status")
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Totals used by the dashboard stats endpoint.

// CountRows counts rows of a table. Table names are fixed at call sites.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	return n, err
}

// SumOrderTotals sums the total of every non-cancelled order.
func (s *Store) SumOrderTotals(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := s.db.GetContext(ctx, &sum,
		"SELECT SUM(total) FROM orders WHERE status <> $1", models.OrderStatusCancelled)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// GetLowStockProducts lists products at or below the given stock level.
func (s *Store) GetLowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE stock <= $1 ORDER BY stock", threshold)
	return products, err
}
