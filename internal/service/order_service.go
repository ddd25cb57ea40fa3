package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Replayed idempotency keys stay resolvable from the cache for a day;
// after that the database unique index still catches them.
const idempotencyKeyTTL = 24 * time.Hour

// OrderService handles order creation and lifecycle.
type OrderService struct {
	store          *store.Store
	cache          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service. cache and eventPublisher
// may be nil when redis or the broker is not configured.
func NewOrderService(store *store.Store, cache *redisclient.Client, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	UserID         string             `json:"user_id" binding:"required"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrder creates an order from the requested lines. The whole
// operation runs in one transaction: any missing product or short stock
// aborts it with no partial writes, and the user's cart is cleared in
// the same commit. A replayed idempotency key returns the existing
// order instead of creating a second one.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	}()

	if req.IdempotencyKey != "" {
		existing, err := s.replayedOrder(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if existing != nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_id", existing.ID))
			return s.GetOrder(ctx, existing.ID)
		}
	}

	lines := make([]store.OrderLine, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
		}
		lines[i] = store.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := s.store.CreateOrderTx(ctx, req.UserID, lines, req.IdempotencyKey)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failReason(err)).Inc()
		return nil, fromStore(err)
	}

	if req.IdempotencyKey != "" && s.cache != nil {
		if err := s.cache.RememberIdempotencyKey(ctx, req.IdempotencyKey, order.ID, idempotencyKeyTTL); err != nil {
			s.logger.Warn("Failed to cache idempotency key", zap.Error(err))
		}
	}

	util.OrdersCreatedTotal.Inc()
	util.CartsClearedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("total", order.Total.String()))

	s.publishCreated(ctx, order)
	return order, nil
}

// replayedOrder resolves an idempotency key to the order it already
// produced, trying the cache before the database. Cache failures only
// log; the database stays the source of truth.
func (s *OrderService) replayedOrder(ctx context.Context, key string) (*models.Order, error) {
	if s.cache != nil {
		orderID, err := s.cache.GetIdempotentOrderID(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency cache lookup failed", zap.Error(err))
		} else if orderID != "" {
			return s.store.GetOrderByID(ctx, orderID)
		}
	}
	return s.store.GetOrderByIdempotencyKey(ctx, key)
}

// GetOrder retrieves an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fromStore(err)
	}
	return order, nil
}

// ListOrders retrieves orders newest first, optionally for one user.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.GetOrders(ctx, userID)
}

// UpdateStatus transitions an order to one of the five statuses.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	previous, err := s.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, fromStore(err)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(status).Inc()

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if previous != status {
		s.publishStatusChanged(ctx, order, previous)
	}
	return order, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	if s.eventPublisher == nil {
		return
	}

	items := make([]models.OrderLineData, len(order.Items))
	for i, item := range order.Items {
		items[i] = models.OrderLineData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		Items:   items,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, previous string) {
	if s.eventPublisher == nil {
		return
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		UserID:     order.UserID,
		FromStatus: previous,
		ToStatus:   order.Status,
	}

	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
}

func failReason(err error) string {
	switch {
	case isNotFound(err):
		return "not_found"
	case isStockError(err):
		return "insufficient_stock"
	default:
		return "db_error"
	}
}
