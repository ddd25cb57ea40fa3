package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// OrderWorker consumes order events in the background: freshly created
// orders are picked up and advanced from PENDING to PROCESSING, and
// status transitions are observed for logging.
type OrderWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	orderService *service.OrderService
	logger       *zap.Logger
}

// NewOrderWorker creates a new order worker
func NewOrderWorker(consumer *broker.Consumer, orderService *service.OrderService) *OrderWorker {
	w := &OrderWorker{
		consumer:     consumer,
		orderService: orderService,
		logger:       util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *OrderWorker) Start(ctx context.Context) error {
	log.Println("Starting order worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *OrderWorker) Stop() error {
	log.Println("Stopping order worker...")
	return w.consumer.Close()
}

func (w *OrderWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	order, err := w.orderService.GetOrder(ctx, event.OrderID)
	if err != nil {
		w.logger.Error("Order from event not found",
			zap.String("order_id", event.OrderID), zap.Error(err))
		// Nothing to retry against, drop the event.
		return nil
	}

	if order.Status != models.OrderStatusPending {
		return nil
	}

	if _, err := w.orderService.UpdateStatus(ctx, event.OrderID, models.OrderStatusProcessing); err != nil {
		return err
	}

	w.logger.Info("Order moved to processing",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID))
	return nil
}

func (w *OrderWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Order status changed",
		zap.String("order_id", event.OrderID),
		zap.String("from", event.FromStatus),
		zap.String("to", event.ToStatus))
	return nil
}
