package service

import (
	"context"
	"fmt"
	"time"

	"settlement-service/internal/broker"
	"settlement-service/internal/models"
	"settlement-service/internal/store"
	"settlement-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order capture and the status state machine
type OrderService struct {
	store          *store.Store
	catalog        *CatalogClient
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	staleWindow    time.Duration
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	catalog *CatalogClient,
	eventPublisher *broker.EventPublisher,
	staleWindow time.Duration,
) *OrderService {
	return &OrderService{
		store:          store,
		catalog:        catalog,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		staleWindow:    staleWindow,
	}
}

// CreateOrderRequest represents a checkout. Items maps catalog item id to
// quantity; an empty map requires a positive explicit Amount instead.
type CreateOrderRequest struct {
	PlaceID     int64         `json:"place_id" binding:"required"`
	AccountID   int64         `json:"account_id"`
	Items       map[int64]int `json:"items"`
	Description string        `json:"description"`
	PaymentType string        `json:"payment_type" binding:"required"`
	Token       string        `json:"token"`
	Amount      *int64        `json:"amount,omitempty"`
}

// CreateOrderResponse represents the response after capturing an order
type CreateOrderResponse struct {
	OrderID int64              `json:"order_id"`
	Total   int64              `json:"total"`
	Status  models.OrderStatus `json:"status"`
}

// CreateOrder captures a checkout as a pending order. Catalog prices are
// copied into the item snapshot at this moment and never re-read, so later
// menu edits leave historical orders intact.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	paymentType, err := models.ParsePaymentType(req.PaymentType)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_payment_type").Inc()
		return nil, &models.ValidationError{Reason: err.Error()}
	}

	if len(req.Items) == 0 && (req.Amount == nil || *req.Amount <= 0) {
		util.OrdersFailedTotal.WithLabelValues("empty_order").Inc()
		return nil, &models.ValidationError{Reason: "order needs items or a positive amount"}
	}

	if _, err := s.store.GetPlaceByID(ctx, req.PlaceID); err != nil {
		util.OrdersFailedTotal.WithLabelValues("unknown_place").Inc()
		return nil, err
	}

	var total int64
	var items []models.OrderItem

	if len(req.Items) > 0 {
		items, total, err = s.snapshotItems(ctx, req.Items)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
			return nil, err
		}
	} else {
		total = *req.Amount
	}

	order := &models.Order{
		PlaceID:     req.PlaceID,
		AccountID:   req.AccountID,
		Total:       total,
		Fees:        0,
		Due:         total,
		Description: req.Description,
		Status:      models.OrderStatusPending,
		PaymentType: paymentType,
		Token:       req.Token,
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.WithLabelValues(string(paymentType)).Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("place_id", order.PlaceID),
		zap.Int64("total", order.Total))

	itemData := make([]models.OrderItemData, len(items))
	for i, it := range items {
		itemData[i] = models.OrderItemData{ItemID: it.ItemID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		PlaceID:     order.PlaceID,
		Total:       order.Total,
		PaymentType: order.PaymentType,
		Items:       itemData,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CreateOrderResponse{
		OrderID: order.ID,
		Total:   order.Total,
		Status:  order.Status,
	}, nil
}

// snapshotItems copies current catalog prices into order items
func (s *OrderService) snapshotItems(ctx context.Context, selected map[int64]int) ([]models.OrderItem, int64, error) {
	items := make([]models.OrderItem, 0, len(selected))
	var total int64

	for itemID, quantity := range selected {
		if quantity <= 0 {
			return nil, 0, &models.ValidationError{
				Reason: fmt.Sprintf("item %d: quantity must be positive", itemID),
			}
		}

		price, err := s.catalog.GetItemPrice(ctx, itemID)
		if err != nil {
			return nil, 0, err
		}

		items = append(items, models.OrderItem{
			ItemID:    itemID,
			Quantity:  quantity,
			UnitPrice: price,
		})
		total += price * int64(quantity)
	}

	return items, total, nil
}

// Transition applies a status change. Re-applying the current status is a
// no-op success so duplicate webhook deliveries stay harmless; anything
// outside the legal graph fails with InvalidTransitionError.
func (s *OrderService) Transition(ctx context.Context, orderID int64, newStatus models.OrderStatus) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Transition")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}

	if !order.Status.CanTransitionTo(newStatus) {
		util.OrderTransitionsRejected.WithLabelValues(string(order.Status), string(newStatus)).Inc()
		return nil, &models.InvalidTransitionError{OrderID: orderID, From: order.Status, To: newStatus}
	}

	applied, err := s.store.UpdateOrderStatus(ctx, orderID, order.Status, newStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if !applied {
		// Lost a race with a concurrent transition; re-read and re-judge.
		current, err := s.store.GetOrderByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.Status == newStatus {
			return current, nil
		}
		util.OrderTransitionsRejected.WithLabelValues(string(current.Status), string(newStatus)).Inc()
		return nil, &models.InvalidTransitionError{OrderID: orderID, From: current.Status, To: newStatus}
	}

	util.OrderTransitionsTotal.WithLabelValues(string(order.Status), string(newStatus)).Inc()
	s.logger.Info("Order transitioned",
		zap.Int64("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(newStatus)))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		PlaceID: order.PlaceID,
		From:    order.Status,
		To:      newStatus,
	}

	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	order.Status = newStatus
	return order, nil
}

// CancelOrder cancels a pending order
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, orderID, models.OrderStatusCancelled)
}

// AttachProcessorReference records the processor transaction id and/or the
// chain transaction hash. Each kind is attached at most once; repeats are
// no-ops. Status is not touched here.
func (s *OrderService) AttachProcessorReference(ctx context.Context, orderID int64, processorTxID, txHash string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.AttachProcessorReference")
	defer span.End()

	if processorTxID == "" && txHash == "" {
		return &models.ValidationError{Reason: "no processor reference supplied"}
	}

	if _, err := s.store.GetOrderByID(ctx, orderID); err != nil {
		return err
	}

	if processorTxID != "" {
		if err := s.store.AttachProcessorTxID(ctx, orderID, processorTxID); err != nil {
			return fmt.Errorf("failed to attach processor tx id: %w", err)
		}
	}
	if txHash != "" {
		if err := s.store.AttachTxHash(ctx, orderID, txHash); err != nil {
			return fmt.Errorf("failed to attach tx hash: %w", err)
		}
	}
	return nil
}

// GetOrder retrieves an order with its item snapshot
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListOrders retrieves a place's orders
func (s *OrderService) ListOrders(ctx context.Context, placeID int64) ([]models.Order, error) {
	if _, err := s.store.GetPlaceByID(ctx, placeID); err != nil {
		return nil, err
	}
	return s.store.GetOrdersByPlace(ctx, placeID)
}

// ListExpiredOrders retrieves a place's pending orders that have outlived
// the staleness window. Purely a reporting view; the rows stay pending.
func (s *OrderService) ListExpiredOrders(ctx context.Context, placeID int64) ([]models.Order, error) {
	if _, err := s.store.GetPlaceByID(ctx, placeID); err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-s.staleWindow)
	return s.store.GetPendingOrdersOlderThan(ctx, placeID, cutoff)
}

// ProjectStatus returns the read-time status of an order, folding in the
// staleness window for pending checkouts.
func (s *OrderService) ProjectStatus(order *models.Order, now time.Time) models.OrderStatus {
	return models.EffectiveStatus(order.Status, order.CreatedAt, now, s.staleWindow)
}
