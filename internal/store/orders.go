package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"settlement-service/internal/models"
)

// CreateOrder inserts an order together with its snapshotted items in one
// transaction. Unit prices must already be copied into items by the caller;
// this layer never re-reads the catalog.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (place_id, account_id, total, fees, due, description, status, payment_type, token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	if err := tx.GetContext(ctx, order, query,
		order.PlaceID, order.AccountID, order.Total, order.Fees, order.Due,
		order.Description, order.Status, order.PaymentType, order.Token); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.GetContext(ctx, &items[i].ID,
			`INSERT INTO order_items (order_id, item_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			items[i].OrderID, items[i].ItemID, items[i].Quantity, items[i].UnitPrice); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetOrdersByPlace retrieves orders for a place, newest first
func (s *Store) GetOrdersByPlace(ctx context.Context, placeID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE place_id = $1 ORDER BY created_at DESC", placeID)
	return orders, err
}

// UpdateOrderStatus applies a status change guarded by the expected current
// status. Returns false when no row matched, which means either the order
// does not exist or its status moved underneath the caller.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, from, to models.OrderStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, orderID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AttachTxHash sets the blockchain transaction hash once. A second attach of
// the same kind is a no-op so webhook retries cannot corrupt state.
func (s *Store) AttachTxHash(ctx context.Context, orderID int64, txHash string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET tx_hash = $1, updated_at = NOW() WHERE id = $2 AND tx_hash IS NULL",
		txHash, orderID)
	return err
}

// AttachProcessorTxID sets the processor transaction id once, same contract
// as AttachTxHash.
func (s *Store) AttachProcessorTxID(ctx context.Context, orderID int64, processorTxID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET processor_tx_id = $1, updated_at = NOW() WHERE id = $2 AND processor_tx_id IS NULL",
		processorTxID, orderID)
	return err
}

// UpdateOrderFees records processor fees for an order. Fees only ever move
// from zero; totals stay untouched.
func (s *Store) UpdateOrderFees(ctx context.Context, orderID, fees int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET fees = $1, updated_at = NOW() WHERE id = $2 AND fees = 0",
		fees, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetOrderByID(ctx, orderID); err != nil {
			return err
		}
	}
	return nil
}

// GetPendingOrdersOlderThan lists pending orders created before the cutoff,
// used by reporting to show expired checkouts.
func (s *Store) GetPendingOrdersOlderThan(ctx context.Context, placeID int64, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE place_id = $1 AND status = $2 AND created_at < $3 ORDER BY created_at DESC",
		placeID, models.OrderStatusPending, cutoff)
	return orders, err
}
