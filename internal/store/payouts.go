package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"settlement-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// SelectEligibleOrders lists a place's settled, unconsumed orders inside the
// window. Read-only; safe to call any number of times before a payout run.
func (s *Store) SelectEligibleOrders(ctx context.Context, placeID int64, from, to time.Time) ([]models.Order, error) {
	statuses := models.SettledStatuses()
	raw := make([]interface{}, len(statuses))
	for i, st := range statuses {
		raw[i] = string(st)
	}

	query, args, err := sqlx.In(
		`SELECT * FROM orders
		 WHERE place_id = ? AND payout_id IS NULL
		   AND created_at >= ? AND created_at <= ?
		   AND status IN (?)
		 ORDER BY created_at`,
		placeID, from, to, raw)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var orders []models.Order
	err = s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// CreatePayout inserts the payout header and stamps every eligible order in
// a single transaction. The stored amount is computed from exactly the rows
// the stamping UPDATE returned, so a partial failure can never leave the
// header total disagreeing with the stamped set. The payout_id IS NULL guard
// runs under row locks, which is what keeps two concurrent runs from
// claiming the same order twice.
func (s *Store) CreatePayout(ctx context.Context, payout *models.Payout) ([]models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, payout,
		`INSERT INTO payouts (place_id, business_id, created_by, from_date, to_date, amount)
		 VALUES ($1, $2, $3, $4, $5, 0)
		 RETURNING id, created_at`,
		payout.PlaceID, payout.BusinessID, payout.CreatedBy,
		payout.FromDate, payout.ToDate); err != nil {
		return nil, fmt.Errorf("failed to insert payout: %w", err)
	}

	query, args, err := s.claimQuery(payout)
	if err != nil {
		return nil, err
	}

	var claimed []models.Order
	if err := tx.SelectContext(ctx, &claimed, query, args...); err != nil {
		return nil, fmt.Errorf("failed to claim orders: %w", err)
	}

	if len(claimed) == 0 {
		return nil, models.ErrNoEligibleOrders
	}

	payout.Amount = models.PayoutTotal(claimed)
	if _, err := tx.ExecContext(ctx,
		"UPDATE payouts SET amount = $1 WHERE id = $2",
		payout.Amount, payout.ID); err != nil {
		return nil, fmt.Errorf("failed to store payout amount: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *Store) claimQuery(payout *models.Payout) (string, []interface{}, error) {
	statuses := models.SettledStatuses()
	raw := make([]interface{}, len(statuses))
	for i, st := range statuses {
		raw[i] = string(st)
	}

	query, args, err := sqlx.In(
		`UPDATE orders SET payout_id = ?, updated_at = NOW()
		 WHERE place_id = ? AND payout_id IS NULL
		   AND created_at >= ? AND created_at <= ?
		   AND status IN (?)
		 RETURNING *`,
		payout.ID, payout.PlaceID, payout.FromDate, payout.ToDate, raw)
	if err != nil {
		return "", nil, err
	}
	return s.db.Rebind(query), args, nil
}

// GetPayoutByID retrieves a payout by ID
func (s *Store) GetPayoutByID(ctx context.Context, id int64) (*models.Payout, error) {
	var payout models.Payout
	err := s.db.GetContext(ctx, &payout, "SELECT * FROM payouts WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "payout", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// GetPayoutsByPlace retrieves payouts for a place, newest first
func (s *Store) GetPayoutsByPlace(ctx context.Context, placeID int64) ([]models.Payout, error) {
	var payouts []models.Payout
	err := s.db.SelectContext(ctx, &payouts,
		"SELECT * FROM payouts WHERE place_id = $1 ORDER BY created_at DESC", placeID)
	return payouts, err
}

// GetOrdersByPayout retrieves the orders a payout consumed
func (s *Store) GetOrdersByPayout(ctx context.Context, payoutID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE payout_id = $1 ORDER BY created_at", payoutID)
	return orders, err
}
