package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"settlement-service/internal/models"
)

// RecordBurn inserts a burn marker and attaches it to the payout, both in
// one transaction. The burn_id IS NULL guard makes the attach one-shot: a
// second recording fails with AlreadyRecordedError and the first marker is
// left untouched.
func (s *Store) RecordBurn(ctx context.Context, payoutID int64) (*models.Burn, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var burn models.Burn
	if err := tx.GetContext(ctx, &burn,
		"INSERT INTO burns DEFAULT VALUES RETURNING id, created_at"); err != nil {
		return nil, fmt.Errorf("failed to insert burn: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE payouts SET burn_id = $1 WHERE id = $2 AND burn_id IS NULL",
		burn.ID, payoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to attach burn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := s.GetPayoutByID(ctx, payoutID); err != nil {
			return nil, err
		}
		return nil, &models.AlreadyRecordedError{PayoutID: payoutID, Milestone: "burn"}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &burn, nil
}

// RecordTransfer inserts a transfer marker and attaches it to the payout,
// same contract as RecordBurn.
func (s *Store) RecordTransfer(ctx context.Context, payoutID int64) (*models.Transfer, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var transfer models.Transfer
	if err := tx.GetContext(ctx, &transfer,
		"INSERT INTO transfers DEFAULT VALUES RETURNING id, created_at"); err != nil {
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE payouts SET transfer_id = $1 WHERE id = $2 AND transfer_id IS NULL",
		transfer.ID, payoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to attach transfer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := s.GetPayoutByID(ctx, payoutID); err != nil {
			return nil, err
		}
		return nil, &models.AlreadyRecordedError{PayoutID: payoutID, Milestone: "transfer"}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// GetBurnByID retrieves a burn marker
func (s *Store) GetBurnByID(ctx context.Context, id int64) (*models.Burn, error) {
	var burn models.Burn
	err := s.db.GetContext(ctx, &burn, "SELECT * FROM burns WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "burn", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &burn, nil
}

// GetTransferByID retrieves a transfer marker
func (s *Store) GetTransferByID(ctx context.Context, id int64) (*models.Transfer, error) {
	var transfer models.Transfer
	err := s.db.GetContext(ctx, &transfer, "SELECT * FROM transfers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "transfer", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

// UpdateBurnDate overrides a recorded burn timestamp
func (s *Store) UpdateBurnDate(ctx context.Context, burnID int64, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE burns SET created_at = $1 WHERE id = $2", date, burnID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &models.NotFoundError{Entity: "burn", ID: burnID}
	}
	return nil
}

// UpdateTransferDate overrides a recorded transfer timestamp
func (s *Store) UpdateTransferDate(ctx context.Context, transferID int64, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transfers SET created_at = $1 WHERE id = $2", date, transferID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &models.NotFoundError{Entity: "transfer", ID: transferID}
	}
	return nil
}
