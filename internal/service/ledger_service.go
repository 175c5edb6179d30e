package service

import (
	"context"
	"time"

	"settlement-service/internal/models"
	"settlement-service/internal/store"
	"settlement-service/internal/util"

	"go.uber.org/zap"
)

// LedgerService resolves burn/transfer milestone timestamps through a
// payout's references and supports administrative date overrides.
type LedgerService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store *store.Store) *LedgerService {
	return &LedgerService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// GetBurnDate returns when the payout's tokens were burned
func (ls *LedgerService) GetBurnDate(ctx context.Context, payoutID int64) (time.Time, error) {
	payout, err := ls.store.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return time.Time{}, err
	}
	if payout.BurnID == nil {
		return time.Time{}, &models.NotFoundError{Entity: "burn for payout", ID: payoutID}
	}

	burn, err := ls.store.GetBurnByID(ctx, *payout.BurnID)
	if err != nil {
		return time.Time{}, err
	}
	return burn.CreatedAt, nil
}

// GetTransferDate returns when the payout's funds were moved off-platform
func (ls *LedgerService) GetTransferDate(ctx context.Context, payoutID int64) (time.Time, error) {
	payout, err := ls.store.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return time.Time{}, err
	}
	if payout.TransferID == nil {
		return time.Time{}, &models.NotFoundError{Entity: "transfer for payout", ID: payoutID}
	}

	transfer, err := ls.store.GetTransferByID(ctx, *payout.TransferID)
	if err != nil {
		return time.Time{}, err
	}
	return transfer.CreatedAt, nil
}

// UpdateBurnDate overrides a recorded burn timestamp (admin correction)
func (ls *LedgerService) UpdateBurnDate(ctx context.Context, payoutID int64, date time.Time) error {
	if date.IsZero() {
		return &models.ValidationError{Reason: "burn date must not be empty"}
	}

	payout, err := ls.store.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return err
	}
	if payout.BurnID == nil {
		return &models.NotFoundError{Entity: "burn for payout", ID: payoutID}
	}

	if err := ls.store.UpdateBurnDate(ctx, *payout.BurnID, date); err != nil {
		return err
	}

	ls.logger.Info("Burn date overridden",
		zap.Int64("payout_id", payoutID),
		zap.Time("date", date))
	return nil
}

// UpdateTransferDate overrides a recorded transfer timestamp (admin correction)
func (ls *LedgerService) UpdateTransferDate(ctx context.Context, payoutID int64, date time.Time) error {
	if date.IsZero() {
		return &models.ValidationError{Reason: "transfer date must not be empty"}
	}

	payout, err := ls.store.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return err
	}
	if payout.TransferID == nil {
		return &models.NotFoundError{Entity: "transfer for payout", ID: payoutID}
	}

	if err := ls.store.UpdateTransferDate(ctx, *payout.TransferID, date); err != nil {
		return err
	}

	ls.logger.Info("Transfer date overridden",
		zap.Int64("payout_id", payoutID),
		zap.Time("date", date))
	return nil
}
