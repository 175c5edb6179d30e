package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement-service/internal/broker"
	"settlement-service/internal/models"
	"settlement-service/internal/redisclient"
	"settlement-service/internal/store"
	"settlement-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPayoutRunInProgress is returned when another payout run already holds
// the per-place lock.
var ErrPayoutRunInProgress = errors.New("payout run already in progress for place")

// PayoutService aggregates settled orders into payouts and records the
// burn/transfer milestones against them.
type PayoutService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	lockTTL        time.Duration
}

// NewPayoutService creates a new payout service
func NewPayoutService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	lockTTL time.Duration,
) *PayoutService {
	return &PayoutService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		lockTTL:        lockTTL,
	}
}

// SelectEligibleOrders previews what a payout run over the window would
// consume. Read-only, so admins can call it repeatedly before committing.
func (ps *PayoutService) SelectEligibleOrders(ctx context.Context, placeID int64, from, to time.Time) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "PayoutService.SelectEligibleOrders")
	defer span.End()

	if to.Before(from) {
		return nil, &models.ValidationError{Reason: "window end must not precede window start"}
	}
	if _, err := ps.store.GetPlaceByID(ctx, placeID); err != nil {
		return nil, err
	}

	return ps.store.SelectEligibleOrders(ctx, placeID, from, to)
}

// CreatePayout runs the aggregation: settled, unconsumed orders in the
// window are stamped with the new payout id and the signed total is stored.
// The claim is a single database transaction, so two overlapping runs can
// never both consume the same order. The Redis lock on top only serializes
// runs per place so the loser fails fast instead of racing to an empty claim.
func (ps *PayoutService) CreatePayout(ctx context.Context, placeID, userID int64, from, to time.Time) (*models.Payout, error) {
	ctx, span := util.StartSpan(ctx, "PayoutService.CreatePayout")
	defer span.End()

	// The window is inclusive on both ends, so equal bounds are a valid
	// (single-instant) window; only an inverted one is malformed.
	if to.Before(from) {
		return nil, &models.ValidationError{Reason: "window end must not precede window start"}
	}

	place, err := ps.store.GetPlaceByID(ctx, placeID)
	if err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("payout:place:%d", placeID)
	acquired, err := ps.redis.AcquireLock(ctx, lockKey, ps.lockTTL)
	if err != nil {
		ps.logger.Warn("Payout lock unavailable, relying on DB claim only",
			zap.Int64("place_id", placeID),
			zap.Error(err))
	} else if !acquired {
		return nil, ErrPayoutRunInProgress
	} else {
		defer func() {
			if err := ps.redis.ReleaseLock(context.Background(), lockKey); err != nil {
				ps.logger.Error("Failed to release payout lock", zap.Error(err))
			}
		}()
	}

	payout := &models.Payout{
		PlaceID:    placeID,
		BusinessID: place.BusinessID,
		CreatedBy:  userID,
		FromDate:   from,
		ToDate:     to,
	}

	claimed, err := ps.store.CreatePayout(ctx, payout)
	if err != nil {
		if errors.Is(err, models.ErrNoEligibleOrders) {
			util.PayoutsEmptyTotal.Inc()
		}
		return nil, err
	}

	util.PayoutsCreatedTotal.Inc()
	util.PayoutAmount.Observe(float64(payout.Amount))
	util.PayoutOrdersClaimed.Observe(float64(len(claimed)))

	ps.logger.Info("Payout created",
		zap.Int64("payout_id", payout.ID),
		zap.Int64("place_id", placeID),
		zap.Int64("amount", payout.Amount),
		zap.Int("orders", len(claimed)))

	event := &models.PayoutCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePayoutCreated,
			Timestamp: time.Now(),
		},
		PayoutID: payout.ID,
		PlaceID:  placeID,
		Amount:   payout.Amount,
		Orders:   len(claimed),
		FromDate: from,
		ToDate:   to,
	}

	if err := ps.eventPublisher.PublishPayoutCreated(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PayoutCreated event", zap.Error(err))
	}

	return payout, nil
}

// RecordBurn records the one-time burn milestone for a payout
func (ps *PayoutService) RecordBurn(ctx context.Context, payoutID int64) (*models.Burn, error) {
	ctx, span := util.StartSpan(ctx, "PayoutService.RecordBurn")
	defer span.End()

	burn, err := ps.store.RecordBurn(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	util.BurnsRecordedTotal.Inc()
	ps.logger.Info("Burn recorded",
		zap.Int64("payout_id", payoutID),
		zap.Int64("burn_id", burn.ID))

	event := &models.PayoutBurnedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePayoutBurned,
			Timestamp: time.Now(),
		},
		PayoutID: payoutID,
		BurnID:   burn.ID,
	}

	if err := ps.eventPublisher.PublishPayoutBurned(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PayoutBurned event", zap.Error(err))
	}

	return burn, nil
}

// RecordTransfer records the one-time transfer milestone for a payout
func (ps *PayoutService) RecordTransfer(ctx context.Context, payoutID int64) (*models.Transfer, error) {
	ctx, span := util.StartSpan(ctx, "PayoutService.RecordTransfer")
	defer span.End()

	transfer, err := ps.store.RecordTransfer(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	util.TransfersRecordedTotal.Inc()
	ps.logger.Info("Transfer recorded",
		zap.Int64("payout_id", payoutID),
		zap.Int64("transfer_id", transfer.ID))

	event := &models.PayoutTransferredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePayoutTransferred,
			Timestamp: time.Now(),
		},
		PayoutID:   payoutID,
		TransferID: transfer.ID,
	}

	if err := ps.eventPublisher.PublishPayoutTransferred(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PayoutTransferred event", zap.Error(err))
	}

	return transfer, nil
}

// GetPayout retrieves a payout with its consumed orders
func (ps *PayoutService) GetPayout(ctx context.Context, payoutID int64) (*models.Payout, []models.Order, error) {
	payout, err := ps.store.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return nil, nil, err
	}

	orders, err := ps.store.GetOrdersByPayout(ctx, payoutID)
	if err != nil {
		return nil, nil, err
	}

	return payout, orders, nil
}

// ListPayouts retrieves a place's payouts
func (ps *PayoutService) ListPayouts(ctx context.Context, placeID int64) ([]models.Payout, error) {
	if _, err := ps.store.GetPlaceByID(ctx, placeID); err != nil {
		return nil, err
	}
	return ps.store.GetPayoutsByPlace(ctx, placeID)
}
