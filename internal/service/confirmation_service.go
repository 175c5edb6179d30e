package service

import (
	"context"
	"errors"
	"fmt"

	"settlement-service/internal/models"
	"settlement-service/internal/store"
	"settlement-service/internal/util"

	"go.uber.org/zap"
)

// ConfirmationService applies payment processor confirmations to orders.
// Events arrive via the processor bridge topic (the webhook-equivalent) and
// may be delivered more than once; dedupe plus idempotent transitions keep
// repeats harmless.
type ConfirmationService struct {
	store        *store.Store
	orderService *OrderService
	logger       *zap.Logger
}

// NewConfirmationService creates a new confirmation service
func NewConfirmationService(store *store.Store, orderService *OrderService) *ConfirmationService {
	return &ConfirmationService{
		store:        store,
		orderService: orderService,
		logger:       util.GetLogger(),
	}
}

// HandleConfirmation attaches the processor reference and applies the
// target status. Only paid and the refund variants are acceptable targets.
func (cs *ConfirmationService) HandleConfirmation(ctx context.Context, event *models.ProcessorConfirmationEvent) error {
	ctx, span := util.StartSpan(ctx, "ConfirmationService.HandleConfirmation")
	defer span.End()

	processed, err := cs.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		cs.logger.Info("Confirmation already processed", zap.String("event_id", event.EventID))
		util.ConfirmationsTotal.WithLabelValues("duplicate").Inc()
		return nil
	}

	switch event.Target {
	case models.OrderStatusPaid, models.OrderStatusRefund, models.OrderStatusRefunded, models.OrderStatusCorrection:
	default:
		util.ConfirmationsTotal.WithLabelValues("rejected").Inc()
		return &models.ValidationError{
			Reason: fmt.Sprintf("confirmation target %q is not a settlement status", event.Target),
		}
	}

	if err := cs.orderService.AttachProcessorReference(ctx, event.OrderID, event.ProcessorTxID, event.TxHash); err != nil {
		var ve *models.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("failed to attach processor reference: %w", err)
		}
	}

	if event.Fees > 0 {
		if err := cs.store.UpdateOrderFees(ctx, event.OrderID, event.Fees); err != nil {
			return fmt.Errorf("failed to record processor fees: %w", err)
		}
	}

	if _, err := cs.orderService.Transition(ctx, event.OrderID, event.Target); err != nil {
		var ite *models.InvalidTransitionError
		if errors.As(err, &ite) {
			// A confirmation that no longer applies (e.g. cancelled order)
			// is recorded and dropped, not retried forever.
			cs.logger.Warn("Confirmation target unreachable",
				zap.Int64("order_id", event.OrderID),
				zap.String("target", string(event.Target)),
				zap.Error(err))
			util.ConfirmationsTotal.WithLabelValues("rejected").Inc()
			return cs.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
		}
		return err
	}

	if err := cs.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		cs.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	util.ConfirmationsTotal.WithLabelValues("applied").Inc()
	cs.logger.Info("Confirmation applied",
		zap.Int64("order_id", event.OrderID),
		zap.String("target", string(event.Target)))
	return nil
}
