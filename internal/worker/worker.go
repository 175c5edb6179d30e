package worker

import (
	"context"
	"log"

	"settlement-service/internal/broker"
	"settlement-service/internal/service"
)

// ConfirmationWorker consumes processor confirmation events and applies
// them to orders.
type ConfirmationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewConfirmationWorker creates a new confirmation worker
func NewConfirmationWorker(
	consumer *broker.Consumer,
	confirmations *service.ConfirmationService,
) *ConfirmationWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnConfirmation(confirmations.HandleConfirmation)

	return &ConfirmationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *ConfirmationWorker) Start(ctx context.Context) error {
	log.Println("Starting confirmation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ConfirmationWorker) Stop() error {
	log.Println("Stopping confirmation worker...")
	return w.consumer.Close()
}
