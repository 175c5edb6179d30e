package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"settlement-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPayoutCreated publishes PayoutCreated event
func (ep *EventPublisher) PublishPayoutCreated(ctx context.Context, event *models.PayoutCreatedEvent) error {
	key := fmt.Sprintf("payout-%d", event.PayoutID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPayoutBurned publishes PayoutBurned event
func (ep *EventPublisher) PublishPayoutBurned(ctx context.Context, event *models.PayoutBurnedEvent) error {
	key := fmt.Sprintf("payout-%d", event.PayoutID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPayoutTransferred publishes PayoutTransferred event
func (ep *EventPublisher) PublishPayoutTransferred(ctx context.Context, event *models.PayoutTransferredEvent) error {
	key := fmt.Sprintf("payout-%d", event.PayoutID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming processor events
type EventHandler struct {
	onConfirmation func(context.Context, *models.ProcessorConfirmationEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnConfirmation registers a handler for processor confirmation events
func (eh *EventHandler) OnConfirmation(handler func(context.Context, *models.ProcessorConfirmationEvent) error) {
	eh.onConfirmation = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeProcessorConfirmation:
		if eh.onConfirmation != nil {
			var event models.ProcessorConfirmationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProcessorConfirmation event: %w", err)
			}
			return eh.onConfirmation(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
