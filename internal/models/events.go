package models

import "time"

// Event types
const (
	EventTypeOrderCreated          = "ORDER_CREATED"
	EventTypeOrderStatusChanged    = "ORDER_STATUS_CHANGED"
	EventTypePayoutCreated         = "PAYOUT_CREATED"
	EventTypePayoutBurned          = "PAYOUT_BURNED"
	EventTypePayoutTransferred     = "PAYOUT_TRANSFERRED"
	EventTypeProcessorConfirmation = "PROCESSOR_CONFIRMATION"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a checkout captures an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	PlaceID     int64           `json:"place_id"`
	Total       int64           `json:"total"`
	PaymentType PaymentType     `json:"payment_type"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published on every effective status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64       `json:"order_id"`
	PlaceID int64       `json:"place_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

// PayoutCreatedEvent published when an aggregation run creates a payout
type PayoutCreatedEvent struct {
	BaseEvent
	PayoutID int64     `json:"payout_id"`
	PlaceID  int64     `json:"place_id"`
	Amount   int64     `json:"amount"`
	Orders   int       `json:"orders"`
	FromDate time.Time `json:"from_date"`
	ToDate   time.Time `json:"to_date"`
}

// PayoutBurnedEvent published when a burn milestone is recorded
type PayoutBurnedEvent struct {
	BaseEvent
	PayoutID int64 `json:"payout_id"`
	BurnID   int64 `json:"burn_id"`
}

// PayoutTransferredEvent published when a transfer milestone is recorded
type PayoutTransferredEvent struct {
	BaseEvent
	PayoutID   int64 `json:"payout_id"`
	TransferID int64 `json:"transfer_id"`
}

// ProcessorConfirmationEvent is consumed from the payment processor bridge.
// Target must be paid or one of the refund variants.
type ProcessorConfirmationEvent struct {
	BaseEvent
	OrderID       int64       `json:"order_id"`
	Target        OrderStatus `json:"target"`
	ProcessorTxID string      `json:"processor_tx_id,omitempty"`
	TxHash        string      `json:"tx_hash,omitempty"`
	Fees          int64       `json:"fees,omitempty"`
}

// OrderItemData represents snapshotted item data in events
type OrderItemData struct {
	ItemID    int64 `json:"item_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}
