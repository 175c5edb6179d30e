package models

import "time"

// Place represents a merchant's point of sale
type Place struct {
	ID         int64     `db:"id" json:"id"`
	BusinessID int64     `db:"business_id" json:"business_id"`
	Name       string    `db:"name" json:"name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CatalogItem represents a sellable item on a place's menu
type CatalogItem struct {
	ID        int64     `db:"id" json:"id"`
	PlaceID   int64     `db:"place_id" json:"place_id"`
	Name      string    `db:"name" json:"name"`
	Price     int64     `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Order represents a captured checkout. Total, fees and the item snapshot
// are immutable after creation; only status, the processor references and
// payout_id may change.
type Order struct {
	ID            int64       `db:"id" json:"id"`
	PlaceID       int64       `db:"place_id" json:"place_id"`
	AccountID     int64       `db:"account_id" json:"account_id"`
	Total         int64       `db:"total" json:"total"`
	Fees          int64       `db:"fees" json:"fees"`
	Due           int64       `db:"due" json:"due"`
	Description   string      `db:"description" json:"description,omitempty"`
	Status        OrderStatus `db:"status" json:"status"`
	PaymentType   PaymentType `db:"payment_type" json:"payment_type"`
	Token         string      `db:"token" json:"token,omitempty"`
	ProcessorTxID *string     `db:"processor_tx_id" json:"processor_tx_id,omitempty"`
	TxHash        *string     `db:"tx_hash" json:"tx_hash,omitempty"`
	PayoutID      *int64      `db:"payout_id" json:"payout_id,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// SignedAmount is the order's contribution to a payout total: refunds and
// corrections subtract, everything else settled adds, always net of fees.
func (o *Order) SignedAmount() int64 {
	net := o.Total - o.Fees
	if o.Status == OrderStatusRefund || o.Status == OrderStatusCorrection {
		return -net
	}
	return net
}

// OrderItem is a line item with the catalog price copied at order creation.
// Later catalog price changes never touch it.
type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ItemID    int64 `db:"item_id" json:"item_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	UnitPrice int64 `db:"unit_price" json:"unit_price"`
}

// Payout represents a batched settlement of one place's orders over a window
type Payout struct {
	ID         int64     `db:"id" json:"id"`
	PlaceID    int64     `db:"place_id" json:"place_id"`
	BusinessID int64     `db:"business_id" json:"business_id"`
	CreatedBy  int64     `db:"created_by" json:"created_by"`
	FromDate   time.Time `db:"from_date" json:"from_date"`
	ToDate     time.Time `db:"to_date" json:"to_date"`
	Amount     int64     `db:"amount" json:"amount"`
	BurnID     *int64    `db:"burn_id" json:"burn_id,omitempty"`
	TransferID *int64    `db:"transfer_id" json:"transfer_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PayoutTotal computes the signed settlement total for a set of orders.
func PayoutTotal(orders []Order) int64 {
	var total int64
	for i := range orders {
		total += orders[i].SignedAmount()
	}
	return total
}

// Burn marks the moment tokens backing a payout were taken out of circulation
type Burn struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Transfer marks the moment payout funds were moved off-platform
type Transfer struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent for confirmation dedupe
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
