package models

import (
	"fmt"
	"time"
)

// OrderStatus is the closed set of order states. pending is the only
// non-terminal state; every transition out of it is final except that a
// paid order can still move into one of the refund variants.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefund     OrderStatus = "refund"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusCorrection OrderStatus = "correction"
)

// OrderStatusExpired is a read-time projection for pending orders past the
// staleness window. It is never stored.
const OrderStatusExpired OrderStatus = "expired"

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(raw); s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled,
		OrderStatusRefund, OrderStatusRefunded, OrderStatusCorrection:
		return s, nil
	default:
		return "", fmt.Errorf("unknown order status %q", raw)
	}
}

var legalTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusRefund, OrderStatusRefunded, OrderStatusCorrection},
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Re-applying the current status is not a transition; callers treat it as
// a no-op before consulting the graph.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Settled reports whether the order counts toward a payout.
func (s OrderStatus) Settled() bool {
	switch s {
	case OrderStatusPaid, OrderStatusRefund, OrderStatusRefunded, OrderStatusCorrection:
		return true
	}
	return false
}

// Terminal reports whether the order store will accept no further status
// writes besides the paid->refund family.
func (s OrderStatus) Terminal() bool {
	return s != OrderStatusPending
}

// SettledStatuses is the eligibility set for payout selection, in SQL order.
func SettledStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPaid, OrderStatusRefund, OrderStatusRefunded, OrderStatusCorrection}
}

// EffectiveStatus projects the display status of an order: a pending order
// older than staleAfter reads as expired. Purely derived, never written back,
// so a late processor confirmation can still pay the order.
func EffectiveStatus(s OrderStatus, createdAt, now time.Time, staleAfter time.Duration) OrderStatus {
	if s == OrderStatusPending && now.Sub(createdAt) > staleAfter {
		return OrderStatusExpired
	}
	return s
}

// PaymentType is how the order was captured.
type PaymentType string

const (
	PaymentTypeWeb      PaymentType = "web"
	PaymentTypeApp      PaymentType = "app"
	PaymentTypeTerminal PaymentType = "terminal"
	PaymentTypeSystem   PaymentType = "system"
)

// ParsePaymentType validates a raw payment type string.
func ParsePaymentType(raw string) (PaymentType, error) {
	switch t := PaymentType(raw); t {
	case PaymentTypeWeb, PaymentTypeApp, PaymentTypeTerminal, PaymentTypeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("unknown payment type %q", raw)
	}
}
