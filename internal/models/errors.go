package models

import (
	"errors"
	"fmt"
)

// ErrNoEligibleOrders is returned when a payout run selects nothing; a
// zero-order payout is never created.
var ErrNoEligibleOrders = errors.New("no eligible orders in window")

// ValidationError reports malformed or insufficient input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// InvalidTransitionError reports a status change outside the legal graph.
type InvalidTransitionError struct {
	OrderID int64
	From    OrderStatus
	To      OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: illegal transition %s -> %s", e.OrderID, e.From, e.To)
}

// AlreadyRecordedError reports a duplicate burn or transfer recording.
type AlreadyRecordedError struct {
	PayoutID  int64
	Milestone string
}

func (e *AlreadyRecordedError) Error() string {
	return fmt.Sprintf("payout %d: %s already recorded", e.PayoutID, e.Milestone)
}

// NotFoundError reports a reference to a nonexistent entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}
