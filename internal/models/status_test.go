package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusRefund, true},
		{OrderStatusPaid, OrderStatusRefunded, true},
		{OrderStatusPaid, OrderStatusCorrection, true},

		// no backward or sideways moves
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusPending, OrderStatusRefund, false},
		{OrderStatusPending, OrderStatusRefunded, false},
		{OrderStatusPending, OrderStatusCorrection, false},
		{OrderStatusRefund, OrderStatusRefunded, false},
		{OrderStatusRefunded, OrderStatusPaid, false},
		{OrderStatusCorrection, OrderStatusPaid, false},

		// re-applying the same status is handled as a no-op above the graph
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestSettled(t *testing.T) {
	assert.True(t, OrderStatusPaid.Settled())
	assert.True(t, OrderStatusRefund.Settled())
	assert.True(t, OrderStatusRefunded.Settled())
	assert.True(t, OrderStatusCorrection.Settled())

	assert.False(t, OrderStatusPending.Settled())
	assert.False(t, OrderStatusCancelled.Settled())
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("paid")
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, s)

	_, err = ParseOrderStatus("settled")
	assert.Error(t, err)

	// the expired projection is never a stored status
	_, err = ParseOrderStatus("expired")
	assert.Error(t, err)
}

func TestParsePaymentType(t *testing.T) {
	pt, err := ParsePaymentType("terminal")
	assert.NoError(t, err)
	assert.Equal(t, PaymentTypeTerminal, pt)

	_, err = ParsePaymentType("cheque")
	assert.Error(t, err)
}

func TestEffectiveStatus(t *testing.T) {
	staleAfter := 15 * time.Minute
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// fresh pending order reads as pending
	got := EffectiveStatus(OrderStatusPending, created, created.Add(5*time.Minute), staleAfter)
	assert.Equal(t, OrderStatusPending, got)

	// exactly at the boundary it is still pending
	got = EffectiveStatus(OrderStatusPending, created, created.Add(staleAfter), staleAfter)
	assert.Equal(t, OrderStatusPending, got)

	// past the window it projects as expired
	got = EffectiveStatus(OrderStatusPending, created, created.Add(staleAfter+time.Second), staleAfter)
	assert.Equal(t, OrderStatusExpired, got)

	// terminal statuses never expire, no matter how old
	for _, s := range []OrderStatus{OrderStatusPaid, OrderStatusCancelled, OrderStatusRefund, OrderStatusRefunded, OrderStatusCorrection} {
		got = EffectiveStatus(s, created, created.Add(48*time.Hour), staleAfter)
		assert.Equal(t, s, got)
	}
}
