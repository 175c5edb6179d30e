package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignedAmount(t *testing.T) {
	paid := &Order{Status: OrderStatusPaid, Total: 1000, Fees: 50}
	assert.Equal(t, int64(950), paid.SignedAmount())

	refunded := &Order{Status: OrderStatusRefunded, Total: 500}
	assert.Equal(t, int64(500), refunded.SignedAmount())

	refund := &Order{Status: OrderStatusRefund, Total: 500, Fees: 25}
	assert.Equal(t, int64(-475), refund.SignedAmount())

	correction := &Order{Status: OrderStatusCorrection, Total: 300}
	assert.Equal(t, int64(-300), correction.SignedAmount())
}

func TestPayoutTotal(t *testing.T) {
	orders := []Order{
		{Status: OrderStatusPaid, Total: 1000, Fees: 50},
		{Status: OrderStatusPaid, Total: 500},
		{Status: OrderStatusPaid, Total: 200},
		{Status: OrderStatusCorrection, Total: 300},
	}

	// (1000-50) + 500 + 200 - 300
	assert.Equal(t, int64(1350), PayoutTotal(orders))
}

func TestPayoutTotalEmpty(t *testing.T) {
	assert.Equal(t, int64(0), PayoutTotal(nil))
}
