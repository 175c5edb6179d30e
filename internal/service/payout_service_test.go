package service

import (
	"context"
	"testing"
	"time"

	"settlement-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCreatePayoutRejectsInvertedWindow(t *testing.T) {
	ps := &PayoutService{}

	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	from := to.Add(24 * time.Hour)

	_, err := ps.CreatePayout(context.Background(), 1, 1, from, to)
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSelectEligibleOrdersRejectsInvertedWindow(t *testing.T) {
	ps := &PayoutService{}

	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	from := to.Add(time.Hour)

	_, err := ps.SelectEligibleOrders(context.Background(), 1, from, to)
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLedgerDateOverrideRejectsEmptyDate(t *testing.T) {
	ls := &LedgerService{}

	err := ls.UpdateBurnDate(context.Background(), 1, time.Time{})
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)

	err = ls.UpdateTransferDate(context.Background(), 1, time.Time{})
	assert.ErrorAs(t, err, &ve)
}
