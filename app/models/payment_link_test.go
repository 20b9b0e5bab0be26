package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validLink() *PaymentLink {
	return &PaymentLink{
		UserID:   1,
		Amount:   decimal.RequireFromString("50.00"),
		Currency: "USD",
		Code:     "a1B2c3D4e5",
		URL:      "http://localhost:3000/pay/a1B2c3D4e5",
	}
}

func TestPaymentLinkValidate(t *testing.T) {
	link := validLink()
	assert.NoError(t, link.Validate())

	link = validLink()
	link.Amount = decimal.Zero
	assert.ErrorIs(t, link.Validate(), ErrNonPositiveAmount)

	link = validLink()
	link.Amount = decimal.RequireFromString("-3.10")
	assert.ErrorIs(t, link.Validate(), ErrNonPositiveAmount)

	link = validLink()
	link.Currency = "USDT"
	assert.Error(t, link.Validate())
}

func TestPaymentLinkValidateRejectsSubCentAmounts(t *testing.T) {
	// A decimal(12,2) column would round 10.005 to 10.01 on insert, so the
	// amount has to be rejected before it reaches storage.
	link := validLink()
	link.Amount = decimal.RequireFromString("10.005")
	assert.ErrorIs(t, link.Validate(), ErrFractionalMinorUnits)

	link = validLink()
	link.Amount = decimal.RequireFromString("0.001")
	assert.ErrorIs(t, link.Validate(), ErrFractionalMinorUnits)

	link = validLink()
	link.Amount = decimal.RequireFromString("10.50")
	assert.NoError(t, link.Validate())
}

func TestPaymentLinkNormalize(t *testing.T) {
	link := validLink()
	link.Currency = " usd "
	link.Description = "  Consultation fee "
	link.Normalize()

	assert.Equal(t, "USD", link.Currency)
	assert.Equal(t, "Consultation fee", link.Description)
}

func TestPaymentLinkIsExpired(t *testing.T) {
	now := time.Now()

	link := validLink()
	assert.False(t, link.IsExpired(now), "link without expiration never expires")

	future := now.Add(24 * time.Hour)
	link.ExpirationDate = &future
	assert.False(t, link.IsExpired(now))

	past := now.Add(-time.Minute)
	link.ExpirationDate = &past
	assert.True(t, link.IsExpired(now))
}

func TestAmountMinorUnits(t *testing.T) {
	link := validLink()
	cents, err := link.AmountMinorUnits()
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), cents)

	link.Amount = decimal.RequireFromString("20.99")
	cents, err = link.AmountMinorUnits()
	assert.NoError(t, err)
	assert.Equal(t, int64(2099), cents)

	// Fractional cents must surface as an error, never truncate.
	link.Amount = decimal.RequireFromString("10.005")
	_, err = link.AmountMinorUnits()
	assert.True(t, errors.Is(err, ErrFractionalMinorUnits))
}
