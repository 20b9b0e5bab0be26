package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// PaymentLink is a merchant-owned shareable checkout target. The code is the
// public identity used on the payer-facing URL; the URL itself is derived and
// never independently mutable.
type PaymentLink struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount" validate:"required"`
	Currency       string          `gorm:"type:varchar(3);not null;index" json:"currency" validate:"required,len=3,alpha"`
	Description    string          `gorm:"type:text" json:"description"`
	ExpirationDate *time.Time      `gorm:"type:timestamp;default:null" json:"expiration_date,omitempty"`
	Code           string          `gorm:"type:varchar(32);not null;uniqueIndex:ux_payment_links_code" json:"code"`
	URL            string          `gorm:"type:varchar(255);not null" json:"url"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *PaymentLink) Validate() error {
	v := validator.New()

	if err := v.Struct(l); err != nil {
		return err
	}
	if !l.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	// Sub-cent amounts would be rounded by the decimal(12,2) column, so the
	// merchant must be rejected here rather than charged a different value.
	if _, err := l.AmountMinorUnits(); err != nil {
		return err
	}
	return nil
}

// Normalize canonicalizes client-supplied fields before validation.
func (l *PaymentLink) Normalize() {
	l.Currency = strings.ToUpper(strings.TrimSpace(l.Currency))
	l.Description = strings.TrimSpace(l.Description)
}

// IsExpired reports whether the link no longer accepts new transactions.
func (l *PaymentLink) IsExpired(now time.Time) bool {
	return l.ExpirationDate != nil && now.After(*l.ExpirationDate)
}

// AmountMinorUnits returns the amount in currency minor units (cents).
// Fractional cents are a validation error, never a silent truncation.
func (l *PaymentLink) AmountMinorUnits() (int64, error) {
	cents := l.Amount.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrFractionalMinorUnits
	}
	return cents.IntPart(), nil
}
