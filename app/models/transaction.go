package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailure = "failure"
)

var (
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrFractionalMinorUnits = errors.New("amount has sub-cent precision")
	ErrUnknownStatus        = errors.New("unknown transaction status")
)

// Transaction tracks a single payment attempt against a PaymentLink through
// the pending -> {success, failure} state machine. Rows are never deleted and
// never leave a terminal state.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_transactions_transaction_id" json:"transaction_id"`
	PaymentLinkID uint      `gorm:"not null;index" json:"payment_link_id"`
	Status        string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	PaymentMethod string    `gorm:"type:varchar(64)" json:"payment_method,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewTransactionID generates the externally-facing opaque correlation id.
// UUIDs make cross-transaction collisions negligible.
func NewTransactionID() string {
	return "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsTerminal reports whether the transaction has reached a settled state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailure
}

// Transition applies a terminal state to an in-memory transaction. It returns
// whether a mutation occurred; transitions from terminal states are no-ops.
// The persistent equivalent is the ledger's compare-and-swap update, which
// enforces the same rule under concurrency.
func (t *Transaction) Transition(target, paymentMethod string) (bool, error) {
	switch target {
	case TransactionStatusSuccess, TransactionStatusFailure:
	default:
		return false, ErrUnknownStatus
	}

	if t.Status != TransactionStatusPending {
		return false, nil
	}

	t.Status = target
	if target == TransactionStatusSuccess && paymentMethod != "" {
		t.PaymentMethod = paymentMethod
	}
	t.UpdatedAt = time.Now()
	return true, nil
}

// ValidTransactionStatus reports whether s names a known status value.
func ValidTransactionStatus(s string) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailure:
		return true
	default:
		return false
	}
}
