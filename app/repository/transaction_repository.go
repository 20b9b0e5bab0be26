package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/isaacoduh/paylinker-api/app/models"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create inserts a new transaction row
func (r *transactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

// GetByTransactionID retrieves a transaction by its external correlation id
func (r *transactionRepository) GetByTransactionID(transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("transaction_id = ?", transactionID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns transactions in creation order (oldest first), narrowed by the
// given filter. Currency filtering goes through the owning link.
func (r *transactionRepository) List(filter TransactionFilter) ([]models.Transaction, error) {
	var txs []models.Transaction
	q := r.db.Model(&models.Transaction{}).
		Joins("JOIN payment_links ON payment_links.id = transactions.payment_link_id")

	if filter.UserID != 0 {
		q = q.Where("payment_links.user_id = ?", filter.UserID)
	}
	if !filter.From.IsZero() {
		q = q.Where("transactions.created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("transactions.created_at <= ?", filter.To)
	}
	if filter.Currency != "" {
		q = q.Where("payment_links.currency = ?", filter.Currency)
	}
	if filter.Status != "" {
		q = q.Where("transactions.status = ?", filter.Status)
	}

	err := q.Order("transactions.id ASC").Find(&txs).Error
	return txs, err
}

// ListByUserID returns all of a user's transactions since the given time
func (r *transactionRepository) ListByUserID(userID uint, since time.Time) ([]models.Transaction, error) {
	return r.List(TransactionFilter{UserID: userID, From: since})
}

// MarkTerminal is the compare-and-swap write for the status state machine.
// The WHERE clause on the current status is the per-row mutual exclusion:
// of two racing deliveries exactly one matches a pending row, the other
// observes RowsAffected == 0.
func (r *transactionRepository) MarkTerminal(transactionID, status, paymentMethod string) (bool, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if paymentMethod != "" {
		updates["payment_method"] = paymentMethod
	}

	tx := r.db.Model(&models.Transaction{}).
		Where("transaction_id = ? AND status = ?", transactionID, models.TransactionStatusPending).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
