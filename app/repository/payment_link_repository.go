package repository

import (
	"gorm.io/gorm"

	"github.com/isaacoduh/paylinker-api/app/models"
)

// paymentLinkRepository implements the PaymentLinkRepository interface
type paymentLinkRepository struct {
	db *gorm.DB
}

// NewPaymentLinkRepository creates a new payment link repository instance
func NewPaymentLinkRepository(db *gorm.DB) PaymentLinkRepository {
	return &paymentLinkRepository{db: db}
}

// Create inserts a new payment link. A duplicate-key error on the code column
// bubbles up so the caller can regenerate and retry.
func (r *paymentLinkRepository) Create(link *models.PaymentLink) error {
	return r.db.Create(link).Error
}

// GetByID retrieves a payment link by its ID regardless of owner
func (r *paymentLinkRepository) GetByID(id uint) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.First(&link, id).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByIDForUser retrieves a payment link scoped to its owner. A non-owner
// lookup is indistinguishable from a missing link.
func (r *paymentLinkRepository) GetByIDForUser(id, userID uint) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByCode retrieves a payment link by its public code
func (r *paymentLinkRepository) GetByCode(code string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.Where("code = ?", code).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByUserID lists a user's payment links in creation order, optionally
// filtered by currency.
func (r *paymentLinkRepository) GetByUserID(userID uint, currency string) ([]models.PaymentLink, error) {
	var links []models.PaymentLink
	q := r.db.Where("user_id = ?", userID)
	if currency != "" {
		q = q.Where("currency = ?", currency)
	}
	err := q.Order("id ASC").Find(&links).Error
	return links, err
}

// Update saves changes to a payment link
func (r *paymentLinkRepository) Update(link *models.PaymentLink) error {
	return r.db.Save(link).Error
}

// Delete removes a payment link by ID
func (r *paymentLinkRepository) Delete(id uint) error {
	return r.db.Delete(&models.PaymentLink{}, id).Error
}

// CountTransactions counts the transactions recorded against a link
func (r *paymentLinkRepository) CountTransactions(linkID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).Where("payment_link_id = ?", linkID).Count(&count).Error
	return count, err
}
