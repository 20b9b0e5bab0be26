package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/isaacoduh/paylinker-api/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// PaymentLinkRepository defines the interface for payment-link database operations
type PaymentLinkRepository interface {
	Create(link *models.PaymentLink) error
	GetByID(id uint) (*models.PaymentLink, error)
	GetByIDForUser(id, userID uint) (*models.PaymentLink, error)
	GetByCode(code string) (*models.PaymentLink, error)
	GetByUserID(userID uint, currency string) ([]models.PaymentLink, error)
	Update(link *models.PaymentLink) error
	Delete(id uint) error
	CountTransactions(linkID uint) (int64, error)
}

// TransactionFilter narrows transaction listings. Zero values mean "no filter".
type TransactionFilter struct {
	UserID   uint
	From     time.Time
	To       time.Time
	Currency string
	Status   string
}

// TransactionRepository defines the interface for transaction database operations
type TransactionRepository interface {
	Create(tx *models.Transaction) error
	GetByTransactionID(transactionID string) (*models.Transaction, error)
	List(filter TransactionFilter) ([]models.Transaction, error)
	ListByUserID(userID uint, since time.Time) ([]models.Transaction, error)
	// MarkTerminal applies status (and optional payment method) to a pending
	// transaction via conditional update. It reports whether a row changed;
	// false on an existing row means the transaction was already terminal.
	MarkTerminal(transactionID, status, paymentMethod string) (bool, error)
}

// WebhookEventRepository defines the interface for webhook dedup bookkeeping
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	PaymentLink  PaymentLinkRepository
	Transaction  TransactionRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		PaymentLink:  NewPaymentLinkRepository(db),
		Transaction:  NewTransactionRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
