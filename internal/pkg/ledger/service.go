package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/isaacoduh/paylinker-api/app/models"
	"github.com/isaacoduh/paylinker-api/app/repository"
	"github.com/isaacoduh/paylinker-api/internal/pkg/gateway"
)

// checkoutTimeout bounds the gateway session call so a hung gateway cannot
// pin request handlers.
const checkoutTimeout = 20 * time.Second

var (
	// ErrLinkNotFound covers both a missing link and an expired one; the two
	// are indistinguishable to the payer.
	ErrLinkNotFound = errors.New("payment link not found or expired")
	// ErrTransactionNotFound means no ledger row matches the correlation id.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Service is the transaction ledger. Every status mutation in the system
// funnels through ApplyTransition; nothing else writes transaction status.
type Service struct {
	links   repository.PaymentLinkRepository
	txs     repository.TransactionRepository
	gateway gateway.Adapter
}

// NewService creates a ledger from injected repositories and a gateway adapter.
func NewService(links repository.PaymentLinkRepository, txs repository.TransactionRepository, gw gateway.Adapter) *Service {
	return &Service{links: links, txs: txs, gateway: gw}
}

// NewServiceFromDB creates a ledger backed by GORM repositories.
func NewServiceFromDB(db *gorm.DB, gw gateway.Adapter) *Service {
	return NewService(repository.NewPaymentLinkRepository(db), repository.NewTransactionRepository(db), gw)
}

// CheckoutResult is returned by CreatePending.
type CheckoutResult struct {
	Transaction *models.Transaction
	CheckoutURL string
}

// CreatePending records a pending transaction against a link and opens a
// gateway checkout session in the same logical operation. When session
// creation fails the pending row is marked failed rather than deleted, so it
// is neither orphaned nor silently lost.
func (s *Service) CreatePending(ctx context.Context, linkID uint) (*CheckoutResult, error) {
	link, err := s.links.GetByID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	if link.IsExpired(time.Now()) {
		return nil, ErrLinkNotFound
	}

	tx := &models.Transaction{
		TransactionID: models.NewTransactionID(),
		PaymentLinkID: link.ID,
		Status:        models.TransactionStatusPending,
	}
	if err := s.txs.Create(tx); err != nil {
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	checkoutURL, err := s.gateway.OpenCheckout(gwCtx, gateway.CheckoutParams{
		Amount:        link.Amount,
		Currency:      link.Currency,
		Description:   link.Description,
		CorrelationID: tx.TransactionID,
	})
	if err != nil {
		// The row stays on the ledger in a terminal state; a webhook that
		// somehow still arrives for it reconciles as a duplicate no-op.
		if _, markErr := s.txs.MarkTerminal(tx.TransactionID, models.TransactionStatusFailure, ""); markErr != nil {
			log.Printf("failed to mark transaction %s failed after gateway error: %v", tx.TransactionID, markErr)
		}
		return nil, err
	}

	return &CheckoutResult{Transaction: tx, CheckoutURL: checkoutURL}, nil
}

// GetByTransactionID looks up a transaction by its external correlation id.
func (s *Service) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	_ = ctx
	tx, err := s.txs.GetByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// List returns transactions in creation order, oldest first.
func (s *Service) List(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	_ = ctx
	return s.txs.List(filter)
}

// ApplyTransition moves a transaction from pending to the given terminal
// state via a compare-and-swap on the current status. It returns whether a
// mutation occurred; false on a known transaction means it was already
// terminal and the attempt is an idempotent no-op.
func (s *Service) ApplyTransition(ctx context.Context, transactionID, target, paymentMethod string) (bool, error) {
	_ = ctx
	if target != models.TransactionStatusSuccess && target != models.TransactionStatusFailure {
		return false, models.ErrUnknownStatus
	}
	if target != models.TransactionStatusSuccess {
		paymentMethod = ""
	}

	if _, err := s.txs.GetByTransactionID(transactionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTransactionNotFound
		}
		return false, err
	}

	return s.txs.MarkTerminal(transactionID, target, paymentMethod)
}
