package earnings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/isaacoduh/paylinker-api/app/models"
	"github.com/isaacoduh/paylinker-api/app/repository"
)

// Service derives earnings views by folding over settled transactions. Pure
// reads, recomputed on demand.
type Service struct {
	links repository.PaymentLinkRepository
	txs   repository.TransactionRepository
}

// NewService creates an earnings service from injected repositories.
func NewService(links repository.PaymentLinkRepository, txs repository.TransactionRepository) *Service {
	return &Service{links: links, txs: txs}
}

// NewServiceFromDB creates an earnings service backed by GORM repositories.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(repository.NewPaymentLinkRepository(db), repository.NewTransactionRepository(db))
}

// LinkPerformance summarizes one payment link's transaction history.
type LinkPerformance struct {
	LinkID                 uint            `json:"link_id"`
	Description            string          `json:"description"`
	TotalTransactions      int             `json:"total_transactions"`
	SuccessfulTransactions int             `json:"successful_transactions"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	Currency               string          `json:"currency"`
}

// periodWindows maps dashboard period names to lookback durations.
var periodWindows = map[string]time.Duration{
	"last_day":   24 * time.Hour,
	"last_week":  7 * 24 * time.Hour,
	"last_month": 30 * 24 * time.Hour,
	"last_year":  365 * 24 * time.Hour,
}

// TotalEarnings folds all successful transactions of a user's links into a
// per-currency sum. Pending and failed transactions contribute nothing.
func (s *Service) TotalEarnings(ctx context.Context, userID uint) (map[string]decimal.Decimal, error) {
	_ = ctx
	links, err := s.links.GetByUserID(userID, "")
	if err != nil {
		return nil, err
	}
	byID := linkIndex(links)

	txs, err := s.txs.List(repository.TransactionFilter{UserID: userID, Status: models.TransactionStatusSuccess})
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		link, ok := byID[tx.PaymentLinkID]
		if !ok {
			continue
		}
		totals[link.Currency] = totals[link.Currency].Add(link.Amount)
	}
	return totals, nil
}

// LinkPerformances computes per-link transaction counts and settled volume.
func (s *Service) LinkPerformances(ctx context.Context, userID uint) ([]LinkPerformance, error) {
	_ = ctx
	links, err := s.links.GetByUserID(userID, "")
	if err != nil {
		return nil, err
	}

	txs, err := s.txs.List(repository.TransactionFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	perLink := make(map[uint]*LinkPerformance, len(links))
	result := make([]LinkPerformance, 0, len(links))
	for _, link := range links {
		perLink[link.ID] = &LinkPerformance{
			LinkID:      link.ID,
			Description: link.Description,
			Currency:    link.Currency,
			TotalAmount: decimal.Zero,
		}
	}

	amounts := linkIndex(links)
	for _, tx := range txs {
		perf, ok := perLink[tx.PaymentLinkID]
		if !ok {
			continue
		}
		perf.TotalTransactions++
		if tx.Status == models.TransactionStatusSuccess {
			perf.SuccessfulTransactions++
			perf.TotalAmount = perf.TotalAmount.Add(amounts[tx.PaymentLinkID].Amount)
		}
	}

	for _, link := range links {
		result = append(result, *perLink[link.ID])
	}
	return result, nil
}

// RecentTransactions returns a user's transactions inside the named period.
// Unknown period names fall back to the last 30 days.
func (s *Service) RecentTransactions(ctx context.Context, userID uint, period string) ([]models.Transaction, error) {
	_ = ctx
	window, ok := periodWindows[period]
	if !ok {
		window = periodWindows["last_month"]
	}
	return s.txs.ListByUserID(userID, time.Now().Add(-window))
}

func linkIndex(links []models.PaymentLink) map[uint]models.PaymentLink {
	byID := make(map[uint]models.PaymentLink, len(links))
	for _, link := range links {
		byID[link.ID] = link
	}
	return byID
}
