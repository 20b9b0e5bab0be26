package controllers

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/isaacoduh/paylinker-api/app/models"
	"github.com/isaacoduh/paylinker-api/app/repository"
	"github.com/isaacoduh/paylinker-api/internal/pkg/database"
	"github.com/isaacoduh/paylinker-api/internal/pkg/gateway"
	"github.com/isaacoduh/paylinker-api/internal/pkg/ledger"
	"github.com/isaacoduh/paylinker-api/internal/pkg/usercontext"
)

// HandleCreateTransaction records a pending transaction for a link and opens
// a gateway checkout session for the payer.
func HandleCreateTransaction(c *fiber.Ctx) error {
	linkID := parseUintParam(c, "link_id")
	if linkID == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Payment link not found"})
	}

	svc := ledger.NewServiceFromDB(database.GetDB(), gatewayFromEnv())
	result, err := svc.CreatePending(context.Background(), linkID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrLinkNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Payment link not found or expired"})
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "gateway_unavailable", "message": "Payment gateway is unavailable, try again"})
		case errors.Is(err, gateway.ErrGatewayRejected):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "gateway_rejected", "message": "Payment gateway rejected the checkout"})
		default:
			log.Printf("transaction creation failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not create transaction"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": result.Transaction.TransactionID,
		"checkout_url":   result.CheckoutURL,
	})
}

// HandleListTransactions lists the merchant's transactions in creation order
// (oldest first), filtered by date range, currency and status.
func HandleListTransactions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_error", "message": "Invalid 'from' date"})
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_error", "message": "Invalid 'to' date"})
	}
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && !models.ValidTransactionStatus(status) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_error", "message": "Unknown transaction status"})
	}

	svc := ledger.NewServiceFromDB(database.GetDB(), gatewayFromEnv())
	txs, err := svc.List(context.Background(), repository.TransactionFilter{
		UserID:   userCtx.UserID,
		From:     from,
		To:       to,
		Currency: strings.ToUpper(strings.TrimSpace(c.Query("currency"))),
		Status:   status,
	})
	if err != nil {
		log.Printf("transaction listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not list transactions"})
	}

	return c.JSON(fiber.Map{"transactions": txs})
}

// HandleGetTransactionStatus returns a transaction by its external id.
func HandleGetTransactionStatus(c *fiber.Ctx) error {
	transactionID := strings.TrimSpace(c.Params("transaction_id"))

	svc := ledger.NewServiceFromDB(database.GetDB(), gatewayFromEnv())
	tx, err := svc.GetByTransactionID(context.Background(), transactionID)
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Transaction not found"})
		}
		log.Printf("transaction lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load transaction"})
	}

	return c.JSON(tx)
}
