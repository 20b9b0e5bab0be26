package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/isaacoduh/paylinker-api/app/models"
	"github.com/isaacoduh/paylinker-api/app/repository"
	"github.com/isaacoduh/paylinker-api/internal/pkg/cache"
	"github.com/isaacoduh/paylinker-api/internal/pkg/env"
	"github.com/isaacoduh/paylinker-api/internal/pkg/linkcode"
	"github.com/isaacoduh/paylinker-api/internal/pkg/usercontext"
)

// codeInsertRetries bounds regeneration attempts on a code uniqueness conflict.
const codeInsertRetries = 3

const linkCacheTTL = 5 * time.Minute

type paymentLinkCreateRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
	ExpirationDate *time.Time      `json:"expiration_date"`
}

type paymentLinkUpdateRequest struct {
	Amount         *decimal.Decimal `json:"amount"`
	Currency       *string          `json:"currency"`
	Description    *string          `json:"description"`
	ExpirationDate *time.Time       `json:"expiration_date"`
}

// HandleCreatePaymentLink creates a payment link for the authenticated merchant.
func HandleCreatePaymentLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	}

	var req paymentLinkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	link := &models.PaymentLink{
		UserID:         userCtx.UserID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Description:    req.Description,
		ExpirationDate: req.ExpirationDate,
	}
	link.Normalize()

	repo := repository.GetGlobalFactory().GetPaymentLinkRepository()
	var lastErr error
	for attempt := 0; attempt < codeInsertRetries; attempt++ {
		code, err := linkcode.Generate(linkcode.DefaultLength)
		if err != nil {
			log.Printf("link code generation failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not create payment link"})
		}
		link.Code = code
		link.URL = env.GetEnv("CLIENT_URL", "http://localhost:3000") + "/pay/" + code

		if err := link.Validate(); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
		}

		lastErr = repo.Create(link)
		if lastErr == nil {
			return c.Status(fiber.StatusCreated).JSON(link)
		}
		if !isDuplicateKeyError(lastErr) {
			break
		}
		// Unique-code collision: regenerate and retry instead of failing.
	}

	log.Printf("payment link insert failed: %v", lastErr)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not create payment link"})
}

// HandleGetPaymentLinkByCode serves the public payer-facing link lookup.
// This is the checkout page's hot path, so results are cached briefly.
func HandleGetPaymentLinkByCode(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	if code == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Link not found"})
	}

	if cached, err := cache.Get(linkCacheKey(code)); err == nil && cached != "" {
		var link models.PaymentLink
		if err := json.Unmarshal([]byte(cached), &link); err == nil {
			return c.JSON(&link)
		}
	}

	repo := repository.GetGlobalFactory().GetPaymentLinkRepository()
	link, err := repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Link not found"})
		}
		log.Printf("link lookup by code failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load payment link"})
	}

	if payload, err := json.Marshal(link); err == nil {
		if err := cache.Set(linkCacheKey(code), payload, linkCacheTTL); err != nil {
			log.Printf("failed to cache payment link %s: %v", code, err)
		}
	}

	return c.JSON(link)
}

// HandleListPaymentLinks lists the merchant's links in creation order, with
// an optional currency filter.
func HandleListPaymentLinks(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	}

	currency := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	repo := repository.GetGlobalFactory().GetPaymentLinkRepository()
	links, err := repo.GetByUserID(userCtx.UserID, currency)
	if err != nil {
		log.Printf("link listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not list payment links"})
	}

	return c.JSON(fiber.Map{"data": links})
}

// HandleGetPaymentLink returns one of the merchant's links by id. Links the
// merchant does not own are reported as missing, never as forbidden.
func HandleGetPaymentLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	}

	link, ok := loadOwnedLink(c, userCtx.UserID)
	if !ok {
		return nil
	}
	return c.JSON(link)
}

// HandleUpdatePaymentLink applies only the provided fields to an owned link.
// Code and URL are never client-mutable.
func HandleUpdatePaymentLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	}

	link, ok := loadOwnedLink(c, userCtx.UserID)
	if !ok {
		return nil
	}

	var req paymentLinkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	if req.Amount != nil {
		link.Amount = *req.Amount
	}
	if req.Currency != nil {
		link.Currency = *req.Currency
	}
	if req.Description != nil {
		link.Description = *req.Description
	}
	if req.ExpirationDate != nil {
		link.ExpirationDate = req.ExpirationDate
	}
	link.Normalize()

	if err := link.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetPaymentLinkRepository()
	if err := repo.Update(link); err != nil {
		log.Printf("link update failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not update payment link"})
	}

	invalidateLinkCache(link.Code)
	return c.JSON(link)
}

// HandleDeletePaymentLink deletes an owned link. Links with recorded
// transactions cannot be deleted; the ledger is append-only history.
func HandleDeletePaymentLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	}

	link, ok := loadOwnedLink(c, userCtx.UserID)
	if !ok {
		return nil
	}

	repo := repository.GetGlobalFactory().GetPaymentLinkRepository()
	count, err := repo.CountTransactions(link.ID)
	if err != nil {
		log.Printf("link transaction count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not delete payment link"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Link has recorded transactions and cannot be deleted"})
	}

	if err := repo.Delete(link.ID); err != nil {
		log.Printf("link delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not delete payment link"})
	}

	invalidateLinkCache(link.Code)
	return c.SendStatus(fiber.StatusNoContent)
}

// loadOwnedLink resolves the {id} route param to a link owned by userID,
// writing the error response itself when the link cannot be served.
func loadOwnedLink(c *fiber.Ctx, userID uint) (*models.PaymentLink, bool) {
	id := parseUintParam(c, "id")
	if id == 0 {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Link not found"})
		return nil, false
	}

	repo := repository.GetGlobalFactory().GetPaymentLinkRepository()
	link, err := repo.GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Link not found"})
			return nil, false
		}
		log.Printf("link lookup failed: %v", err)
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load payment link"})
		return nil, false
	}
	return link, true
}

func linkCacheKey(code string) string {
	return "payment_link:code:" + code
}

func invalidateLinkCache(code string) {
	if err := cache.Delete(linkCacheKey(code)); err != nil {
		log.Printf("failed to invalidate link cache for %s: %v", code, err)
	}
}

func isDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry")
}
