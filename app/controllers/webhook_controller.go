package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/isaacoduh/paylinker-api/internal/pkg/database"
	"github.com/isaacoduh/paylinker-api/internal/pkg/gateway"
	"github.com/isaacoduh/paylinker-api/internal/pkg/reconcile"
)

const webhookTimeout = 15 * time.Second

// HandleGatewayWebhook receives asynchronous gateway events. Non-2xx answers
// trigger gateway redelivery, so they are reserved for signature/parse
// failures and storage errors, where a retry can actually help.
func HandleGatewayWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	engine := reconcile.NewEngineFromDB(database.GetDB(), gatewayFromEnv())
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	outcome, err := engine.Process(ctx, rawBody, signature)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		}
		if errors.Is(err, gateway.ErrMalformedPayload) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}
		log.Printf("webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}

	return c.JSON(fiber.Map{"status": "success", "outcome": string(outcome)})
}
