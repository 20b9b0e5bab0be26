package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/isaacoduh/paylinker-api/internal/pkg/env"
	"github.com/isaacoduh/paylinker-api/internal/pkg/gateway"
)

// parseUintParam reads a numeric route parameter, returning 0 when absent or
// not a number.
func parseUintParam(c *fiber.Ctx, name string) uint {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// parseDateQuery reads an RFC3339 or date-only query parameter.
func parseDateQuery(c *fiber.Ctx, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// gatewayFromEnv builds the configured payment gateway adapter.
func gatewayFromEnv() gateway.Adapter {
	return gateway.NewStripeAdapter(
		env.GetEnv("STRIPE_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		env.GetEnv("CLIENT_URL", "http://localhost:3000"),
	)
}
