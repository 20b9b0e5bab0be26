package controllers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/isaacoduh/paylinker-api/internal/pkg/database"
	"github.com/isaacoduh/paylinker-api/internal/pkg/earnings"
	"github.com/isaacoduh/paylinker-api/internal/pkg/usercontext"
)

// HandleGetDashboard returns the merchant's earnings overview: per-currency
// totals, recent transactions and per-link performance.
func HandleGetDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	}

	svc := earnings.NewServiceFromDB(database.GetDB())
	ctx := context.Background()

	totals, err := svc.TotalEarnings(ctx, userCtx.UserID)
	if err != nil {
		log.Printf("earnings aggregation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not compute earnings"})
	}

	period := c.Query("period", "last_week")
	recent, err := svc.RecentTransactions(ctx, userCtx.UserID, period)
	if err != nil {
		log.Printf("recent transaction query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load transactions"})
	}

	performance, err := svc.LinkPerformances(ctx, userCtx.UserID)
	if err != nil {
		log.Printf("link performance query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not compute link performance"})
	}

	return c.JSON(fiber.Map{
		"total_earnings": totals,
		"transactions":   recent,
		"performance":    performance,
	})
}
