package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/isaacoduh/paylinker-api/app/controllers"
	"github.com/isaacoduh/paylinker-api/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		// The gateway redelivers webhooks aggressively after failures;
		// rate-limiting it would turn one incident into a backlog.
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/payments/webhook"
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Welcome to Paylinker API",
		})
	})

	auth := api.Group("/auth")
	auth.Post("/", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)

	links := api.Group("/payment-links")
	links.Get("/code/:code", controllers.HandleGetPaymentLinkByCode)
	links.Post("/", middleware.AuthMiddleware(), controllers.HandleCreatePaymentLink)
	links.Get("/", middleware.AuthMiddleware(), controllers.HandleListPaymentLinks)
	links.Get("/:id", middleware.AuthMiddleware(), controllers.HandleGetPaymentLink)
	links.Put("/:id", middleware.AuthMiddleware(), controllers.HandleUpdatePaymentLink)
	links.Delete("/:id", middleware.AuthMiddleware(), controllers.HandleDeletePaymentLink)

	payments := api.Group("/payments")
	payments.Post("/create-transaction/:link_id", controllers.HandleCreateTransaction)
	payments.Get("/transactions", middleware.AuthMiddleware(), controllers.HandleListTransactions)
	payments.Get("/status/:transaction_id", controllers.HandleGetTransactionStatus)
	payments.Post("/webhook", controllers.HandleGatewayWebhook)

	dashboard := api.Group("/dashboard", middleware.AuthMiddleware())
	dashboard.Get("/", controllers.HandleGetDashboard)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
