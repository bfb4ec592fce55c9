package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TalentHive/internal/handlers"
	"TalentHive/internal/middleware"
)

// Handlers bundles everything the API mounts.
type Handlers struct {
	Contracts     *handlers.ContractHandler
	Escrow        *handlers.EscrowHandler
	Notifications *handlers.NotificationHandler
	Files         *handlers.FileHandler
	Admin         *handlers.AdminHandler
}

type Options struct {
	JWTSecret string
	AdminKey  string
}

func SetupRoutes(app *fiber.App, h Handlers, opts Options) {
	api := app.Group("/api")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "TalentHive Contracts API v1.0",
			"status":  "running",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	protected := middleware.Protected(opts.JWTSecret)
	SetupContractRoutes(api, h, protected)
	SetupEscrowRoutes(api, h, protected)
	SetupNotificationRoutes(api, h, protected)
	SetupAdminRoutes(api, h, middleware.AdminKey(opts.AdminKey))
}
