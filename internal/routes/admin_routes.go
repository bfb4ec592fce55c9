package routes

import (
	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(api fiber.Router, h Handlers, adminOnly fiber.Handler) {
	admin := api.Group("/admin", adminOnly)

	admin.Post("/payments/reconcile", h.Admin.ReconcilePayments)
}
