package routes

import (
	"github.com/gofiber/fiber/v2"
)

func SetupEscrowRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	payments := api.Group("/payments")

	// Paystack calls this without a JWT; the signature header authenticates it.
	payments.Post("/webhook/paystack", h.Escrow.PaystackWebhook)

	payments.Post("/confirm", protected, h.Escrow.ConfirmEscrow)
	payments.Post("/:transactionId/release", protected, h.Escrow.ReleaseEscrow)
	payments.Post("/:transactionId/refund", protected, h.Escrow.RefundEscrow)
}
