package handlers

import (
	"github.com/gofiber/fiber/v2"

	"TalentHive/internal/logger"
	"TalentHive/internal/services"
)

type AdminHandler struct {
	payments *services.PaymentService
	log      *logger.Logger
}

func NewAdminHandler(payments *services.PaymentService, log *logger.Logger) *AdminHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminHandler{payments: payments, log: log}
}

// ReconcilePayments polls the processor for escrow payments stuck in
// processing.
func (h *AdminHandler) ReconcilePayments(c *fiber.Ctx) error {
	res, err := h.payments.Reconcile(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Reconciliation complete",
		"result":  res,
	})
}
