package handlers

import (
	"github.com/gofiber/fiber/v2"

	"TalentHive/internal/logger"
	"TalentHive/internal/payments"
	"TalentHive/internal/services"
)

type EscrowHandler struct {
	payments *services.PaymentService
	log      *logger.Logger
}

func NewEscrowHandler(payments *services.PaymentService, log *logger.Logger) *EscrowHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &EscrowHandler{payments: payments, log: log}
}

type ConfirmEscrowRequest struct {
	Reference string `json:"reference" validate:"required"`
}

type RefundEscrowRequest struct {
	Reason string `json:"reason"`
}

// CreateEscrow opens a holding intent for an approved milestone. Calling it
// again while the milestone is funded returns the same transaction.
func (h *EscrowHandler) CreateEscrow(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	contractID, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	milestoneID, err := uuidParam(c, "milestoneId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	tx, err := h.payments.CreateEscrowIntent(c.UserContext(), contractID, milestoneID, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Escrow payment initialized",
		"transaction": tx,
	})
}

func (h *EscrowHandler) ConfirmEscrow(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	req := new(ConfirmEscrowRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	tx, err := h.payments.ConfirmEscrow(c.UserContext(), req.Reference, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Escrow status: " + string(tx.Status),
		"transaction": tx,
	})
}

func (h *EscrowHandler) ReleaseEscrow(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "transactionId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	tx, contract, err := h.payments.Release(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Funds released to freelancer",
		"transaction": tx,
		"contract":    contract,
	})
}

func (h *EscrowHandler) RefundEscrow(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "transactionId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	req := new(RefundEscrowRequest)
	if len(c.Body()) > 0 {
		if err := parseBody(c, req); err != nil {
			return respondError(c, h.log, err)
		}
	}
	tx, err := h.payments.Refund(c.UserContext(), id, userID, req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Escrow refunded to client",
		"transaction": tx,
	})
}

func (h *EscrowHandler) GetContractTransactions(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	txs, err := h.payments.ListTransactions(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"transactions": txs,
		"count":        len(txs),
	})
}

// PaystackWebhook is unauthenticated; the HMAC signature over the raw body
// is the credential.
func (h *EscrowHandler) PaystackWebhook(c *fiber.Ctx) error {
	err := h.payments.HandleWebhook(c.UserContext(), c.Body(), c.Get(payments.SignatureHeader))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
