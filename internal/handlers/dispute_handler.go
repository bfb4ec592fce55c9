package handlers

import (
	"github.com/gofiber/fiber/v2"

	"TalentHive/internal/lifecycle"
)

type RaiseDisputeRequest struct {
	Reason      string   `json:"reason" validate:"required"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence" validate:"dive,url"`
}

type CancelContractRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type PauseContractRequest struct {
	Reason string `json:"reason"`
}

// RaiseDispute flags a draft, active or paused contract. Resolution happens
// outside the engine.
func (h *ContractHandler) RaiseDispute(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	req := new(RaiseDisputeRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	contract, err := h.contracts.Dispute(c.UserContext(), id, userID, lifecycle.DisputeInput{
		Reason:      req.Reason,
		Description: req.Description,
		Evidence:    req.Evidence,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Dispute raised successfully. Our team will review it shortly.",
		"contract": contract,
	})
}

func (h *ContractHandler) CancelContract(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	req := new(CancelContractRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	contract, err := h.contracts.Cancel(c.UserContext(), id, userID, req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Contract cancelled",
		"contract": contract,
	})
}

func (h *ContractHandler) PauseContract(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	req := new(PauseContractRequest)
	if len(c.Body()) > 0 {
		if err := parseBody(c, req); err != nil {
			return respondError(c, h.log, err)
		}
	}
	contract, err := h.contracts.Pause(c.UserContext(), id, userID, req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Contract paused",
		"contract": contract,
	})
}

func (h *ContractHandler) ResumeContract(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	contract, err := h.contracts.Resume(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Contract resumed",
		"contract": contract,
	})
}
