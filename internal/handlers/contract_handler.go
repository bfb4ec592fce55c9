package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"TalentHive/internal/lifecycle"
	"TalentHive/internal/logger"
	"TalentHive/internal/models"
	"TalentHive/internal/services"
	"TalentHive/internal/store"
)

type ContractHandler struct {
	contracts *services.ContractService
	log       *logger.Logger
}

func NewContractHandler(contracts *services.ContractService, log *logger.Logger) *ContractHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ContractHandler{contracts: contracts, log: log}
}

type MilestoneRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount" validate:"gt=0"`
	DueDate     *time.Time `json:"due_date"`
}

type CreateContractRequest struct {
	ProjectID    uint                 `json:"project_id" validate:"required"`
	ProposalID   uint                 `json:"proposal_id" validate:"required"`
	FreelancerID uint                 `json:"freelancer_id" validate:"required"`
	Title        string               `json:"title" validate:"required,max=255"`
	Description  string               `json:"description"`
	TotalAmount  int64                `json:"total_amount" validate:"gt=0"`
	Currency     string               `json:"currency" validate:"omitempty,len=3"`
	StartDate    time.Time            `json:"start_date" validate:"required"`
	EndDate      time.Time            `json:"end_date" validate:"required"`
	Terms        models.ContractTerms `json:"terms"`
	Milestones   []MilestoneRequest   `json:"milestones" validate:"dive"`
}

type DeliverableRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	FileURL      string `json:"file_url" validate:"omitempty,url"`
	FilePublicID string `json:"file_public_id"`
	FileName     string `json:"file_name"`
}

type SubmitMilestoneRequest struct {
	Deliverables []DeliverableRequest `json:"deliverables" validate:"dive"`
	Notes        string               `json:"notes"`
}

type ReviewMilestoneRequest struct {
	Feedback string `json:"feedback"`
}

type ProposeAmendmentRequest struct {
	Type        models.AmendmentType `json:"type" validate:"required"`
	Description string               `json:"description" validate:"required"`
	Changes     json.RawMessage      `json:"changes" validate:"required"`
	Reason      string               `json:"reason"`
}

type RespondAmendmentRequest struct {
	Accept *bool  `json:"accept" validate:"required"`
	Notes  string `json:"notes"`
}

// CreateContract builds a draft contract from an accepted proposal. The
// caller becomes the client.
func (h *ContractHandler) CreateContract(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	req := new(CreateContractRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	in := lifecycle.NewContractInput{
		ProjectID:    req.ProjectID,
		ProposalID:   req.ProposalID,
		ClientID:     userID,
		FreelancerID: req.FreelancerID,
		Title:        req.Title,
		Description:  req.Description,
		TotalAmount:  req.TotalAmount,
		Currency:     req.Currency,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Terms:        req.Terms,
	}
	for _, m := range req.Milestones {
		in.Milestones = append(in.Milestones, lifecycle.MilestoneSpec{
			Title: m.Title, Description: m.Description, Amount: m.Amount, DueDate: m.DueDate,
		})
	}
	contract, err := h.contracts.CreateFromProposal(c.UserContext(), userID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Contract created successfully",
		"contract": contract,
	})
}

func (h *ContractHandler) GetContract(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	contract, err := h.contracts.Get(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"contract": contract})
}

// GetMyContracts lists the caller's contracts, optionally filtered by
// role and status.
func (h *ContractHandler) GetMyContracts(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	contracts, err := h.contracts.List(c.UserContext(), userID, store.ContractFilter{
		Role:   c.Query("role"),
		Status: models.ContractStatus(c.Query("status")),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"contracts": contracts,
		"count":     len(contracts),
	})
}

func (h *ContractHandler) SignContract(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	contract, err := h.contracts.Sign(c.UserContext(), id, userID, lifecycle.SignInput{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	msg := "Contract signed successfully"
	if contract.Status == models.ContractActive {
		msg = "Contract signed and activated"
	}
	return c.JSON(fiber.Map{
		"message":  msg,
		"contract": contract,
	})
}

type milestoneFunc func(userID uint, contractID, milestoneID uuid.UUID) (*models.Contract, error)

// milestoneAction resolves the caller and both path ids shared by every
// milestone endpoint.
func (h *ContractHandler) milestoneAction(c *fiber.Ctx, msg string, run milestoneFunc) error {
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
	contract, err := run(userID, contractID, milestoneID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":   msg,
		"contract":  contract,
		"milestone": contract.Milestone(milestoneID),
	})
}

func (h *ContractHandler) StartMilestone(c *fiber.Ctx) error {
	return h.milestoneAction(c, "Milestone started", func(userID uint, contractID, milestoneID uuid.UUID) (*models.Contract, error) {
		return h.contracts.StartMilestone(c.UserContext(), contractID, milestoneID, userID)
	})
}

func (h *ContractHandler) SubmitMilestone(c *fiber.Ctx) error {
	req := new(SubmitMilestoneRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	deliverables := make([]lifecycle.DeliverableInput, 0, len(req.Deliverables))
	for _, d := range req.Deliverables {
		deliverables = append(deliverables, lifecycle.DeliverableInput{
			Title:        d.Title,
			Description:  d.Description,
			FileURL:      d.FileURL,
			FilePublicID: d.FilePublicID,
			FileName:     d.FileName,
		})
	}
	return h.milestoneAction(c, "Milestone submitted for review", func(userID uint, contractID, milestoneID uuid.UUID) (*models.Contract, error) {
		return h.contracts.SubmitMilestone(c.UserContext(), contractID, milestoneID, userID, deliverables, req.Notes)
	})
}

func (h *ContractHandler) ApproveMilestone(c *fiber.Ctx) error {
	req := new(ReviewMilestoneRequest)
	if len(c.Body()) > 0 {
		if err := parseBody(c, req); err != nil {
			return respondError(c, h.log, err)
		}
	}
	return h.milestoneAction(c, "Milestone approved", func(userID uint, contractID, milestoneID uuid.UUID) (*models.Contract, error) {
		return h.contracts.ApproveMilestone(c.UserContext(), contractID, milestoneID, userID, req.Feedback)
	})
}

func (h *ContractHandler) RejectMilestone(c *fiber.Ctx) error {
	req := new(ReviewMilestoneRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	return h.milestoneAction(c, "Milestone sent back for revision", func(userID uint, contractID, milestoneID uuid.UUID) (*models.Contract, error) {
		return h.contracts.RejectMilestone(c.UserContext(), contractID, milestoneID, userID, req.Feedback)
	})
}

func (h *ContractHandler) ProposeAmendment(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	req := new(ProposeAmendmentRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	contract, amendment, err := h.contracts.ProposeAmendment(c.UserContext(), id, userID, lifecycle.ProposeInput{
		Type:        req.Type,
		Description: req.Description,
		Changes:     req.Changes,
		Reason:      req.Reason,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Amendment proposed",
		"contract":  contract,
		"amendment": amendment,
	})
}

func (h *ContractHandler) RespondAmendment(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	amendmentID, err := uuidParam(c, "amendmentId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	req := new(RespondAmendmentRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, h.log, err)
	}
	contract, err := h.contracts.RespondAmendment(c.UserContext(), id, amendmentID, userID, *req.Accept, req.Notes)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Amendment " + string(contract.Amendment(amendmentID).Status),
		"contract":  contract,
		"amendment": contract.Amendment(amendmentID),
	})
}
