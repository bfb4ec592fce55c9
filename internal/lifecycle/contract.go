package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// NewContractInput is the accepted proposal a contract is built from.
type NewContractInput struct {
	ProjectID    uint
	ProposalID   uint
	ClientID     uint
	FreelancerID uint
	Title        string
	Description  string
	TotalAmount  int64
	Currency     string
	StartDate    time.Time
	EndDate      time.Time
	Terms        models.ContractTerms
	Milestones   []MilestoneSpec
}

// NewContract builds a draft contract. With no milestones supplied a single
// milestone covering the whole amount and due at the end date is created;
// otherwise the milestone amounts must add up to the total.
func NewContract(in NewContractInput, now time.Time) (*models.Contract, error) {
	const op = "contract.create"
	switch {
	case in.ProjectID == 0 || in.ProposalID == 0:
		return nil, apperr.Validation(op, "project and proposal are required")
	case in.ClientID == 0 || in.FreelancerID == 0:
		return nil, apperr.Validation(op, "client and freelancer are required")
	case in.ClientID == in.FreelancerID:
		return nil, apperr.Validation(op, "client and freelancer must be different users")
	case strings.TrimSpace(in.Title) == "":
		return nil, apperr.Validation(op, "title is required")
	case in.TotalAmount <= 0:
		return nil, apperr.Validation(op, "total amount must be positive")
	case len(strings.TrimSpace(in.Currency)) != 3:
		return nil, apperr.Validation(op, "currency must be a three letter ISO code")
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return nil, apperr.Validation(op, "start and end dates are required")
	case !in.EndDate.After(in.StartDate):
		return nil, apperr.Validation(op, "end date must be after start date")
	}

	now = now.UTC()
	c := &models.Contract{
		ID:           uuid.New(),
		ProjectID:    in.ProjectID,
		ProposalID:   in.ProposalID,
		ClientID:     in.ClientID,
		FreelancerID: in.FreelancerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		TotalAmount:  in.TotalAmount,
		Currency:     strings.ToUpper(strings.TrimSpace(in.Currency)),
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       models.ContractDraft,
		Terms:        in.Terms,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	specs := in.Milestones
	if len(specs) == 0 {
		end := in.EndDate
		specs = []MilestoneSpec{{
			Title:       "Project completion",
			Description: "Full delivery of the agreed scope",
			Amount:      in.TotalAmount,
			DueDate:     &end,
		}}
	}
	var sum int64
	for i, s := range specs {
		if strings.TrimSpace(s.Title) == "" {
			return nil, apperr.Validation(op, "milestone %d is missing a title", i+1)
		}
		if s.Amount <= 0 {
			return nil, apperr.Validation(op, "milestone %d amount must be positive", i+1)
		}
		sum += s.Amount
		c.Milestones = append(c.Milestones, models.Milestone{
			ID:          uuid.New(),
			ContractID:  c.ID,
			Position:    i + 1,
			Title:       strings.TrimSpace(s.Title),
			Description: s.Description,
			Amount:      s.Amount,
			DueDate:     s.DueDate,
			Status:      models.MilestonePending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if sum != in.TotalAmount {
		// Checked at creation only; amendments may move the two apart.
		return nil, apperr.Validation(op, "milestone amounts add up to %d but the contract total is %d; they must match when the contract is created", sum, in.TotalAmount)
	}
	return c, nil
}
