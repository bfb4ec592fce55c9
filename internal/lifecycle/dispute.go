package lifecycle

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// DisputeInput describes why a participant flags the contract.
type DisputeInput struct {
	Reason      string
	Description string
	Evidence    []string
}

type cancellationRecord struct {
	Action string                `json:"action"`
	Status models.ContractStatus `json:"status"`
}

type disputeRecord struct {
	Action      string   `json:"action"`
	Reason      string   `json:"reason"`
	Description string   `json:"description,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// Cancel ends a draft or active contract. The cancellation is recorded as an
// accepted scope_change amendment resolved by the caller.
func Cancel(c *models.Contract, userID uint, reason string, now time.Time) (*models.Amendment, error) {
	const op = "contract.cancel"
	if _, err := requireParticipant(op, c, userID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation(op, "a cancellation reason is required")
	}
	next, ok := NextContractStatus(c.Status, ActionCancel)
	if !ok {
		return nil, apperr.InvalidTransition(op, "contract cannot be cancelled from status %s", c.Status)
	}

	now = now.UTC()
	changes, _ := json.Marshal(cancellationRecord{Action: "cancel", Status: next})
	responder := userID
	a := appendRecord(c, models.Amendment{
		Type:          models.AmendmentScopeChange,
		Description:   "Contract cancelled",
		Changes:       datatypes.JSON(changes),
		Reason:        reason,
		ProposedBy:    userID,
		Status:        models.AmendmentAccepted,
		ProposedAt:    now,
		RespondedAt:   &now,
		RespondedBy:   &responder,
		ResponseNotes: "self-resolved cancellation",
	})
	c.Status = next
	c.CancelledAt = &now
	return a, nil
}

// Dispute flags the contract. Resolution happens outside this package; the
// pending amendment keeps the reason and evidence for whoever resolves it.
func Dispute(c *models.Contract, userID uint, in DisputeInput, now time.Time) (*models.Amendment, error) {
	const op = "contract.dispute"
	if _, err := requireParticipant(op, c, userID); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperr.Validation(op, "a dispute reason is required")
	}
	next, ok := NextContractStatus(c.Status, ActionDispute)
	if !ok {
		return nil, apperr.InvalidTransition(op, "contract cannot be disputed from status %s", c.Status)
	}

	now = now.UTC()
	changes, _ := json.Marshal(disputeRecord{
		Action:      "dispute",
		Reason:      reason,
		Description: strings.TrimSpace(in.Description),
		Evidence:    in.Evidence,
	})
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = "Contract disputed"
	}
	a := appendRecord(c, models.Amendment{
		Type:        models.AmendmentScopeChange,
		Description: description,
		Changes:     datatypes.JSON(changes),
		Reason:      reason,
		ProposedBy:  userID,
		Status:      models.AmendmentPending,
		ProposedAt:  now,
	})
	c.Status = next
	c.DisputedAt = &now
	return a, nil
}

// Pause suspends milestone work and releases on an active contract.
func Pause(c *models.Contract, userID uint, now time.Time) error {
	const op = "contract.pause"
	if _, err := requireParticipant(op, c, userID); err != nil {
		return err
	}
	next, ok := NextContractStatus(c.Status, ActionPause)
	if !ok {
		return apperr.InvalidTransition(op, "only an active contract can be paused, current status: %s", c.Status)
	}
	now = now.UTC()
	c.Status = next
	c.PausedAt = &now
	return nil
}

func Resume(c *models.Contract, userID uint) error {
	const op = "contract.resume"
	if _, err := requireParticipant(op, c, userID); err != nil {
		return err
	}
	next, ok := NextContractStatus(c.Status, ActionResume)
	if !ok {
		return apperr.InvalidTransition(op, "only a paused contract can be resumed, current status: %s", c.Status)
	}
	c.Status = next
	c.PausedAt = nil
	return nil
}

func appendRecord(c *models.Contract, a models.Amendment) *models.Amendment {
	a.ID = uuid.New()
	a.ContractID = c.ID
	a.Seq = len(c.Amendments) + 1
	c.Amendments = append(c.Amendments, a)
	return &c.Amendments[len(c.Amendments)-1]
}
