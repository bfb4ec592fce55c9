package lifecycle

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// MilestoneChange replaces the milestone list. Entries with an ID update the
// existing milestone in place; entries without one are appended as pending.
type MilestoneChange struct {
	Milestones []MilestoneSpec `json:"milestones"`
}

type MilestoneSpec struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Amount      int64      `json:"amount"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type TimelineChange struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   time.Time  `json:"end_date"`
}

type AmountChange struct {
	TotalAmount int64 `json:"total_amount"`
}

// TermsChange merges every non-empty field into the current terms.
type TermsChange struct {
	Terms models.ContractTerms `json:"terms"`
}

type ScopeChange struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProposeInput is a request to change a live contract.
type ProposeInput struct {
	Type        models.AmendmentType
	Description string
	Changes     json.RawMessage
	Reason      string
}

// DecodeChanges parses raw against the payload schema of t.
func DecodeChanges(t models.AmendmentType, raw json.RawMessage) (any, error) {
	const op = "amendment.changes"
	var payload any
	switch t {
	case models.AmendmentMilestoneChange:
		payload = &MilestoneChange{}
	case models.AmendmentTimelineChange:
		payload = &TimelineChange{}
	case models.AmendmentAmountChange:
		payload = &AmountChange{}
	case models.AmendmentTermsChange:
		payload = &TermsChange{}
	case models.AmendmentScopeChange:
		payload = &ScopeChange{}
	default:
		return nil, apperr.Validation(op, "unknown amendment type: %s", t)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperr.Validation(op, "changes are required for %s", t)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, apperr.Validation(op, "invalid %s changes: %v", t, err)
	}
	if err := validatePayload(op, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func validatePayload(op string, payload any) error {
	switch p := payload.(type) {
	case *MilestoneChange:
		if len(p.Milestones) == 0 {
			return apperr.Validation(op, "milestone change must keep at least one milestone")
		}
		seen := make(map[uuid.UUID]bool, len(p.Milestones))
		for i, m := range p.Milestones {
			if strings.TrimSpace(m.Title) == "" {
				return apperr.Validation(op, "milestone %d is missing a title", i+1)
			}
			if m.Amount <= 0 {
				return apperr.Validation(op, "milestone %d amount must be positive", i+1)
			}
			if m.ID != nil {
				if seen[*m.ID] {
					return apperr.Validation(op, "milestone %s listed twice", *m.ID)
				}
				seen[*m.ID] = true
			}
		}
	case *TimelineChange:
		if p.EndDate.IsZero() {
			return apperr.Validation(op, "end_date is required")
		}
	case *AmountChange:
		if p.TotalAmount <= 0 {
			return apperr.Validation(op, "total_amount must be positive")
		}
	case *TermsChange:
		if p.Terms == (models.ContractTerms{}) {
			return apperr.Validation(op, "at least one term must be provided")
		}
	case *ScopeChange:
		if strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Description) == "" {
			return apperr.Validation(op, "title or description must be provided")
		}
	}
	return nil
}

// ProposeAmendment appends a pending amendment. Only one amendment of a
// given type may be pending at a time.
func ProposeAmendment(c *models.Contract, userID uint, in ProposeInput, now time.Time) (*models.Amendment, error) {
	const op = "amendment.propose"
	if _, err := requireParticipant(op, c, userID); err != nil {
		return nil, err
	}
	if err := requireActive(op, c); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation(op, "unknown amendment type: %s", in.Type)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation(op, "amendment description is required")
	}
	payload, err := DecodeChanges(in.Type, in.Changes)
	if err != nil {
		return nil, err
	}
	for _, a := range c.Amendments {
		if a.Type == in.Type && a.Status == models.AmendmentPending {
			return nil, apperr.InvalidTransition(op, "an amendment of type %s is already pending", in.Type)
		}
	}
	// Dry run on a copy so an amendment that could never apply is refused now.
	if err := applyChanges(c.Clone(), payload, now); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}

	c.Amendments = append(c.Amendments, models.Amendment{
		ID:          uuid.New(),
		ContractID:  c.ID,
		Seq:         len(c.Amendments) + 1,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Changes:     datatypes.JSON(normalized),
		Reason:      strings.TrimSpace(in.Reason),
		ProposedBy:  userID,
		Status:      models.AmendmentPending,
		ProposedAt:  now.UTC(),
	})
	return &c.Amendments[len(c.Amendments)-1], nil
}

// RespondAmendment lets the non-proposing party accept or reject a pending
// amendment. applyChanges validates a payload in full before it writes any
// field, so an accepted change lands whole or not at all.
func RespondAmendment(c *models.Contract, amendmentID uuid.UUID, userID uint, accept bool, notes string, now time.Time) (a *models.Amendment, completed bool, err error) {
	const op = "amendment.respond"
	a = c.Amendment(amendmentID)
	if a == nil {
		return nil, false, apperr.NotFound(op, "amendment %s not found on this contract", amendmentID)
	}
	if _, err := requireParticipant(op, c, userID); err != nil {
		return nil, false, err
	}
	if a.ProposedBy == userID {
		return nil, false, apperr.Forbidden(op, "you cannot respond to your own amendment")
	}
	action := ActionReject
	if accept {
		action = ActionAccept
	}
	next, ok := NextAmendmentStatus(a.Status, action)
	if !ok {
		return nil, false, apperr.AlreadyResponded(op, "amendment has already been %s", a.Status)
	}
	if err := requireActive(op, c); err != nil {
		return nil, false, err
	}

	now = now.UTC()
	if accept {
		payload, err := DecodeChanges(a.Type, json.RawMessage(a.Changes))
		if err != nil {
			return nil, false, err
		}
		if err := applyChanges(c, payload, now); err != nil {
			return nil, false, err
		}
		if a.Type == models.AmendmentMilestoneChange {
			completed = CheckCompletion(c, now)
		}
	}
	responder := userID
	a.Status = next
	a.RespondedAt = &now
	a.RespondedBy = &responder
	a.ResponseNotes = notes
	return a, completed, nil
}

func applyChanges(c *models.Contract, payload any, now time.Time) error {
	const op = "amendment.apply"
	switch p := payload.(type) {
	case *MilestoneChange:
		return applyMilestoneChange(op, c, p, now)
	case *TimelineChange:
		start := c.StartDate
		if p.StartDate != nil {
			start = *p.StartDate
		}
		if !p.EndDate.After(start) {
			return apperr.Validation(op, "end_date must be after start_date")
		}
		c.StartDate = start
		c.EndDate = p.EndDate
	case *AmountChange:
		c.TotalAmount = p.TotalAmount
	case *TermsChange:
		mergeTerms(&c.Terms, p.Terms)
	case *ScopeChange:
		if t := strings.TrimSpace(p.Title); t != "" {
			c.Title = t
		}
		if d := strings.TrimSpace(p.Description); d != "" {
			c.Description = d
		}
	default:
		return apperr.Validation(op, "unsupported amendment payload")
	}
	return nil
}

// lockedMilestone reports whether work on m has progressed too far for an
// amendment to alter or drop it.
func lockedMilestone(m models.Milestone) bool {
	switch m.Status {
	case models.MilestoneSubmitted, models.MilestoneApproved, models.MilestonePaid:
		return true
	}
	return false
}

func applyMilestoneChange(op string, c *models.Contract, p *MilestoneChange, now time.Time) error {
	kept := make(map[uuid.UUID]bool, len(p.Milestones))
	next := make([]models.Milestone, 0, len(p.Milestones))
	for i, in := range p.Milestones {
		if in.ID == nil {
			next = append(next, models.Milestone{
				ID:          uuid.New(),
				ContractID:  c.ID,
				Position:    i + 1,
				Title:       strings.TrimSpace(in.Title),
				Description: in.Description,
				Amount:      in.Amount,
				DueDate:     in.DueDate,
				Status:      models.MilestonePending,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			continue
		}
		existing := c.Milestone(*in.ID)
		if existing == nil {
			return apperr.Validation(op, "milestone %s not found on this contract", *in.ID)
		}
		m := *existing
		changed := m.Title != strings.TrimSpace(in.Title) || m.Description != in.Description ||
			m.Amount != in.Amount || !sameDate(m.DueDate, in.DueDate)
		if changed && lockedMilestone(m) {
			return apperr.Validation(op, "milestone %q is %s and cannot be modified", m.Title, m.Status)
		}
		m.Position = i + 1
		m.Title = strings.TrimSpace(in.Title)
		m.Description = in.Description
		m.Amount = in.Amount
		m.DueDate = in.DueDate
		kept[m.ID] = true
		next = append(next, m)
	}
	for _, m := range c.Milestones {
		if !kept[m.ID] && lockedMilestone(m) {
			return apperr.Validation(op, "milestone %q is %s and cannot be removed", m.Title, m.Status)
		}
	}
	c.Milestones = next
	return nil
}

func mergeTerms(dst *models.ContractTerms, src models.ContractTerms) {
	set := func(field *string, v string) {
		if strings.TrimSpace(v) != "" {
			*field = v
		}
	}
	set(&dst.PaymentTerms, src.PaymentTerms)
	set(&dst.CancellationPolicy, src.CancellationPolicy)
	set(&dst.IntellectualProperty, src.IntellectualProperty)
	set(&dst.Confidentiality, src.Confidentiality)
	set(&dst.DisputeResolution, src.DisputeResolution)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
