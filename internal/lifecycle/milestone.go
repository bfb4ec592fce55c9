package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// DeliverableInput is one piece of work attached on submit.
type DeliverableInput struct {
	Title        string
	Description  string
	FileURL      string
	FilePublicID string
	FileName     string
}

func findMilestone(op string, c *models.Contract, id uuid.UUID) (*models.Milestone, error) {
	m := c.Milestone(id)
	if m == nil {
		return nil, apperr.NotFound(op, "milestone %s not found on this contract", id)
	}
	return m, nil
}

// StartMilestone marks a pending milestone as in progress.
func StartMilestone(c *models.Contract, milestoneID uuid.UUID, userID uint, now time.Time) (*models.Milestone, error) {
	const op = "milestone.start"
	m, err := findMilestone(op, c, milestoneID)
	if err != nil {
		return nil, err
	}
	if err := requireFreelancer(op, c, userID); err != nil {
		return nil, err
	}
	if err := requireActive(op, c); err != nil {
		return nil, err
	}
	next, ok := NextMilestoneStatus(m.Status, ActionStart)
	if !ok {
		return nil, apperr.InvalidTransition(op, "milestone cannot be started from status %s", m.Status)
	}
	now = now.UTC()
	m.Status = next
	m.StartedAt = &now
	return m, nil
}

// SubmitMilestone attaches deliverables and hands the milestone to the client
// for review. Resubmission after a rejection keeps the earlier deliverables.
func SubmitMilestone(c *models.Contract, milestoneID uuid.UUID, userID uint, deliverables []DeliverableInput, notes string, now time.Time) (*models.Milestone, error) {
	const op = "milestone.submit"
	m, err := findMilestone(op, c, milestoneID)
	if err != nil {
		return nil, err
	}
	if err := requireFreelancer(op, c, userID); err != nil {
		return nil, err
	}
	if err := requireActive(op, c); err != nil {
		return nil, err
	}
	next, ok := NextMilestoneStatus(m.Status, ActionSubmit)
	if !ok {
		return nil, apperr.InvalidTransition(op, "milestone not in a submittable state: %s", m.Status)
	}
	for i, d := range deliverables {
		if strings.TrimSpace(d.Title) == "" {
			return nil, apperr.Validation(op, "deliverable %d is missing a title", i+1)
		}
	}

	now = now.UTC()
	for _, d := range deliverables {
		m.Deliverables = append(m.Deliverables, models.Deliverable{
			Title:        strings.TrimSpace(d.Title),
			Description:  d.Description,
			FileURL:      d.FileURL,
			FilePublicID: d.FilePublicID,
			FileName:     d.FileName,
			Status:       models.DeliverableSubmitted,
			SubmittedAt:  now,
		})
	}
	m.Status = next
	m.SubmittedAt = &now
	m.FreelancerNotes = notes
	m.SubmissionCount++
	return m, nil
}

// ApproveMilestone accepts the submitted work.
func ApproveMilestone(c *models.Contract, milestoneID uuid.UUID, userID uint, feedback string, now time.Time) (*models.Milestone, error) {
	return review(c, milestoneID, userID, feedback, ActionApprove, now)
}

// RejectMilestone sends the submitted work back to the freelancer.
func RejectMilestone(c *models.Contract, milestoneID uuid.UUID, userID uint, feedback string, now time.Time) (*models.Milestone, error) {
	return review(c, milestoneID, userID, feedback, ActionReject, now)
}

func review(c *models.Contract, milestoneID uuid.UUID, userID uint, feedback string, action Action, now time.Time) (*models.Milestone, error) {
	op := "milestone." + string(action)
	m, err := findMilestone(op, c, milestoneID)
	if err != nil {
		return nil, err
	}
	if err := requireClient(op, c, userID); err != nil {
		return nil, err
	}
	if err := requireActive(op, c); err != nil {
		return nil, err
	}
	next, ok := NextMilestoneStatus(m.Status, action)
	if !ok {
		return nil, apperr.InvalidTransition(op, "milestone must be submitted to %s, current status: %s", action, m.Status)
	}

	now = now.UTC()
	deliverable := models.DeliverableApproved
	if action == ActionReject {
		deliverable = models.DeliverableRejected
		m.RejectedAt = &now
	} else {
		m.ApprovedAt = &now
	}
	for i := range m.Deliverables {
		if m.Deliverables[i].Status != models.DeliverableSubmitted {
			continue
		}
		m.Deliverables[i].Status = deliverable
		if action == ActionReject {
			m.Deliverables[i].Feedback = feedback
		}
	}
	m.Status = next
	m.ClientFeedback = feedback
	return m, nil
}

// MarkPaid moves an approved milestone to paid after a confirmed release and
// then re-evaluates completion.
func MarkPaid(c *models.Contract, milestoneID uuid.UUID, now time.Time) (completed bool, err error) {
	const op = "milestone.pay"
	m, err := findMilestone(op, c, milestoneID)
	if err != nil {
		return false, err
	}
	next, ok := NextMilestoneStatus(m.Status, ActionPay)
	if !ok {
		return false, apperr.InvalidTransition(op, "milestone must be approved to be paid, current status: %s", m.Status)
	}
	now = now.UTC()
	m.Status = next
	m.PaidAt = &now
	return CheckCompletion(c, now), nil
}

// CheckCompletion completes an active contract whose milestones are all paid.
// A contract with no milestones never completes.
func CheckCompletion(c *models.Contract, now time.Time) bool {
	if len(c.Milestones) == 0 {
		return false
	}
	for _, m := range c.Milestones {
		if m.Status != models.MilestonePaid {
			return false
		}
	}
	next, ok := NextContractStatus(c.Status, ActionComplete)
	if !ok {
		return false
	}
	now = now.UTC()
	c.Status = next
	c.CompletedAt = &now
	return true
}
