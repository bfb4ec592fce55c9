package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/lifecycle"
	"TalentHive/internal/logger"
	"TalentHive/internal/metrics"
	"TalentHive/internal/models"
	"TalentHive/internal/store"
)

// ContractService runs every contract transition as load, guard, mutate and
// compare-and-set save. A version conflict re-reads the contract and
// re-evaluates the guards up to retries times.
type ContractService struct {
	store           store.Store
	notifier        Notifier
	log             *logger.Logger
	retries         int
	defaultCurrency string
	now             func() time.Time
}

type ContractServiceConfig struct {
	WriteRetries    int
	DefaultCurrency string
}

func NewContractService(st store.Store, notifier Notifier, log *logger.Logger, cfg ContractServiceConfig) *ContractService {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.WriteRetries < 1 {
		cfg.WriteRetries = 1
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	return &ContractService{
		store:           st,
		notifier:        notifier,
		log:             log,
		retries:         cfg.WriteRetries,
		defaultCurrency: cfg.DefaultCurrency,
		now:             time.Now,
	}
}

// mutation applies one transition to a freshly loaded contract and returns
// the notifications to send once the write commits.
type mutation func(c *models.Contract, now time.Time) ([]Event, error)

func (s *ContractService) load(ctx context.Context, op string, id uuid.UUID) (*models.Contract, error) {
	c, err := s.store.GetContract(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound(op, "contract %s not found", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *ContractService) mutate(ctx context.Context, op string, id uuid.UUID, actor uint, fn mutation) (*models.Contract, error) {
	for attempt := 1; ; attempt++ {
		c, err := s.load(ctx, op, id)
		if err != nil {
			metrics.RecordTransition(op, string(apperr.KindOf(err)))
			return nil, err
		}
		expected := c.Version
		evts, err := fn(c, s.now())
		if err != nil {
			metrics.RecordTransition(op, string(apperr.KindOf(err)))
			return nil, err
		}
		err = s.store.SaveContract(ctx, c, expected)
		if err == nil {
			metrics.RecordTransition(op, "ok")
			s.log.Info("contract transition committed",
				"op", op, "contract_id", c.ID, "actor", actor, "status", c.Status, "version", c.Version)
			s.dispatch(ctx, evts)
			return c, nil
		}
		if !apperr.Is(err, apperr.KindConflict) {
			metrics.RecordTransition(op, string(apperr.KindOf(err)))
			return nil, err
		}
		metrics.RecordVersionConflict(op)
		if attempt >= s.retries {
			metrics.RecordTransition(op, string(apperr.KindConflict))
			s.log.Warn("contract write retries exhausted", "op", op, "contract_id", id, "attempts", attempt)
			return nil, err
		}
		s.log.Debug("contract version conflict, retrying", "op", op, "contract_id", id, "attempt", attempt)
	}
}

// dispatch sends notifications after commit. Failures are logged only.
func (s *ContractService) dispatch(ctx context.Context, evts []Event) {
	notify(ctx, s.notifier, s.log, evts)
}

func notify(ctx context.Context, n Notifier, log *logger.Logger, evts []Event) {
	if n == nil {
		return
	}
	for _, e := range evts {
		if err := n.Notify(ctx, e); err != nil {
			log.Warn("failed to deliver notification", "type", e.Type, "user_id", e.UserID, "error", err)
		}
	}
}

// CreateFromProposal builds a draft contract from an accepted proposal. Only
// the client of the proposal may create it.
func (s *ContractService) CreateFromProposal(ctx context.Context, callerID uint, in lifecycle.NewContractInput) (*models.Contract, error) {
	const op = "contract.create"
	if callerID != in.ClientID {
		metrics.RecordTransition(op, string(apperr.KindForbidden))
		return nil, apperr.Forbidden(op, "only the client can create a contract from a proposal")
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = s.defaultCurrency
	}
	c, err := lifecycle.NewContract(in, s.now())
	if err != nil {
		metrics.RecordTransition(op, string(apperr.KindOf(err)))
		return nil, err
	}
	if err := s.store.CreateContract(ctx, c); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			err = apperr.Conflict(op, "a contract already exists for proposal %d", in.ProposalID)
		}
		metrics.RecordTransition(op, string(apperr.KindOf(err)))
		return nil, err
	}
	metrics.RecordTransition(op, "ok")
	s.log.Info("contract created", "contract_id", c.ID, "proposal_id", c.ProposalID, "client_id", c.ClientID, "freelancer_id", c.FreelancerID)
	s.dispatch(ctx, []Event{contractEvent(c.FreelancerID, models.NotificationContractCreated, c,
		"New Contract", fmt.Sprintf("A contract for '%s' is ready for your signature.", c.Title))})
	return c, nil
}

// Get returns the contract when userID is one of its participants.
func (s *ContractService) Get(ctx context.Context, id uuid.UUID, userID uint) (*models.Contract, error) {
	const op = "contract.get"
	c, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if lifecycle.ResolveRole(c, userID) == lifecycle.RoleNone {
		return nil, apperr.Forbidden(op, "you are not a participant on this contract")
	}
	return c, nil
}

// List returns the contracts userID takes part in.
func (s *ContractService) List(ctx context.Context, userID uint, f store.ContractFilter) ([]models.Contract, error) {
	const op = "contract.list"
	switch f.Role {
	case "", lifecycle.RoleClient.String(), lifecycle.RoleFreelancer.String():
	default:
		return nil, apperr.Validation(op, "role must be client or freelancer")
	}
	f.UserID = userID
	return s.store.ListContracts(ctx, f)
}

func (s *ContractService) Sign(ctx context.Context, id uuid.UUID, userID uint, in lifecycle.SignInput) (*models.Contract, error) {
	return s.mutate(ctx, "contract.sign", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		_, activated, err := lifecycle.Sign(c, userID, in, now)
		if err != nil {
			return nil, err
		}
		if activated {
			msg := fmt.Sprintf("Both parties signed '%s'. The contract is now active.", c.Title)
			return []Event{
				contractEvent(c.ClientID, models.NotificationContractActivated, c, "Contract Active", msg),
				contractEvent(c.FreelancerID, models.NotificationContractActivated, c, "Contract Active", msg),
			}, nil
		}
		return []Event{contractEvent(lifecycle.Counterparty(c, userID), models.NotificationContractSigned, c,
			"Contract Signed", fmt.Sprintf("The other party signed '%s'. Your signature is pending.", c.Title))}, nil
	})
}

func (s *ContractService) StartMilestone(ctx context.Context, id, milestoneID uuid.UUID, userID uint) (*models.Contract, error) {
	return s.mutate(ctx, "milestone.start", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		m, err := lifecycle.StartMilestone(c, milestoneID, userID, now)
		if err != nil {
			return nil, err
		}
		return []Event{milestoneEvent(c.ClientID, models.NotificationMilestoneStarted, c, m,
			"Milestone Started", fmt.Sprintf("Work started on milestone '%s'.", m.Title))}, nil
	})
}

func (s *ContractService) SubmitMilestone(ctx context.Context, id, milestoneID uuid.UUID, userID uint, deliverables []lifecycle.DeliverableInput, notes string) (*models.Contract, error) {
	return s.mutate(ctx, "milestone.submit", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		m, err := lifecycle.SubmitMilestone(c, milestoneID, userID, deliverables, notes, now)
		if err != nil {
			return nil, err
		}
		return []Event{milestoneEvent(c.ClientID, models.NotificationMilestoneSubmitted, c, m,
			"Milestone Submitted", fmt.Sprintf("Milestone '%s' was submitted for your review.", m.Title))}, nil
	})
}

func (s *ContractService) ApproveMilestone(ctx context.Context, id, milestoneID uuid.UUID, userID uint, feedback string) (*models.Contract, error) {
	return s.mutate(ctx, "milestone.approve", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		m, err := lifecycle.ApproveMilestone(c, milestoneID, userID, feedback, now)
		if err != nil {
			return nil, err
		}
		return []Event{milestoneEvent(c.FreelancerID, models.NotificationMilestoneApproved, c, m,
			"Milestone Approved", fmt.Sprintf("Milestone '%s' was approved.", m.Title))}, nil
	})
}

func (s *ContractService) RejectMilestone(ctx context.Context, id, milestoneID uuid.UUID, userID uint, feedback string) (*models.Contract, error) {
	return s.mutate(ctx, "milestone.reject", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		m, err := lifecycle.RejectMilestone(c, milestoneID, userID, feedback, now)
		if err != nil {
			return nil, err
		}
		return []Event{milestoneEvent(c.FreelancerID, models.NotificationMilestoneRejected, c, m,
			"Revision Requested", fmt.Sprintf("Milestone '%s' needs changes: %s", m.Title, feedback))}, nil
	})
}

func (s *ContractService) ProposeAmendment(ctx context.Context, id uuid.UUID, userID uint, in lifecycle.ProposeInput) (*models.Contract, *models.Amendment, error) {
	var proposed models.Amendment
	c, err := s.mutate(ctx, "amendment.propose", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		a, err := lifecycle.ProposeAmendment(c, userID, in, now)
		if err != nil {
			return nil, err
		}
		proposed = *a
		e := contractEvent(lifecycle.Counterparty(c, userID), models.NotificationAmendmentProposed, c,
			"Amendment Proposed", fmt.Sprintf("A %s amendment was proposed on '%s'.", a.Type, c.Title))
		e.Data["amendment_id"] = a.ID.String()
		return []Event{e}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return c, &proposed, nil
}

func (s *ContractService) RespondAmendment(ctx context.Context, id, amendmentID uuid.UUID, userID uint, accept bool, notes string) (*models.Contract, error) {
	return s.mutate(ctx, "amendment.respond", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		a, completed, err := lifecycle.RespondAmendment(c, amendmentID, userID, accept, notes, now)
		if err != nil {
			return nil, err
		}
		title := "Amendment Rejected"
		if a.Status == models.AmendmentAccepted {
			title = "Amendment Accepted"
		}
		e := contractEvent(a.ProposedBy, models.NotificationAmendmentResponded, c,
			title, fmt.Sprintf("Your %s amendment was %s.", a.Type, a.Status))
		e.Data["amendment_id"] = a.ID.String()
		evts := []Event{e}
		if completed {
			evts = append(evts, completedEvents(c)...)
		}
		return evts, nil
	})
}

func (s *ContractService) Cancel(ctx context.Context, id uuid.UUID, userID uint, reason string) (*models.Contract, error) {
	return s.mutate(ctx, "contract.cancel", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		if _, err := lifecycle.Cancel(c, userID, reason, now); err != nil {
			return nil, err
		}
		return []Event{contractEvent(lifecycle.Counterparty(c, userID), models.NotificationContractCancelled, c,
			"Contract Cancelled", fmt.Sprintf("'%s' was cancelled: %s", c.Title, reason))}, nil
	})
}

func (s *ContractService) Dispute(ctx context.Context, id uuid.UUID, userID uint, in lifecycle.DisputeInput) (*models.Contract, error) {
	return s.mutate(ctx, "contract.dispute", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		a, err := lifecycle.Dispute(c, userID, in, now)
		if err != nil {
			return nil, err
		}
		e := contractEvent(lifecycle.Counterparty(c, userID), models.NotificationContractDisputed, c,
			"Contract Disputed", fmt.Sprintf("A dispute was raised on '%s': %s", c.Title, in.Reason))
		e.Data["amendment_id"] = a.ID.String()
		return []Event{e}, nil
	})
}

func (s *ContractService) Pause(ctx context.Context, id uuid.UUID, userID uint, reason string) (*models.Contract, error) {
	return s.mutate(ctx, "contract.pause", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		if err := lifecycle.Pause(c, userID, now); err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("'%s' was paused.", c.Title)
		if reason = strings.TrimSpace(reason); reason != "" {
			msg = fmt.Sprintf("'%s' was paused: %s", c.Title, reason)
		}
		return []Event{contractEvent(lifecycle.Counterparty(c, userID), models.NotificationContractPaused, c, "Contract Paused", msg)}, nil
	})
}

func (s *ContractService) Resume(ctx context.Context, id uuid.UUID, userID uint) (*models.Contract, error) {
	return s.mutate(ctx, "contract.resume", id, userID, func(c *models.Contract, now time.Time) ([]Event, error) {
		if err := lifecycle.Resume(c, userID); err != nil {
			return nil, err
		}
		return []Event{contractEvent(lifecycle.Counterparty(c, userID), models.NotificationContractResumed, c,
			"Contract Resumed", fmt.Sprintf("'%s' is active again.", c.Title))}, nil
	})
}
