package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/lifecycle"
	"TalentHive/internal/locks"
	"TalentHive/internal/logger"
	"TalentHive/internal/metrics"
	"TalentHive/internal/models"
	"TalentHive/internal/payments"
	"TalentHive/internal/store"
)

type PaymentConfig struct {
	CommissionBPS   int64
	MinEscrowAmount int64
	EscrowHoldDays  int
	ReconcileAfter  time.Duration
	WriteRetries    int
	LockTTL         time.Duration
	WebhookSecret   string
}

// PaymentService moves milestone money through the processor. Processor
// calls happen before any local write, so a processor error leaves every
// record as it was.
type PaymentService struct {
	store     store.Store
	processor payments.Processor
	locks     locks.Locker
	notifier  Notifier
	log       *logger.Logger
	cfg       PaymentConfig
	now       func() time.Time
}

func NewPaymentService(st store.Store, processor payments.Processor, locker locks.Locker, notifier Notifier, log *logger.Logger, cfg PaymentConfig) *PaymentService {
	if log == nil {
		log = logger.Nop()
	}
	if locker == nil {
		locker = locks.NewLocalLocker()
	}
	if cfg.WriteRetries < 1 {
		cfg.WriteRetries = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &PaymentService{
		store:     st,
		processor: processor,
		locks:     locker,
		notifier:  notifier,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ReconcileResult summarises one reconciliation pass.
type ReconcileResult struct {
	Checked int `json:"checked"`
	Held    int `json:"held"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
	Errors  int `json:"errors"`
}

func (s *PaymentService) withLock(ctx context.Context, op, key string, fn func() error) error {
	release, ok, err := s.locks.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, op, fmt.Errorf("failed to acquire lock %s: %w", key, err))
	}
	if !ok {
		return apperr.Conflict(op, "another request is already processing this payment, try again shortly")
	}
	defer release()
	return fn()
}

func (s *PaymentService) loadContract(ctx context.Context, op string, id uuid.UUID) (*models.Contract, error) {
	c, err := s.store.GetContract(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound(op, "contract %s not found", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *PaymentService) loadTransaction(ctx context.Context, op string, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound(op, "transaction %s not found", id)
		}
		return nil, err
	}
	return tx, nil
}

func (s *PaymentService) processorFailed(op string, err error, kv ...any) error {
	kv = append(kv, "op", op, "transient", payments.IsTransient(err), "error", err)
	s.log.Error("payment processor call failed", kv...)
	appErr := payments.ToAppError(op, err)
	metrics.RecordTransition(op, string(apperr.KindOf(appErr)))
	return appErr
}

func requireClient(op string, c *models.Contract, userID uint) error {
	if lifecycle.ResolveRole(c, userID) != lifecycle.RoleClient {
		return apperr.Forbidden(op, "you are not the client on this contract")
	}
	return nil
}

func requireActive(op string, c *models.Contract) error {
	if c.Status != models.ContractActive {
		return apperr.ContractNotActive(op, "contract is not active, current status: %s", c.Status)
	}
	return nil
}

// EscrowReference is the processor idempotency reference of the attempt-th
// escrow transaction of a milestone.
func EscrowReference(milestoneID uuid.UUID, attempt int64) string {
	return fmt.Sprintf("esc_%s_%d", strings.ReplaceAll(milestoneID.String(), "-", ""), attempt)
}

// CreateEscrowIntent opens a holding intent for an approved milestone. While
// the milestone has an active transaction that transaction is returned and
// the processor is not called again.
func (s *PaymentService) CreateEscrowIntent(ctx context.Context, contractID, milestoneID uuid.UUID, userID uint) (*models.Transaction, error) {
	const op = "escrow.create"
	c, err := s.loadContract(ctx, op, contractID)
	if err != nil {
		return nil, err
	}
	if err := requireClient(op, c, userID); err != nil {
		return nil, err
	}
	if err := requireActive(op, c); err != nil {
		return nil, err
	}
	m := c.Milestone(milestoneID)
	if m == nil {
		return nil, apperr.NotFound(op, "milestone %s not found on this contract", milestoneID)
	}

	var out *models.Transaction
	err = s.withLock(ctx, op, "escrow:milestone:"+milestoneID.String(), func() error {
		existing, err := s.store.FindActiveTransaction(ctx, milestoneID)
		switch {
		case err == nil && existing.Status != models.TransactionPending:
			out = existing
			return nil
		case err == nil:
			// A pending row is an attempt whose intent was never recorded.
			if err := s.closeAttempt(ctx, existing, lifecycle.ActionCancel, "superseded by a new escrow attempt"); err != nil {
				return err
			}
		case !apperr.Is(err, apperr.KindNotFound):
			return err
		}
		if m.Status != models.MilestoneApproved {
			return apperr.InvalidTransition(op, "milestone must be approved before funding escrow, current status: %s", m.Status)
		}
		if m.Amount < s.cfg.MinEscrowAmount {
			return apperr.Validation(op, "escrow amount %s is below the minimum of %s",
				formatMinor(m.Amount, c.Currency), formatMinor(s.cfg.MinEscrowAmount, c.Currency))
		}
		breakdown, err := lifecycle.ComputeBreakdown(m.Amount, s.cfg.CommissionBPS)
		if err != nil {
			return err
		}
		client, err := s.store.GetUser(ctx, c.ClientID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		if client == nil || client.Email == "" {
			return apperr.Validation(op, "client email is required to fund escrow")
		}
		count, err := s.store.CountTransactions(ctx, milestoneID)
		if err != nil {
			return err
		}
		reference := EscrowReference(milestoneID, count+1)

		// The row is written before the processor sees the reference, so a
		// reference is never offered to the processor twice.
		tx := &models.Transaction{
			ID:                 uuid.New(),
			ContractID:         c.ID,
			MilestoneID:        m.ID,
			ClientID:           c.ClientID,
			FreelancerID:       c.FreelancerID,
			Amount:             breakdown.Amount,
			PlatformCommission: breakdown.PlatformCommission,
			FreelancerAmount:   breakdown.FreelancerAmount,
			Currency:           c.Currency,
			Status:             models.TransactionPending,
			Reference:          reference,
			Version:            1,
		}
		if err := s.store.CreateTransaction(ctx, tx); err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				if existing, findErr := s.store.FindActiveTransaction(ctx, milestoneID); findErr == nil &&
					existing.Status != models.TransactionPending {
					out = existing
					return nil
				}
			}
			return err
		}

		intent, err := s.processor.CreateIntent(ctx, payments.IntentRequest{
			Amount:    breakdown.Amount,
			Currency:  c.Currency,
			Reference: reference,
			Email:     client.Email,
			Metadata: map[string]string{
				"contract_id":  c.ID.String(),
				"milestone_id": m.ID.String(),
			},
		})
		if err != nil {
			if closeErr := s.closeAttempt(ctx, tx, lifecycle.ActionFail, apperr.MessageOf(err)); closeErr != nil {
				s.log.Warn("failed to close escrow attempt", "transaction_id", tx.ID, "reference", reference, "error", closeErr)
			}
			return s.processorFailed(op, err, "contract_id", c.ID, "milestone_id", m.ID, "reference", reference)
		}

		status, _ := lifecycle.NextTransactionStatus(tx.Status, lifecycle.ActionProcess)
		tx.Status = status
		tx.PaymentIntentID = intent.ID
		tx.ClientSecret = intent.ClientSecret
		tx.AuthorizationURL = intent.AuthorizationURL
		if err := s.store.UpdateTransaction(ctx, tx, tx.Version); err != nil {
			s.log.Warn("escrow intent created but not recorded", "transaction_id", tx.ID, "reference", reference, "error", err)
			return err
		}
		out = tx
		metrics.RecordTransition(op, "ok")
		s.log.Info("escrow intent created", "contract_id", c.ID, "milestone_id", m.ID, "transaction_id", tx.ID,
			"reference", reference, "amount", tx.Amount, "commission", tx.PlatformCommission)
		return nil
	})
	if err != nil {
		if !apperr.IsPaymentProcessor(err) {
			metrics.RecordTransition(op, string(apperr.KindOf(err)))
		}
		return nil, err
	}
	return out, nil
}

// ConfirmEscrow asks the processor for the charge outcome of the
// transaction with reference. userID 0 is the system. Confirming an already
// settled transaction returns it unchanged.
func (s *PaymentService) ConfirmEscrow(ctx context.Context, reference string, userID uint) (*models.Transaction, error) {
	const op = "escrow.confirm"
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperr.Validation(op, "reference is required")
	}
	tx, err := s.store.GetTransactionByReference(ctx, reference)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound(op, "transaction %s not found", reference)
		}
		return nil, err
	}
	if userID != 0 && userID != tx.ClientID && userID != tx.FreelancerID {
		return nil, apperr.Forbidden(op, "you are not a participant on this transaction")
	}
	if tx.Status != models.TransactionProcessing {
		return tx, nil
	}
	status, err := s.processor.Confirm(ctx, tx.PaymentIntentID)
	if err != nil {
		return nil, s.processorFailed(op, err, "transaction_id", tx.ID, "reference", tx.Reference)
	}
	return s.applyCharge(ctx, op, tx, status, "payment was declined by the processor")
}

// applyCharge records a processor charge outcome on a processing
// transaction. A concurrent settlement wins: the stored state is returned.
func (s *PaymentService) applyCharge(ctx context.Context, op string, tx *models.Transaction, status payments.ChargeStatus, failureReason string) (*models.Transaction, error) {
	var action lifecycle.Action
	switch status {
	case payments.ChargeSucceeded:
		action = lifecycle.ActionHold
	case payments.ChargeFailed:
		action = lifecycle.ActionFail
	default:
		return tx, nil
	}

	for attempt := 1; ; attempt++ {
		next, ok := lifecycle.NextTransactionStatus(tx.Status, action)
		if !ok {
			return tx, nil
		}
		expected := tx.Version
		now := s.now().UTC()
		tx.Status = next
		if action == lifecycle.ActionHold {
			release := now.AddDate(0, 0, s.cfg.EscrowHoldDays)
			tx.HeldAt = &now
			tx.EscrowReleaseDate = &release
		} else {
			tx.FailedAt = &now
			tx.FailureReason = failureReason
		}
		err := s.store.UpdateTransaction(ctx, tx, expected)
		if err == nil {
			break
		}
		if !apperr.Is(err, apperr.KindConflict) || attempt >= s.cfg.WriteRetries {
			metrics.RecordTransition(op, string(apperr.KindOf(err)))
			return nil, err
		}
		metrics.RecordVersionConflict(op)
		if tx, err = s.loadTransaction(ctx, op, tx.ID); err != nil {
			return nil, err
		}
	}

	metrics.RecordTransition(op, "ok")
	if tx.Status == models.TransactionHeldInEscrow {
		metrics.RecordEscrowMovement(tx.Currency, "held", tx.Amount)
		s.log.Info("escrow funded", "transaction_id", tx.ID, "reference", tx.Reference, "amount", tx.Amount)
		msg := fmt.Sprintf("%s is now held in escrow for this milestone.", formatMinor(tx.Amount, tx.Currency))
		notify(ctx, s.notifier, s.log, []Event{
			transactionEvent(tx.ClientID, models.NotificationEscrowFunded, tx, "Escrow Funded", msg),
			transactionEvent(tx.FreelancerID, models.NotificationEscrowFunded, tx, "Escrow Funded", msg),
		})
	} else {
		s.log.Warn("escrow charge failed", "transaction_id", tx.ID, "reference", tx.Reference, "reason", tx.FailureReason)
		notify(ctx, s.notifier, s.log, []Event{
			transactionEvent(tx.ClientID, models.NotificationEscrowFailed, tx, "Escrow Payment Failed", tx.FailureReason),
		})
	}
	return tx, nil
}

// closeAttempt moves a pending escrow attempt to failed or cancelled so the
// next attempt on the milestone uses a fresh reference.
func (s *PaymentService) closeAttempt(ctx context.Context, tx *models.Transaction, a lifecycle.Action, reason string) error {
	const op = "escrow.closeAttempt"
	next, ok := lifecycle.NextTransactionStatus(tx.Status, a)
	if !ok {
		return apperr.InvalidTransition(op, "cannot %s a %s transaction", a, tx.Status)
	}
	tx.Status = next
	tx.FailureReason = reason
	if a == lifecycle.ActionFail {
		now := s.now().UTC()
		tx.FailedAt = &now
	}
	return s.store.UpdateTransaction(ctx, tx, tx.Version)
}

func (s *PaymentService) payoutAccount(ctx context.Context, op string, freelancerID uint, currency string) (string, error) {
	acct, err := s.store.DefaultBankAccount(ctx, freelancerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", apperr.Validation(op, "freelancer has no payout account on file")
		}
		return "", err
	}
	if !acct.PayoutReady(currency) {
		return "", apperr.Validation(op, "freelancer payout account is not verified for %s", currency)
	}
	return acct.RecipientCode, nil
}

func releaseGuards(op string, c *models.Contract, tx *models.Transaction, userID uint) error {
	if tx.Status != models.TransactionHeldInEscrow {
		return apperr.InvalidTransition(op, "transaction must be held in escrow to release, current status: %s", tx.Status)
	}
	if err := requireClient(op, c, userID); err != nil {
		return err
	}
	if err := requireActive(op, c); err != nil {
		return err
	}
	m := c.Milestone(tx.MilestoneID)
	if m == nil {
		return apperr.NotFound(op, "milestone %s not found on this contract", tx.MilestoneID)
	}
	if m.Status != models.MilestoneApproved {
		return apperr.InvalidTransition(op, "milestone must be approved to release payment, current status: %s", m.Status)
	}
	return nil
}

// Release pays the freelancer share of a held transaction and marks its
// milestone paid in one write. A transaction is released at most once.
func (s *PaymentService) Release(ctx context.Context, transactionID uuid.UUID, userID uint) (*models.Transaction, *models.Contract, error) {
	const op = "escrow.release"
	var (
		outTx *models.Transaction
		outC  *models.Contract
	)
	err := s.withLock(ctx, op, "escrow:tx:"+transactionID.String(), func() error {
		tx, err := s.loadTransaction(ctx, op, transactionID)
		if err != nil {
			return err
		}
		c, err := s.loadContract(ctx, op, tx.ContractID)
		if err != nil {
			return err
		}
		if err := releaseGuards(op, c, tx, userID); err != nil {
			return err
		}
		recipient, err := s.payoutAccount(ctx, op, c.FreelancerID, tx.Currency)
		if err != nil {
			return err
		}

		payoutID, err := s.processor.Release(ctx, recipient, tx.FreelancerAmount, tx.Currency, "rel_"+tx.Reference)
		if err != nil {
			return s.processorFailed(op, err, "transaction_id", tx.ID, "reference", tx.Reference)
		}

		var completed bool
		for attempt := 1; ; attempt++ {
			now := s.now().UTC()
			cv, tv := c.Version, tx.Version
			next, _ := lifecycle.NextTransactionStatus(tx.Status, lifecycle.ActionRelease)
			tx.Status = next
			tx.PayoutID = payoutID
			tx.ReleasedAt = &now
			completed, err = lifecycle.MarkPaid(c, tx.MilestoneID, now)
			if err != nil {
				return err
			}
			err = s.store.SaveRelease(ctx, c, cv, tx, tv)
			if err == nil {
				break
			}
			if !apperr.Is(err, apperr.KindConflict) || attempt >= s.cfg.WriteRetries {
				s.log.Error("payout sent but release was not recorded", "transaction_id", tx.ID, "payout_id", payoutID, "error", err)
				return err
			}
			metrics.RecordVersionConflict(op)
			if tx, err = s.loadTransaction(ctx, op, transactionID); err != nil {
				return err
			}
			if c, err = s.loadContract(ctx, op, tx.ContractID); err != nil {
				return err
			}
			if err := releaseGuards(op, c, tx, userID); err != nil {
				s.log.Error("payout sent but release guards no longer hold", "transaction_id", tx.ID, "payout_id", payoutID, "error", err)
				return err
			}
		}

		metrics.RecordTransition(op, "ok")
		metrics.RecordEscrowMovement(tx.Currency, "released", tx.FreelancerAmount)
		s.log.Info("escrow released", "transaction_id", tx.ID, "contract_id", c.ID, "milestone_id", tx.MilestoneID,
			"payout_id", payoutID, "amount", tx.FreelancerAmount, "completed", completed)

		m := c.Milestone(tx.MilestoneID)
		evts := []Event{milestoneEvent(c.FreelancerID, models.NotificationMilestonePaid, c, m, "Payment Released",
			fmt.Sprintf("%s was released for milestone '%s'.", formatMinor(tx.FreelancerAmount, tx.Currency), m.Title))}
		if completed {
			evts = append(evts, completedEvents(c)...)
		}
		notify(ctx, s.notifier, s.log, evts)
		outTx, outC = tx, c
		return nil
	})
	if err != nil {
		if !apperr.IsPaymentProcessor(err) {
			metrics.RecordTransition(op, string(apperr.KindOf(err)))
		}
		return nil, nil, err
	}
	return outTx, outC, nil
}

// Refund returns a held transaction to the client. The milestone keeps its
// status.
func (s *PaymentService) Refund(ctx context.Context, transactionID uuid.UUID, userID uint, reason string) (*models.Transaction, error) {
	const op = "escrow.refund"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "refund requested by client"
	}
	var out *models.Transaction
	err := s.withLock(ctx, op, "escrow:tx:"+transactionID.String(), func() error {
		tx, err := s.loadTransaction(ctx, op, transactionID)
		if err != nil {
			return err
		}
		if tx.Status != models.TransactionHeldInEscrow {
			return apperr.InvalidTransition(op, "transaction must be held in escrow to refund, current status: %s", tx.Status)
		}
		c, err := s.loadContract(ctx, op, tx.ContractID)
		if err != nil {
			return err
		}
		if err := requireClient(op, c, userID); err != nil {
			return err
		}

		refundID, err := s.processor.Refund(ctx, tx.PaymentIntentID, tx.Amount, reason)
		if err != nil {
			return s.processorFailed(op, err, "transaction_id", tx.ID, "reference", tx.Reference)
		}

		for attempt := 1; ; attempt++ {
			now := s.now().UTC()
			expected := tx.Version
			next, ok := lifecycle.NextTransactionStatus(tx.Status, lifecycle.ActionRefund)
			if !ok {
				return apperr.InvalidTransition(op, "transaction must be held in escrow to refund, current status: %s", tx.Status)
			}
			tx.Status = next
			tx.RefundID = refundID
			tx.RefundReason = reason
			tx.RefundedAt = &now
			err = s.store.UpdateTransaction(ctx, tx, expected)
			if err == nil {
				break
			}
			if !apperr.Is(err, apperr.KindConflict) || attempt >= s.cfg.WriteRetries {
				s.log.Error("refund sent but not recorded", "transaction_id", tx.ID, "refund_id", refundID, "error", err)
				return err
			}
			metrics.RecordVersionConflict(op)
			if tx, err = s.loadTransaction(ctx, op, transactionID); err != nil {
				return err
			}
		}

		metrics.RecordTransition(op, "ok")
		metrics.RecordEscrowMovement(tx.Currency, "refunded", tx.Amount)
		s.log.Info("escrow refunded", "transaction_id", tx.ID, "refund_id", refundID, "amount", tx.Amount)
		notify(ctx, s.notifier, s.log, []Event{transactionEvent(c.FreelancerID, models.NotificationEscrowRefunded, tx,
			"Escrow Refunded", fmt.Sprintf("%s held for a milestone was refunded to the client: %s", formatMinor(tx.Amount, tx.Currency), reason))})
		out = tx
		return nil
	})
	if err != nil {
		if !apperr.IsPaymentProcessor(err) {
			metrics.RecordTransition(op, string(apperr.KindOf(err)))
		}
		return nil, err
	}
	return out, nil
}

// Reconcile polls the processor for transactions stuck in processing longer
// than the reconcile window. It never moves money.
func (s *PaymentService) Reconcile(ctx context.Context) (ReconcileResult, error) {
	const op = "escrow.reconcile"
	var res ReconcileResult
	cutoff := s.now().Add(-s.cfg.ReconcileAfter)
	stale, err := s.store.ListStaleTransactions(ctx, models.TransactionProcessing, cutoff, 100)
	if err != nil {
		return res, err
	}
	for i := range stale {
		tx := &stale[i]
		res.Checked++
		status, err := s.processor.Confirm(ctx, tx.PaymentIntentID)
		if err != nil {
			res.Errors++
			s.log.Warn("reconcile confirm failed", "transaction_id", tx.ID, "transient", payments.IsTransient(err), "error", err)
			continue
		}
		updated, err := s.applyCharge(ctx, op, tx, status, "payment was not completed")
		if err != nil {
			res.Errors++
			s.log.Warn("reconcile update failed", "transaction_id", tx.ID, "error", err)
			continue
		}
		switch updated.Status {
		case models.TransactionHeldInEscrow:
			res.Held++
		case models.TransactionFailed:
			res.Failed++
		default:
			res.Pending++
		}
	}
	s.log.Info("reconcile finished", "checked", res.Checked, "held", res.Held, "failed", res.Failed, "errors", res.Errors)
	return res, nil
}

// HandleWebhook applies a signed Paystack charge event. Unknown references
// and already settled transactions are acknowledged without change.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	const op = "escrow.webhook"
	evt, err := payments.VerifyWebhook(s.cfg.WebhookSecret, body, signature)
	if err != nil {
		if errors.Is(err, payments.ErrMissingSignature) || errors.Is(err, payments.ErrInvalidSignature) {
			return apperr.Forbidden(op, "invalid webhook signature")
		}
		return apperr.Validation(op, "invalid webhook payload")
	}
	var status payments.ChargeStatus
	switch evt.Event {
	case payments.EventChargeSuccess:
		status = payments.ChargeSucceeded
	case payments.EventChargeFailed:
		status = payments.ChargeFailed
	default:
		s.log.Debug("ignoring webhook event", "event", evt.Event)
		return nil
	}
	tx, err := s.store.GetTransactionByReference(ctx, evt.Data.Reference)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.Warn("webhook for unknown reference", "reference", evt.Data.Reference)
			return nil
		}
		return err
	}
	if tx.Status != models.TransactionProcessing {
		return nil
	}
	reason := evt.Data.GatewayResponse
	if status == payments.ChargeSucceeded && (evt.Data.Amount != tx.Amount || !strings.EqualFold(evt.Data.Currency, tx.Currency)) {
		s.log.Error("webhook amount mismatch", "reference", tx.Reference, "want", tx.Amount, "got", evt.Data.Amount, "currency", evt.Data.Currency)
		status = payments.ChargeFailed
		reason = fmt.Sprintf("charged %s, expected %s", formatMinor(evt.Data.Amount, strings.ToUpper(evt.Data.Currency)), formatMinor(tx.Amount, tx.Currency))
	}
	if reason == "" {
		reason = "payment was declined by the processor"
	}
	_, err = s.applyCharge(ctx, op, tx, status, reason)
	return err
}

// ListTransactions returns every escrow transaction of a contract.
func (s *PaymentService) ListTransactions(ctx context.Context, contractID uuid.UUID, userID uint) ([]models.Transaction, error) {
	const op = "escrow.list"
	c, err := s.loadContract(ctx, op, contractID)
	if err != nil {
		return nil, err
	}
	if lifecycle.ResolveRole(c, userID) == lifecycle.RoleNone {
		return nil, apperr.Forbidden(op, "you are not a participant on this contract")
	}
	return s.store.ListTransactionsForContract(ctx, contractID)
}
