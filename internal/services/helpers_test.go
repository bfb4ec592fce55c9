package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/lifecycle"
	"TalentHive/internal/locks"
	"TalentHive/internal/models"
	"TalentHive/internal/payments/paymentstest"
	"TalentHive/internal/store"
)

const (
	clientID     uint = 10
	freelancerID uint = 20
	outsiderID   uint = 99
)

type spyNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *spyNotifier) Notify(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *spyNotifier) types() []models.NotificationType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NotificationType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func (s *spyNotifier) has(t models.NotificationType, userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Type == t && e.UserID == userID {
			return true
		}
	}
	return false
}

// conflictStore fails the next n contract writes with a version conflict.
type conflictStore struct {
	*store.MemoryStore
	mu        sync.Mutex
	conflicts int
	saves     int
}

func (s *conflictStore) SaveContract(ctx context.Context, c *models.Contract, expectedVersion int) error {
	s.mu.Lock()
	s.saves++
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return apperr.Conflict("store.SaveContract", "contract was modified concurrently")
	}
	s.mu.Unlock()
	return s.MemoryStore.SaveContract(ctx, c, expectedVersion)
}

type fixture struct {
	store     *store.MemoryStore
	notifier  *spyNotifier
	processor *paymentstest.Processor
	contracts *ContractService
	payments  *PaymentService
}

// flakyStore fails the next transaction inserts and updates with an
// internal error before they reach the memory store.
type flakyStore struct {
	*store.MemoryStore
	mu          sync.Mutex
	failCreates int
	failUpdates int
}

func (s *flakyStore) fail(creates, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreates, s.failUpdates = creates, updates
}

func (s *flakyStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	s.mu.Lock()
	if s.failCreates > 0 {
		s.failCreates--
		s.mu.Unlock()
		return apperr.New(apperr.KindInternal, "store.CreateTransaction", "connection reset")
	}
	s.mu.Unlock()
	return s.MemoryStore.CreateTransaction(ctx, t)
}

func (s *flakyStore) UpdateTransaction(ctx context.Context, t *models.Transaction, expectedVersion int) error {
	s.mu.Lock()
	if s.failUpdates > 0 {
		s.failUpdates--
		s.mu.Unlock()
		return apperr.New(apperr.KindInternal, "store.UpdateTransaction", "connection reset")
	}
	s.mu.Unlock()
	return s.MemoryStore.UpdateTransaction(ctx, t, expectedVersion)
}

func seededStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.PutUser(models.User{ID: clientID, FullName: "Ada Client", Email: "client@example.com", Role: "client"})
	st.PutUser(models.User{ID: freelancerID, FullName: "Fred Lancer", Email: "freelancer@example.com", Role: "freelancer"})
	st.PutBankAccount(models.BankAccount{ID: 1, UserID: freelancerID, BankName: "Test Bank", AccountNumber: "0123456789", RecipientCode: "RCP_fred", IsDefault: true})
	return st
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := seededStore()
	return newFixtureWithStore(t, st, st)
}

func newFixtureWithStore(t *testing.T, mem *store.MemoryStore, st store.Store) *fixture {
	t.Helper()
	n := &spyNotifier{}
	p := paymentstest.New()
	return &fixture{
		store:     mem,
		notifier:  n,
		processor: p,
		contracts: NewContractService(st, n, nil, ContractServiceConfig{WriteRetries: 3, DefaultCurrency: "USD"}),
		payments: NewPaymentService(st, p, locks.NewLocalLocker(), n, nil, PaymentConfig{
			CommissionBPS:   1000,
			MinEscrowAmount: 100,
			EscrowHoldDays:  14,
			ReconcileAfter:  15 * time.Minute,
			WriteRetries:    3,
			LockTTL:         time.Minute,
			WebhookSecret:   "sk_test_webhook",
		}),
	}
}

var proposalSeq uint

func (f *fixture) draft(t *testing.T, amounts ...int64) *models.Contract {
	t.Helper()
	proposalSeq++
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	in := lifecycle.NewContractInput{
		ProjectID:    1,
		ProposalID:   proposalSeq,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Title:        "Marketing site",
		TotalAmount:  0,
		StartDate:    start,
		EndDate:      start.AddDate(0, 2, 0),
	}
	for i, a := range amounts {
		in.TotalAmount += a
		in.Milestones = append(in.Milestones, lifecycle.MilestoneSpec{Title: "Phase " + string(rune('A'+i)), Amount: a})
	}
	c, err := f.contracts.CreateFromProposal(context.Background(), clientID, in)
	if err != nil {
		t.Fatalf("CreateFromProposal: %v", err)
	}
	return c
}

func (f *fixture) active(t *testing.T, amounts ...int64) *models.Contract {
	t.Helper()
	ctx := context.Background()
	c := f.draft(t, amounts...)
	if _, err := f.contracts.Sign(ctx, c.ID, clientID, lifecycle.SignInput{IPAddress: "10.0.0.1"}); err != nil {
		t.Fatalf("client sign: %v", err)
	}
	c, err := f.contracts.Sign(ctx, c.ID, freelancerID, lifecycle.SignInput{IPAddress: "10.0.0.2"})
	if err != nil {
		t.Fatalf("freelancer sign: %v", err)
	}
	return c
}

func (f *fixture) approve(t *testing.T, c *models.Contract, milestoneID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.contracts.SubmitMilestone(ctx, c.ID, milestoneID, freelancerID,
		[]lifecycle.DeliverableInput{{Title: "Build", FileURL: "https://files.test/build.zip"}}, "done"); err != nil {
		t.Fatalf("SubmitMilestone: %v", err)
	}
	if _, err := f.contracts.ApproveMilestone(ctx, c.ID, milestoneID, clientID, "great"); err != nil {
		t.Fatalf("ApproveMilestone: %v", err)
	}
}

// funded returns a held transaction for the first milestone of a fresh
// active contract.
func (f *fixture) funded(t *testing.T, amounts ...int64) (*models.Contract, *models.Transaction) {
	t.Helper()
	ctx := context.Background()
	c := f.active(t, amounts...)
	m := c.Milestones[0]
	f.approve(t, c, m.ID)
	tx, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
	if err != nil {
		t.Fatalf("CreateEscrowIntent: %v", err)
	}
	tx, err = f.payments.ConfirmEscrow(ctx, tx.Reference, clientID)
	if err != nil {
		t.Fatalf("ConfirmEscrow: %v", err)
	}
	if tx.Status != models.TransactionHeldInEscrow {
		t.Fatalf("status: want=%s got=%s", models.TransactionHeldInEscrow, tx.Status)
	}
	return c, tx
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("kind: want=%s got=%s (%v)", kind, got, err)
	}
}

var errNotifier = errors.New("notifier down")
