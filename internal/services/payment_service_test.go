package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
	"TalentHive/internal/payments"
	"TalentHive/internal/store"
)

func TestEscrowScenarioFiveHundredAtTenPercent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, tx := f.funded(t, 50000)

	if tx.Amount != 50000 || tx.PlatformCommission != 5000 || tx.FreelancerAmount != 45000 {
		t.Fatalf("breakdown: got amount=%d commission=%d freelancer=%d", tx.Amount, tx.PlatformCommission, tx.FreelancerAmount)
	}
	if tx.HeldAt == nil || tx.EscrowReleaseDate == nil {
		t.Fatalf("held transaction must carry heldAt and escrowReleaseDate")
	}
	if got := tx.EscrowReleaseDate.Sub(*tx.HeldAt); got != 14*24*time.Hour {
		t.Fatalf("escrow hold: want=336h got=%s", got)
	}

	released, c, err := f.payments.Release(ctx, tx.ID, clientID)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if released.Status != models.TransactionReleased || released.PayoutID == "" {
		t.Fatalf("release: status=%s payout=%q", released.Status, released.PayoutID)
	}
	if c.Milestones[0].Status != models.MilestonePaid || c.Status != models.ContractCompleted {
		t.Fatalf("contract: milestone=%s contract=%s", c.Milestones[0].Status, c.Status)
	}
	if f.processor.Payouts["rel_"+tx.Reference] == "" {
		t.Fatalf("payout must use the derived reference")
	}
	if !f.notifier.has(models.NotificationMilestonePaid, freelancerID) || !f.notifier.has(models.NotificationContractCompleted, clientID) {
		t.Fatalf("missing notifications: %v", f.notifier.types())
	}
}

func TestCreateEscrowIntentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 50000)
	m := c.Milestones[0]
	f.approve(t, c, m.ID)

	first, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("want the same transaction, got %s and %s", first.ID, second.ID)
	}
	if create, _, _, _ := f.processor.Counts(); create != 1 {
		t.Fatalf("CreateIntent calls: want=1 got=%d", create)
	}
	txs, _ := f.payments.ListTransactions(ctx, c.ID, freelancerID)
	if len(txs) != 1 {
		t.Fatalf("transactions: want=1 got=%d", len(txs))
	}
}

func TestCreateEscrowIntentGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 50, 50000)

	_, err := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[1].ID, freelancerID)
	wantKind(t, err, apperr.KindForbidden)

	_, err = f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[1].ID, clientID)
	wantKind(t, err, apperr.KindInvalidTransition)

	f.approve(t, c, c.Milestones[0].ID)
	_, err = f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[0].ID, clientID)
	wantKind(t, err, apperr.KindValidation)

	if create, _, _, _ := f.processor.Counts(); create != 0 {
		t.Fatalf("processor must not be called when guards fail, got %d", create)
	}
}

func TestProcessorFailureClosesAttempt(t *testing.T) {
	for _, tc := range []struct {
		name string
		fail func(f *fixture)
		kind apperr.Kind
	}{
		{"transient", func(f *fixture) { f.processor.FailTransient("create") }, apperr.KindPaymentTransient},
		{"permanent", func(f *fixture) { f.processor.FailPermanent("create") }, apperr.KindPaymentPermanent},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			c := f.active(t, 50000)
			m := c.Milestones[0]
			f.approve(t, c, m.ID)

			tc.fail(f)
			_, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
			wantKind(t, err, tc.kind)

			txs, _ := f.payments.ListTransactions(ctx, c.ID, clientID)
			if len(txs) != 1 || txs[0].Status != models.TransactionFailed || txs[0].FailedAt == nil {
				t.Fatalf("transactions after failure: want one failed attempt, got=%+v", txs)
			}
			tx, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
			if err != nil {
				t.Fatalf("retry: %v", err)
			}
			if tx.Status != models.TransactionProcessing {
				t.Fatalf("status: want=processing got=%s", tx.Status)
			}
			if tx.Reference == txs[0].Reference {
				t.Fatalf("retry must use a fresh reference, got %s twice", tx.Reference)
			}
		})
	}
}

func TestEscrowRetryAfterUnrecordedIntent(t *testing.T) {
	mem := seededStore()
	st := &flakyStore{MemoryStore: mem}
	f := newFixtureWithStore(t, mem, st)
	ctx := context.Background()
	c := f.active(t, 50000)
	m := c.Milestones[0]
	f.approve(t, c, m.ID)

	st.fail(0, 1)
	_, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
	wantKind(t, err, apperr.KindInternal)

	tx, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if tx.Status != models.TransactionProcessing || tx.Reference != EscrowReference(m.ID, 2) {
		t.Fatalf("retry: status=%s reference=%s", tx.Status, tx.Reference)
	}
	if create, _, _, _ := f.processor.Counts(); create != 2 {
		t.Fatalf("CreateIntent calls: want=2 got=%d", create)
	}
	stale, err := mem.GetTransactionByReference(ctx, EscrowReference(m.ID, 1))
	if err != nil {
		t.Fatalf("stale attempt: %v", err)
	}
	if stale.Status != models.TransactionCancelled {
		t.Fatalf("stale attempt: want=cancelled got=%s", stale.Status)
	}
}

func TestEscrowRetryAfterFailedInsert(t *testing.T) {
	mem := seededStore()
	st := &flakyStore{MemoryStore: mem}
	f := newFixtureWithStore(t, mem, st)
	ctx := context.Background()
	c := f.active(t, 50000)
	m := c.Milestones[0]
	f.approve(t, c, m.ID)

	st.fail(1, 0)
	_, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
	wantKind(t, err, apperr.KindInternal)
	if create, _, _, _ := f.processor.Counts(); create != 0 {
		t.Fatalf("processor must not see a reference that was never recorded, got %d calls", create)
	}

	tx, err := f.payments.CreateEscrowIntent(ctx, c.ID, m.ID, clientID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if tx.Status != models.TransactionProcessing || tx.Reference != EscrowReference(m.ID, 1) {
		t.Fatalf("retry: status=%s reference=%s", tx.Status, tx.Reference)
	}
}

func TestDoubleReleaseIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tx := f.funded(t, 30000, 20000)

	if _, _, err := f.payments.Release(ctx, tx.ID, clientID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	_, _, err := f.payments.Release(ctx, tx.ID, clientID)
	wantKind(t, err, apperr.KindInvalidTransition)

	if _, _, release, _ := f.processor.Counts(); release != 1 {
		t.Fatalf("payout calls: want=1 got=%d", release)
	}
	c, _ := f.store.GetContract(ctx, tx.ContractID)
	if c.Milestones[0].Status != models.MilestonePaid || c.Status != models.ContractActive {
		t.Fatalf("milestone=%s contract=%s", c.Milestones[0].Status, c.Status)
	}
}

func TestTransientReleaseFailureMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tx := f.funded(t, 50000)

	f.processor.FailTransient("release")
	_, _, err := f.payments.Release(ctx, tx.ID, clientID)
	wantKind(t, err, apperr.KindPaymentTransient)

	stored, _ := f.store.GetTransaction(ctx, tx.ID)
	c, _ := f.store.GetContract(ctx, tx.ContractID)
	if stored.Status != models.TransactionHeldInEscrow || c.Milestones[0].Status != models.MilestoneApproved {
		t.Fatalf("state changed: tx=%s milestone=%s", stored.Status, c.Milestones[0].Status)
	}
	if stored.Version != tx.Version {
		t.Fatalf("version: want=%d got=%d", tx.Version, stored.Version)
	}

	if _, _, err := f.payments.Release(ctx, tx.ID, clientID); err != nil {
		t.Fatalf("retry Release: %v", err)
	}
}

func TestReleaseGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, tx := f.funded(t, 30000, 20000)

	_, _, err := f.payments.Release(ctx, tx.ID, freelancerID)
	wantKind(t, err, apperr.KindForbidden)

	if _, err := f.contracts.Pause(ctx, c.ID, clientID, ""); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	_, _, err = f.payments.Release(ctx, tx.ID, clientID)
	wantKind(t, err, apperr.KindContractNotActive)
	if _, _, release, _ := f.processor.Counts(); release != 0 {
		t.Fatalf("payout calls: want=0 got=%d", release)
	}
}

func TestReleaseWithoutPayoutAccount(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutUser(models.User{ID: clientID, Email: "client@example.com"})
	f := newFixtureWithStore(t, st, st)
	ctx := context.Background()
	_, tx := f.funded(t, 50000)

	_, _, err := f.payments.Release(ctx, tx.ID, clientID)
	wantKind(t, err, apperr.KindValidation)

	st.PutBankAccount(models.BankAccount{ID: 7, UserID: freelancerID, IsDefault: true})
	_, _, err = f.payments.Release(ctx, tx.ID, clientID)
	wantKind(t, err, apperr.KindValidation)

	if _, _, release, _ := f.processor.Counts(); release != 0 {
		t.Fatalf("payout calls: want=0 got=%d", release)
	}
}

func TestRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, tx := f.funded(t, 50000)

	refunded, err := f.payments.Refund(ctx, tx.ID, clientID, "scope dropped")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Status != models.TransactionRefunded || refunded.RefundID == "" || refunded.RefundReason != "scope dropped" {
		t.Fatalf("refund: status=%s id=%q reason=%q", refunded.Status, refunded.RefundID, refunded.RefundReason)
	}
	stored, _ := f.store.GetContract(ctx, c.ID)
	if stored.Milestones[0].Status != models.MilestoneApproved {
		t.Fatalf("refund must not advance milestone, got=%s", stored.Milestones[0].Status)
	}
	_, _, err = f.payments.Release(ctx, tx.ID, clientID)
	wantKind(t, err, apperr.KindInvalidTransition)

	again, err := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[0].ID, clientID)
	if err != nil {
		t.Fatalf("re-fund after refund: %v", err)
	}
	if again.ID == tx.ID || again.Reference == tx.Reference {
		t.Fatalf("a refunded milestone must get a new transaction and reference")
	}
}

func TestConfirmPendingAndFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 50000, 20000)
	for _, m := range c.Milestones {
		f.approve(t, c, m.ID)
	}
	pending, _ := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[0].ID, clientID)
	failed, _ := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[1].ID, clientID)
	f.processor.SetStatus(pending.PaymentIntentID, payments.ChargePending)
	f.processor.SetStatus(failed.PaymentIntentID, payments.ChargeFailed)

	got, err := f.payments.ConfirmEscrow(ctx, pending.Reference, clientID)
	if err != nil || got.Status != models.TransactionProcessing {
		t.Fatalf("pending: status=%v err=%v", got, err)
	}
	got, err = f.payments.ConfirmEscrow(ctx, failed.Reference, clientID)
	if err != nil || got.Status != models.TransactionFailed || got.FailedAt == nil {
		t.Fatalf("failed: status=%v err=%v", got, err)
	}
	if !f.notifier.has(models.NotificationEscrowFailed, clientID) {
		t.Fatalf("client not told about failed charge")
	}

	_, err = f.payments.ConfirmEscrow(ctx, failed.Reference, outsiderID)
	wantKind(t, err, apperr.KindForbidden)
}

func TestReconcileStaleTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 50000, 20000)
	for _, m := range c.Milestones {
		f.approve(t, c, m.ID)
	}
	ok, _ := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[0].ID, clientID)
	bad, _ := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[1].ID, clientID)
	f.processor.SetStatus(bad.PaymentIntentID, payments.ChargeFailed)

	res, err := f.payments.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Checked != 0 {
		t.Fatalf("fresh transactions are not stale, checked=%d", res.Checked)
	}

	f.payments.now = func() time.Time { return time.Now().Add(time.Hour) }
	res, err = f.payments.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Checked != 2 || res.Held != 1 || res.Failed != 1 {
		t.Fatalf("reconcile: %+v", res)
	}
	stored, _ := f.store.GetTransaction(ctx, ok.ID)
	if stored.Status != models.TransactionHeldInEscrow {
		t.Fatalf("status: want=held_in_escrow got=%s", stored.Status)
	}
}

func webhookBody(t *testing.T, event, reference string, amount int64, currency string) []byte {
	t.Helper()
	var evt payments.WebhookEvent
	evt.Event = event
	evt.Data.Reference = reference
	evt.Data.Amount = amount
	evt.Data.Currency = currency
	body, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func TestHandleWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 50000, 20000)
	for _, m := range c.Milestones {
		f.approve(t, c, m.ID)
	}
	good, _ := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[0].ID, clientID)
	short, _ := f.payments.CreateEscrowIntent(ctx, c.ID, c.Milestones[1].ID, clientID)
	const secret = "sk_test_webhook"

	body := webhookBody(t, payments.EventChargeSuccess, good.Reference, good.Amount, "usd")
	wantKind(t, f.payments.HandleWebhook(ctx, body, "deadbeef"), apperr.KindForbidden)
	wantKind(t, f.payments.HandleWebhook(ctx, body, ""), apperr.KindForbidden)

	if err := f.payments.HandleWebhook(ctx, body, payments.SignWebhook(secret, body)); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	stored, _ := f.store.GetTransaction(ctx, good.ID)
	if stored.Status != models.TransactionHeldInEscrow {
		t.Fatalf("status: want=held_in_escrow got=%s", stored.Status)
	}
	// redelivery is a no-op
	if err := f.payments.HandleWebhook(ctx, body, payments.SignWebhook(secret, body)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	body = webhookBody(t, payments.EventChargeSuccess, short.Reference, short.Amount-1, "USD")
	if err := f.payments.HandleWebhook(ctx, body, payments.SignWebhook(secret, body)); err != nil {
		t.Fatalf("HandleWebhook mismatch: %v", err)
	}
	stored, _ = f.store.GetTransaction(ctx, short.ID)
	if stored.Status != models.TransactionFailed {
		t.Fatalf("amount mismatch: want=failed got=%s", stored.Status)
	}

	body = webhookBody(t, payments.EventChargeSuccess, "esc_unknown_1", 100, "USD")
	if err := f.payments.HandleWebhook(ctx, body, payments.SignWebhook(secret, body)); err != nil {
		t.Fatalf("unknown reference must be acknowledged: %v", err)
	}
}
