package services

import (
	"context"
	"encoding/json"
	"testing"

	"TalentHive/internal/apperr"
	"TalentHive/internal/lifecycle"
	"TalentHive/internal/models"
	"TalentHive/internal/store"
)

func TestCreateFromProposal(t *testing.T) {
	f := newFixture(t)
	c := f.draft(t, 30000, 20000)

	if c.Status != models.ContractDraft || c.Currency != "USD" || c.TotalAmount != 50000 {
		t.Fatalf("contract: got status=%s currency=%s total=%d", c.Status, c.Currency, c.TotalAmount)
	}
	if len(c.Milestones) != 2 {
		t.Fatalf("milestones: want=2 got=%d", len(c.Milestones))
	}
	if !f.notifier.has(models.NotificationContractCreated, freelancerID) {
		t.Fatalf("freelancer was not notified: %v", f.notifier.types())
	}

	_, err := f.contracts.CreateFromProposal(context.Background(), freelancerID, lifecycle.NewContractInput{ClientID: clientID})
	wantKind(t, err, apperr.KindForbidden)
}

func TestCreateFromProposalTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	c := f.draft(t, 1000)
	in := lifecycle.NewContractInput{
		ProjectID: c.ProjectID, ProposalID: c.ProposalID, ClientID: clientID, FreelancerID: freelancerID,
		Title: "again", TotalAmount: 1000, StartDate: c.StartDate, EndDate: c.EndDate,
	}
	_, err := f.contracts.CreateFromProposal(context.Background(), clientID, in)
	wantKind(t, err, apperr.KindConflict)
}

func TestSignActivatesAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.draft(t, 1000)

	c, err := f.contracts.Sign(ctx, c.ID, clientID, lifecycle.SignInput{})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if c.Status != models.ContractDraft {
		t.Fatalf("one signature must not activate, got=%s", c.Status)
	}
	c, err = f.contracts.Sign(ctx, c.ID, freelancerID, lifecycle.SignInput{})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	stored, err := f.contracts.Get(ctx, c.ID, clientID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != models.ContractActive || stored.ActivatedAt == nil || len(stored.Signatures) != 2 {
		t.Fatalf("stored: status=%s activated=%v signatures=%d", stored.Status, stored.ActivatedAt, len(stored.Signatures))
	}
	if !f.notifier.has(models.NotificationContractActivated, clientID) || !f.notifier.has(models.NotificationContractActivated, freelancerID) {
		t.Fatalf("activation not notified to both: %v", f.notifier.types())
	}
}

func TestFreelancerSignsTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.draft(t, 1000)
	if _, err := f.contracts.Sign(ctx, c.ID, freelancerID, lifecycle.SignInput{}); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	before, _ := f.contracts.Get(ctx, c.ID, freelancerID)

	_, err := f.contracts.Sign(ctx, c.ID, freelancerID, lifecycle.SignInput{})
	wantKind(t, err, apperr.KindAlreadySigned)

	after, _ := f.contracts.Get(ctx, c.ID, freelancerID)
	if after.Version != before.Version || len(after.Signatures) != 1 {
		t.Fatalf("ledger changed: version %d->%d signatures=%d", before.Version, after.Version, len(after.Signatures))
	}
}

func TestGetAndListRequireParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.draft(t, 1000)

	_, err := f.contracts.Get(ctx, c.ID, outsiderID)
	wantKind(t, err, apperr.KindForbidden)

	mine, err := f.contracts.List(ctx, freelancerID, store.ContractFilter{Role: "freelancer"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("List: want=1 got=%d", len(mine))
	}
	none, err := f.contracts.List(ctx, outsiderID, store.ContractFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("outsider List: want=0 got=%d", len(none))
	}
	_, err = f.contracts.List(ctx, clientID, store.ContractFilter{Role: "admin"})
	wantKind(t, err, apperr.KindValidation)
}

func TestApprovePendingMilestone(t *testing.T) {
	f := newFixture(t)
	c := f.active(t, 1000)
	_, err := f.contracts.ApproveMilestone(context.Background(), c.ID, c.Milestones[0].ID, clientID, "")
	wantKind(t, err, apperr.KindInvalidTransition)
}

func TestMilestoneFlowNotifiesCounterparty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 1000)
	id := c.Milestones[0].ID

	if _, err := f.contracts.StartMilestone(ctx, c.ID, id, freelancerID); err != nil {
		t.Fatalf("StartMilestone: %v", err)
	}
	if _, err := f.contracts.SubmitMilestone(ctx, c.ID, id, freelancerID, []lifecycle.DeliverableInput{{Title: "v1"}}, ""); err != nil {
		t.Fatalf("SubmitMilestone: %v", err)
	}
	if _, err := f.contracts.RejectMilestone(ctx, c.ID, id, clientID, "fix header"); err != nil {
		t.Fatalf("RejectMilestone: %v", err)
	}
	c, err := f.contracts.SubmitMilestone(ctx, c.ID, id, freelancerID, []lifecycle.DeliverableInput{{Title: "v2"}}, "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	m := c.Milestone(id)
	if m.SubmissionCount != 2 || len(m.Deliverables) != 2 {
		t.Fatalf("milestone: submissions=%d deliverables=%d", m.SubmissionCount, len(m.Deliverables))
	}
	for _, want := range []struct {
		typ  models.NotificationType
		user uint
	}{
		{models.NotificationMilestoneStarted, clientID},
		{models.NotificationMilestoneSubmitted, clientID},
		{models.NotificationMilestoneRejected, freelancerID},
	} {
		if !f.notifier.has(want.typ, want.user) {
			t.Fatalf("missing %s for user %d: %v", want.typ, want.user, f.notifier.types())
		}
	}
}

func TestNotifierFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errNotifier
	c := f.active(t, 1000)
	if c.Status != models.ContractActive {
		t.Fatalf("status: want=active got=%s", c.Status)
	}
}

func TestConflictIsRetried(t *testing.T) {
	mem := store.NewMemoryStore()
	cs := &conflictStore{MemoryStore: mem}
	f := newFixtureWithStore(t, mem, cs)
	ctx := context.Background()
	c := f.draft(t, 1000)

	cs.conflicts = 2
	c, err := f.contracts.Sign(ctx, c.ID, clientID, lifecycle.SignInput{})
	if err != nil {
		t.Fatalf("Sign after conflicts: %v", err)
	}
	if len(c.Signatures) != 1 || cs.saves != 3 {
		t.Fatalf("signatures=%d saves=%d", len(c.Signatures), cs.saves)
	}

	cs.conflicts = 3
	_, err = f.contracts.Sign(ctx, c.ID, freelancerID, lifecycle.SignInput{})
	wantKind(t, err, apperr.KindConflict)
	stored, _ := mem.GetContract(ctx, c.ID)
	if stored.Status != models.ContractDraft || len(stored.Signatures) != 1 {
		t.Fatalf("exhausted retries must not write: status=%s signatures=%d", stored.Status, len(stored.Signatures))
	}
}

func TestAmendmentRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 1000)

	changes, _ := json.Marshal(lifecycle.AmountChange{TotalAmount: 2000})
	_, a, err := f.contracts.ProposeAmendment(ctx, c.ID, clientID, lifecycle.ProposeInput{
		Type: models.AmendmentAmountChange, Description: "bigger budget", Changes: changes,
	})
	if err != nil {
		t.Fatalf("ProposeAmendment: %v", err)
	}
	if !f.notifier.has(models.NotificationAmendmentProposed, freelancerID) {
		t.Fatalf("freelancer not notified of proposal")
	}

	_, err = f.contracts.RespondAmendment(ctx, c.ID, a.ID, clientID, true, "")
	wantKind(t, err, apperr.KindForbidden)

	c, err = f.contracts.RespondAmendment(ctx, c.ID, a.ID, freelancerID, true, "ok")
	if err != nil {
		t.Fatalf("RespondAmendment: %v", err)
	}
	if c.TotalAmount != 2000 || c.Amendment(a.ID).Status != models.AmendmentAccepted {
		t.Fatalf("accepted amendment not applied: total=%d", c.TotalAmount)
	}
	_, err = f.contracts.RespondAmendment(ctx, c.ID, a.ID, freelancerID, false, "")
	wantKind(t, err, apperr.KindAlreadyResponded)
}

func TestPauseBlocksWorkAndResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.active(t, 1000)

	if _, err := f.contracts.Pause(ctx, c.ID, clientID, "holiday"); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	_, err := f.contracts.StartMilestone(ctx, c.ID, c.Milestones[0].ID, freelancerID)
	wantKind(t, err, apperr.KindContractNotActive)

	c, err = f.contracts.Resume(ctx, c.ID, freelancerID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if c.Status != models.ContractActive {
		t.Fatalf("status: want=active got=%s", c.Status)
	}
}

func TestCancelAndDispute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.active(t, 1000)
	c, err := f.contracts.Cancel(ctx, c.ID, freelancerID, "client unresponsive")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if c.Status != models.ContractCancelled || !f.notifier.has(models.NotificationContractCancelled, clientID) {
		t.Fatalf("cancel: status=%s", c.Status)
	}

	d := f.active(t, 1000)
	d, err = f.contracts.Dispute(ctx, d.ID, clientID, lifecycle.DisputeInput{Reason: "quality", Evidence: []string{"https://files.test/a.png"}})
	if err != nil {
		t.Fatalf("Dispute: %v", err)
	}
	if d.Status != models.ContractDisputed || !f.notifier.has(models.NotificationContractDisputed, freelancerID) {
		t.Fatalf("dispute: status=%s", d.Status)
	}
	_, err = f.contracts.Cancel(ctx, d.ID, clientID, "give up")
	wantKind(t, err, apperr.KindInvalidTransition)
}
