package lifecycle

import (
	"encoding/json"
	"testing"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

func TestCancelRecordsSelfResolvedAmendment(t *testing.T) {
	for _, start := range []string{"draft", "active"} {
		t.Run(start, func(t *testing.T) {
			c := draftContract(t, 50000)
			if start == "active" {
				c = activeContract(t, 50000)
			}
			a, err := Cancel(c, freelancerID, "client unreachable", t0)
			if err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if c.Status != models.ContractCancelled || c.CancelledAt == nil {
				t.Fatalf("status: want=cancelled got=%s", c.Status)
			}
			if a.Type != models.AmendmentScopeChange || a.Status != models.AmendmentAccepted {
				t.Fatalf("amendment: type=%s status=%s", a.Type, a.Status)
			}
			if a.ProposedBy != freelancerID || a.RespondedBy == nil || *a.RespondedBy != freelancerID {
				t.Fatalf("cancellation must be self-resolved: %+v", a)
			}
		})
	}
}

func TestCancelGuards(t *testing.T) {
	c := activeContract(t, 50000)
	_, err := Cancel(c, strangerID, "x", t0)
	wantKind(t, err, apperr.KindForbidden)
	_, err = Cancel(c, clientID, "  ", t0)
	wantKind(t, err, apperr.KindValidation)

	if err := Pause(c, clientID, t0); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	_, err = Cancel(c, clientID, "x", t0)
	wantKind(t, err, apperr.KindInvalidTransition)
	if len(c.Amendments) != 0 {
		t.Fatalf("failed cancel appended an amendment")
	}
}

func TestDisputeFromPaused(t *testing.T) {
	c := activeContract(t, 50000)
	if err := Pause(c, freelancerID, t0); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	a, err := Dispute(c, clientID, DisputeInput{Reason: "missed deadline", Evidence: []string{"https://files/1"}}, t0)
	if err != nil {
		t.Fatalf("Dispute: %v", err)
	}
	if c.Status != models.ContractDisputed || c.DisputedAt == nil {
		t.Fatalf("status: want=disputed got=%s", c.Status)
	}
	if a.Status != models.AmendmentPending {
		t.Fatalf("dispute amendment stays pending for external resolution, got=%s", a.Status)
	}
	var rec disputeRecord
	if err := json.Unmarshal(a.Changes, &rec); err != nil {
		t.Fatalf("unmarshal changes: %v", err)
	}
	if rec.Reason != "missed deadline" || len(rec.Evidence) != 1 {
		t.Fatalf("dispute record: %+v", rec)
	}

	_, err = Dispute(c, clientID, DisputeInput{Reason: "again"}, t0)
	wantKind(t, err, apperr.KindInvalidTransition)
	_, err = Cancel(c, clientID, "x", t0)
	wantKind(t, err, apperr.KindInvalidTransition)
}

func TestPauseResume(t *testing.T) {
	c := draftContract(t, 50000)
	wantKind(t, Pause(c, clientID, t0), apperr.KindInvalidTransition)

	c = activeContract(t, 50000)
	wantKind(t, Resume(c, clientID), apperr.KindInvalidTransition)
	if err := Pause(c, clientID, t0); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if c.Status != models.ContractPaused || c.PausedAt == nil {
		t.Fatalf("status: want=paused got=%s", c.Status)
	}
	if err := Resume(c, freelancerID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if c.Status != models.ContractActive || c.PausedAt != nil {
		t.Fatalf("status: want=active got=%s", c.Status)
	}
	wantKind(t, Resume(c, strangerID), apperr.KindForbidden)
}
