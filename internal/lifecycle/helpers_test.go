package lifecycle

import (
	"testing"
	"time"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

const (
	clientID     uint = 10
	freelancerID uint = 20
	strangerID   uint = 99
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func draftContract(t *testing.T, amounts ...int64) *models.Contract {
	t.Helper()
	in := NewContractInput{
		ProjectID:    1,
		ProposalID:   2,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Title:        "Landing page",
		TotalAmount:  0,
		Currency:     "usd",
		StartDate:    t0,
		EndDate:      t0.AddDate(0, 1, 0),
	}
	for i, a := range amounts {
		in.TotalAmount += a
		in.Milestones = append(in.Milestones, MilestoneSpec{Title: "M" + string(rune('1'+i)), Amount: a})
	}
	if len(amounts) == 0 {
		in.TotalAmount = 50000
	}
	c, err := NewContract(in, t0)
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	return c
}

func activeContract(t *testing.T, amounts ...int64) *models.Contract {
	t.Helper()
	c := draftContract(t, amounts...)
	if _, _, err := Sign(c, clientID, SignInput{}, t0); err != nil {
		t.Fatalf("client sign: %v", err)
	}
	if _, _, err := Sign(c, freelancerID, SignInput{}, t0); err != nil {
		t.Fatalf("freelancer sign: %v", err)
	}
	if c.Status != models.ContractActive {
		t.Fatalf("status: want=active got=%s", c.Status)
	}
	return c
}

func approvedMilestone(t *testing.T, c *models.Contract, idx int) *models.Milestone {
	t.Helper()
	id := c.Milestones[idx].ID
	if _, err := SubmitMilestone(c, id, freelancerID, nil, "", t0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	m, err := ApproveMilestone(c, id, clientID, "", t0)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return m
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("kind: want=%s got=%s (%v)", kind, got, err)
	}
}
