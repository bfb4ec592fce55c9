package models

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractActive    ContractStatus = "active"
	ContractPaused    ContractStatus = "paused"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
	ContractDisputed  ContractStatus = "disputed"
)

// ContractTerms is stored as a JSON document on the contract row.
type ContractTerms struct {
	PaymentTerms         string `json:"payment_terms,omitempty"`
	CancellationPolicy   string `json:"cancellation_policy,omitempty"`
	IntellectualProperty string `json:"intellectual_property,omitempty"`
	Confidentiality      string `json:"confidentiality,omitempty"`
	DisputeResolution    string `json:"dispute_resolution,omitempty"`
}

// Contract is the aggregate root. Milestones, signatures and amendments are
// owned records addressed by their own stable ids. Amounts are minor units.
type Contract struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uint           `gorm:"not null;index" json:"project_id"`
	ProposalID   uint           `gorm:"not null;uniqueIndex" json:"proposal_id"`
	ClientID     uint           `gorm:"not null;index" json:"client_id"`
	FreelancerID uint           `gorm:"not null;index" json:"freelancer_id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	TotalAmount  int64          `gorm:"not null" json:"total_amount"`
	Currency     string         `gorm:"type:varchar(3);not null" json:"currency"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	Status       ContractStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Terms        ContractTerms  `gorm:"type:text;serializer:json" json:"terms"`
	Version      int            `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ActivatedAt  *time.Time     `json:"activated_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CancelledAt  *time.Time     `json:"cancelled_at,omitempty"`
	DisputedAt   *time.Time     `json:"disputed_at,omitempty"`
	PausedAt     *time.Time     `json:"paused_at,omitempty"`

	Milestones []Milestone `gorm:"foreignKey:ContractID" json:"milestones"`
	Signatures []Signature `gorm:"foreignKey:ContractID" json:"signatures"`
	Amendments []Amendment `gorm:"foreignKey:ContractID" json:"amendments"`
}

func (Contract) TableName() string {
	return "contracts"
}

// IsTerminal reports whether no lifecycle transition can leave the status.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractCompleted || s == ContractCancelled
}

// Milestone looks up an owned milestone by id.
func (c *Contract) Milestone(id uuid.UUID) *Milestone {
	for i := range c.Milestones {
		if c.Milestones[i].ID == id {
			return &c.Milestones[i]
		}
	}
	return nil
}

// Amendment looks up an owned amendment by id.
func (c *Contract) Amendment(id uuid.UUID) *Amendment {
	for i := range c.Amendments {
		if c.Amendments[i].ID == id {
			return &c.Amendments[i]
		}
	}
	return nil
}

// SignatureOf returns the signature recorded for userID, if any.
func (c *Contract) SignatureOf(userID uint) *Signature {
	for i := range c.Signatures {
		if c.Signatures[i].SignedBy == userID {
			return &c.Signatures[i]
		}
	}
	return nil
}

// MilestoneTotal sums the amount of every milestone.
func (c *Contract) MilestoneTotal() int64 {
	var total int64
	for _, m := range c.Milestones {
		total += m.Amount
	}
	return total
}

// Clone returns a deep copy of the aggregate so callers can mutate it without
// touching shared state.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.ActivatedAt = cloneTime(c.ActivatedAt)
	out.CompletedAt = cloneTime(c.CompletedAt)
	out.CancelledAt = cloneTime(c.CancelledAt)
	out.DisputedAt = cloneTime(c.DisputedAt)
	out.PausedAt = cloneTime(c.PausedAt)

	out.Milestones = make([]Milestone, len(c.Milestones))
	for i, m := range c.Milestones {
		out.Milestones[i] = m.clone()
	}
	out.Signatures = append([]Signature(nil), c.Signatures...)
	out.Amendments = make([]Amendment, len(c.Amendments))
	for i, a := range c.Amendments {
		out.Amendments[i] = a.clone()
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
