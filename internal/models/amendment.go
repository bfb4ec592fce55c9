package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AmendmentType string
type AmendmentStatus string

const (
	AmendmentMilestoneChange AmendmentType = "milestone_change"
	AmendmentTimelineChange  AmendmentType = "timeline_change"
	AmendmentAmountChange    AmendmentType = "amount_change"
	AmendmentTermsChange     AmendmentType = "terms_change"
	AmendmentScopeChange     AmendmentType = "scope_change"
)

const (
	AmendmentPending  AmendmentStatus = "pending"
	AmendmentAccepted AmendmentStatus = "accepted"
	AmendmentRejected AmendmentStatus = "rejected"
)

// Amendment is an append-only record of a proposed change. Changes holds the
// type specific payload.
type Amendment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	Seq           int             `gorm:"not null" json:"seq"`
	Type          AmendmentType   `gorm:"type:varchar(30);not null" json:"type"`
	Description   string          `gorm:"type:text" json:"description"`
	Changes       datatypes.JSON  `json:"changes"`
	Reason        string          `gorm:"type:text" json:"reason"`
	ProposedBy    uint            `gorm:"not null" json:"proposed_by"`
	Status        AmendmentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ProposedAt    time.Time       `json:"proposed_at"`
	RespondedAt   *time.Time      `json:"responded_at,omitempty"`
	RespondedBy   *uint           `json:"responded_by,omitempty"`
	ResponseNotes string          `gorm:"type:text" json:"response_notes,omitempty"`
}

func (Amendment) TableName() string {
	return "contract_amendments"
}

func (t AmendmentType) Valid() bool {
	switch t {
	case AmendmentMilestoneChange, AmendmentTimelineChange, AmendmentAmountChange, AmendmentTermsChange, AmendmentScopeChange:
		return true
	}
	return false
}

func (a Amendment) clone() Amendment {
	out := a
	out.Changes = append(datatypes.JSON(nil), a.Changes...)
	out.RespondedAt = cloneTime(a.RespondedAt)
	if a.RespondedBy != nil {
		v := *a.RespondedBy
		out.RespondedBy = &v
	}
	return out
}
