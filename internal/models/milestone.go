package models

import (
	"time"

	"github.com/google/uuid"
)

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneSubmitted  MilestoneStatus = "submitted"
	MilestoneApproved   MilestoneStatus = "approved"
	MilestoneRejected   MilestoneStatus = "rejected"
	MilestonePaid       MilestoneStatus = "paid"
)

type DeliverableStatus string

const (
	DeliverableSubmitted DeliverableStatus = "submitted"
	DeliverableApproved  DeliverableStatus = "approved"
	DeliverableRejected  DeliverableStatus = "rejected"
)

type Milestone struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	Position        int             `gorm:"not null" json:"position"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Amount          int64           `gorm:"not null" json:"amount"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Status          MilestoneStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Deliverables    []Deliverable   `gorm:"type:text;serializer:json" json:"deliverables"`
	ClientFeedback  string          `gorm:"type:text" json:"client_feedback,omitempty"`
	FreelancerNotes string          `gorm:"type:text" json:"freelancer_notes,omitempty"`
	SubmissionCount int             `gorm:"not null;default:0" json:"submission_count"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Milestone) TableName() string {
	return "contract_milestones"
}

// Deliverable is a unit of submitted work. File fields reference an object in
// external storage.
type Deliverable struct {
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	FileURL      string            `json:"file_url,omitempty"`
	FilePublicID string            `json:"file_public_id,omitempty"`
	FileName     string            `json:"file_name,omitempty"`
	Status       DeliverableStatus `json:"status"`
	Feedback     string            `json:"feedback,omitempty"`
	SubmittedAt  time.Time         `json:"submitted_at"`
}

func (m Milestone) clone() Milestone {
	out := m
	out.Deliverables = append([]Deliverable(nil), m.Deliverables...)
	out.DueDate = cloneTime(m.DueDate)
	out.StartedAt = cloneTime(m.StartedAt)
	out.SubmittedAt = cloneTime(m.SubmittedAt)
	out.ApprovedAt = cloneTime(m.ApprovedAt)
	out.RejectedAt = cloneTime(m.RejectedAt)
	out.PaidAt = cloneTime(m.PaidAt)
	return out
}
