package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionPending      TransactionStatus = "pending"
	TransactionProcessing   TransactionStatus = "processing"
	TransactionHeldInEscrow TransactionStatus = "held_in_escrow"
	TransactionReleased     TransactionStatus = "released"
	TransactionRefunded     TransactionStatus = "refunded"
	TransactionFailed       TransactionStatus = "failed"
	TransactionCancelled    TransactionStatus = "cancelled"
)

// IsActive reports whether the transaction still blocks a new escrow intent
// for the same milestone.
func (s TransactionStatus) IsActive() bool {
	return s == TransactionPending || s == TransactionProcessing || s == TransactionHeldInEscrow
}

// Transaction tracks one escrow hold for one milestone and its eventual
// release or refund. Amounts are minor units.
type Transaction struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_transaction_milestone" json:"contract_id"`
	MilestoneID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_transaction_milestone" json:"milestone_id"`
	ClientID           uint              `gorm:"not null;index" json:"client_id"`
	FreelancerID       uint              `gorm:"not null;index" json:"freelancer_id"`
	Amount             int64             `gorm:"not null" json:"amount"`
	PlatformCommission int64             `gorm:"not null" json:"platform_commission"`
	FreelancerAmount   int64             `gorm:"not null" json:"freelancer_amount"`
	Currency           string            `gorm:"type:varchar(3);not null" json:"currency"`
	Status             TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Reference          string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	PaymentIntentID    string            `gorm:"type:varchar(100);index" json:"payment_intent_id"`
	ClientSecret       string            `gorm:"type:text" json:"client_secret,omitempty"`
	AuthorizationURL   string            `gorm:"type:text" json:"authorization_url,omitempty"`
	PayoutID           string            `gorm:"type:varchar(100)" json:"payout_id,omitempty"`
	RefundID           string            `gorm:"type:varchar(100)" json:"refund_id,omitempty"`
	RefundReason       string            `gorm:"type:text" json:"refund_reason,omitempty"`
	FailureReason      string            `gorm:"type:text" json:"failure_reason,omitempty"`
	EscrowReleaseDate  *time.Time        `json:"escrow_release_date,omitempty"`
	HeldAt             *time.Time        `json:"held_at,omitempty"`
	ReleasedAt         *time.Time        `json:"released_at,omitempty"`
	RefundedAt         *time.Time        `json:"refunded_at,omitempty"`
	FailedAt           *time.Time        `json:"failed_at,omitempty"`
	Version            int               `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "escrow_transactions"
}

func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	out := *t
	out.EscrowReleaseDate = cloneTime(t.EscrowReleaseDate)
	out.HeldAt = cloneTime(t.HeldAt)
	out.ReleasedAt = cloneTime(t.ReleasedAt)
	out.RefundedAt = cloneTime(t.RefundedAt)
	out.FailedAt = cloneTime(t.FailedAt)
	return &out
}
