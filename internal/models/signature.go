package models

import (
	"time"

	"github.com/google/uuid"
)

// Signature records that a participant agreed to the contract as written.
// SignatureHash is an audit digest, not a cryptographic proof.
type Signature struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_signature_contract_signer" json:"contract_id"`
	SignedBy      uint      `gorm:"not null;uniqueIndex:idx_signature_contract_signer" json:"signed_by"`
	SignedAt      time.Time `gorm:"not null" json:"signed_at"`
	IPAddress     string    `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent     string    `gorm:"type:text" json:"user_agent"`
	SignatureHash string    `gorm:"type:varchar(64);not null" json:"signature_hash"`
}

func (Signature) TableName() string {
	return "contract_signatures"
}
