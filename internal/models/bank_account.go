package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// BankAccount is a freelancer payout destination.
type BankAccount struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	BankName      string `gorm:"not null" json:"bank_name"`
	AccountNumber string `gorm:"not null" json:"account_number"`
	AccountName   string `gorm:"not null" json:"account_name"`
	BankCode      string `json:"bank_code,omitempty"`
	// RecipientCode is the processor transfer recipient; releases are sent to it.
	RecipientCode string         `gorm:"index" json:"recipient_code"`
	Currency      string         `gorm:"type:varchar(3)" json:"currency,omitempty"`
	IsDefault     bool           `gorm:"default:false" json:"is_default"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}

// PayoutReady reports whether a release in currency can be sent here. An
// account without a currency accepts any.
func (b *BankAccount) PayoutReady(currency string) bool {
	if b == nil || strings.TrimSpace(b.RecipientCode) == "" {
		return false
	}
	return b.Currency == "" || strings.EqualFold(b.Currency, currency)
}
