package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationContractCreated    NotificationType = "contract_created"
	NotificationContractSigned     NotificationType = "contract_signed"
	NotificationContractActivated  NotificationType = "contract_activated"
	NotificationContractCompleted  NotificationType = "contract_completed"
	NotificationContractCancelled  NotificationType = "contract_cancelled"
	NotificationContractDisputed   NotificationType = "contract_disputed"
	NotificationContractPaused     NotificationType = "contract_paused"
	NotificationContractResumed    NotificationType = "contract_resumed"
	NotificationMilestoneStarted   NotificationType = "milestone_started"
	NotificationMilestoneSubmitted NotificationType = "milestone_submitted"
	NotificationMilestoneApproved  NotificationType = "milestone_approved"
	NotificationMilestoneRejected  NotificationType = "milestone_rejected"
	NotificationMilestonePaid      NotificationType = "milestone_paid"
	NotificationAmendmentProposed  NotificationType = "amendment_proposed"
	NotificationAmendmentResponded NotificationType = "amendment_responded"
	NotificationEscrowFunded       NotificationType = "escrow_funded"
	NotificationEscrowRefunded     NotificationType = "escrow_refunded"
	NotificationEscrowFailed       NotificationType = "escrow_failed"
)

type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(50);not null"`
	Title     string           `json:"title" gorm:"type:varchar(255);not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	IsRead    bool             `json:"is_read" gorm:"default:false;index"`
	Data      datatypes.JSON   `json:"data"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate hook
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return nil
}
