package services

import (
	"fmt"

	"TalentHive/internal/models"
)

func contractEvent(userID uint, t models.NotificationType, c *models.Contract, title, message string) Event {
	return Event{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		Data:    map[string]any{"contract_id": c.ID.String(), "status": string(c.Status)},
	}
}

func milestoneEvent(userID uint, t models.NotificationType, c *models.Contract, m *models.Milestone, title, message string) Event {
	e := contractEvent(userID, t, c, title, message)
	e.Data["milestone_id"] = m.ID.String()
	e.Data["milestone_status"] = string(m.Status)
	return e
}

func transactionEvent(userID uint, t models.NotificationType, tx *models.Transaction, title, message string) Event {
	return Event{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"contract_id":    tx.ContractID.String(),
			"milestone_id":   tx.MilestoneID.String(),
			"transaction_id": tx.ID.String(),
			"reference":      tx.Reference,
			"amount":         tx.Amount,
			"currency":       tx.Currency,
			"status":         string(tx.Status),
		},
	}
}

// formatMinor renders minor units as a decimal amount, e.g. 50000 USD as "500.00 USD".
func formatMinor(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}

func completedEvents(c *models.Contract) []Event {
	msg := fmt.Sprintf("All milestones of '%s' are paid. The contract is complete.", c.Title)
	return []Event{
		contractEvent(c.ClientID, models.NotificationContractCompleted, c, "Contract Completed", msg),
		contractEvent(c.FreelancerID, models.NotificationContractCompleted, c, "Contract Completed", msg),
	}
}
