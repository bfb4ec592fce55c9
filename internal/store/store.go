// Package store persists contracts, escrow transactions and notifications.
// Contract and transaction writes are compare-and-set on a version column: a
// write that does not match the expected version fails with a conflict and
// leaves the row untouched.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/models"
)

// ContractFilter narrows ListContracts to one participant.
type ContractFilter struct {
	UserID uint
	// Role is "client", "freelancer" or empty for either side.
	Role   string
	Status models.ContractStatus
	Limit  int
	Offset int
}

type ContractStore interface {
	CreateContract(ctx context.Context, c *models.Contract) error
	GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	// SaveContract writes c and its children when the stored version equals
	// expectedVersion. On success c.Version is incremented.
	SaveContract(ctx context.Context, c *models.Contract, expectedVersion int) error
	ListContracts(ctx context.Context, f ContractFilter) ([]models.Contract, error)
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	// FindActiveTransaction returns the pending, processing or held
	// transaction of a milestone, or a not_found error.
	FindActiveTransaction(ctx context.Context, milestoneID uuid.UUID) (*models.Transaction, error)
	CountTransactions(ctx context.Context, milestoneID uuid.UUID) (int64, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction, expectedVersion int) error
	ListStaleTransactions(ctx context.Context, status models.TransactionStatus, updatedBefore time.Time, limit int) ([]models.Transaction, error)
	ListTransactionsForContract(ctx context.Context, contractID uuid.UUID) ([]models.Transaction, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

// DirectoryStore resolves participant details owned by the account service.
type DirectoryStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	DefaultBankAccount(ctx context.Context, userID uint) (*models.BankAccount, error)
}

// Store is everything the engine persists.
type Store interface {
	ContractStore
	TransactionStore
	NotificationStore
	DirectoryStore
	// SaveRelease commits a released transaction and its paid milestone in
	// one unit. Either both versions match and both rows are written, or
	// nothing is.
	SaveRelease(ctx context.Context, c *models.Contract, contractVersion int, t *models.Transaction, transactionVersion int) error
}

const defaultListLimit = 50

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return defaultListLimit
	}
	return limit
}
