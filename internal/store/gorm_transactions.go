package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"TalentHive/internal/models"
)

var activeTransactionStatuses = []models.TransactionStatus{
	models.TransactionPending,
	models.TransactionProcessing,
	models.TransactionHeldInEscrow,
}

func (s *GormStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	const op = "store.CreateTransaction"
	if t.Version == 0 {
		t.Version = 1
	}
	return mapError(op, s.db.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.firstTransaction(ctx, "store.GetTransaction", "id = ?", id)
}

func (s *GormStore) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return s.firstTransaction(ctx, "store.GetTransactionByReference", "reference = ?", reference)
}

func (s *GormStore) FindActiveTransaction(ctx context.Context, milestoneID uuid.UUID) (*models.Transaction, error) {
	const op = "store.FindActiveTransaction"
	var t models.Transaction
	err := s.db.WithContext(ctx).
		Where("milestone_id = ? AND status IN ?", milestoneID, activeTransactionStatuses).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		return nil, mapError(op, err)
	}
	return &t, nil
}

func (s *GormStore) firstTransaction(ctx context.Context, op, query string, arg any) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.WithContext(ctx).Where(query, arg).First(&t).Error; err != nil {
		return nil, mapError(op, err)
	}
	return &t, nil
}

func (s *GormStore) CountTransactions(ctx context.Context, milestoneID uuid.UUID) (int64, error) {
	const op = "store.CountTransactions"
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("milestone_id = ?", milestoneID).Count(&n).Error
	return n, mapError(op, err)
}

func (s *GormStore) UpdateTransaction(ctx context.Context, t *models.Transaction, expectedVersion int) error {
	const op = "store.UpdateTransaction"
	return mapError(op, updateTransactionTx(s.db.WithContext(ctx), t, expectedVersion))
}

func updateTransactionTx(tx *gorm.DB, t *models.Transaction, expectedVersion int) error {
	const op = "store.UpdateTransaction"
	row := *t
	row.Version = expectedVersion + 1
	row.UpdatedAt = time.Now().UTC()
	res := tx.Model(&row).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("created_at").
		Updates(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return versionConflict(op, "transaction")
	}
	t.Version = row.Version
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *GormStore) ListStaleTransactions(ctx context.Context, status models.TransactionStatus, updatedBefore time.Time, limit int) ([]models.Transaction, error) {
	const op = "store.ListStaleTransactions"
	var out []models.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, updatedBefore).
		Order("updated_at ASC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	return out, mapError(op, err)
}

func (s *GormStore) ListTransactionsForContract(ctx context.Context, contractID uuid.UUID) ([]models.Transaction, error) {
	const op = "store.ListTransactionsForContract"
	var out []models.Transaction
	err := s.db.WithContext(ctx).Where("contract_id = ?", contractID).Order("created_at ASC").Find(&out).Error
	return out, mapError(op, err)
}
