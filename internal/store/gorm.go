package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// GormStore is the Postgres backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return apperr.New(apperr.KindInternal, "store.tx", "store has nil db")
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *GormStore) CreateContract(ctx context.Context, c *models.Contract) error {
	const op = "store.CreateContract"
	if c.Version == 0 {
		c.Version = 1
	}
	return mapError(op, s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	const op = "store.GetContract"
	var c models.Contract
	err := s.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Signatures", func(db *gorm.DB) *gorm.DB { return db.Order("signed_at ASC") }).
		Preload("Amendments", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, mapError(op, err)
	}
	return &c, nil
}

func (s *GormStore) SaveContract(ctx context.Context, c *models.Contract, expectedVersion int) error {
	const op = "store.SaveContract"
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		return saveContractTx(tx, c, expectedVersion)
	})
	return mapError(op, err)
}

func (s *GormStore) SaveRelease(ctx context.Context, c *models.Contract, contractVersion int, t *models.Transaction, transactionVersion int) error {
	const op = "store.SaveRelease"
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := updateTransactionTx(tx, t, transactionVersion); err != nil {
			return err
		}
		return saveContractTx(tx, c, contractVersion)
	})
	if err != nil {
		// The transaction rolled back; undo the in-memory version bumps too.
		c.Version = contractVersion
		t.Version = transactionVersion
	}
	return mapError(op, err)
}

// saveContractTx is the version guarded write of the aggregate root followed
// by an upsert of every owned child. Milestones dropped from the aggregate
// are deleted; signatures and amendments are never deleted.
func saveContractTx(tx *gorm.DB, c *models.Contract, expectedVersion int) error {
	const op = "store.SaveContract"
	now := time.Now().UTC()

	row := *c
	row.Milestones, row.Signatures, row.Amendments = nil, nil, nil
	row.Version = expectedVersion + 1
	row.UpdatedAt = now
	res := tx.Model(&row).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("created_at", clause.Associations).
		Updates(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return versionConflict(op, "contract")
	}

	keep := make([]uuid.UUID, 0, len(c.Milestones))
	for i := range c.Milestones {
		c.Milestones[i].ContractID = c.ID
		keep = append(keep, c.Milestones[i].ID)
	}
	drop := tx.Where("contract_id = ?", c.ID)
	if len(keep) > 0 {
		drop = drop.Where("id NOT IN ?", keep)
	}
	if err := drop.Delete(&models.Milestone{}).Error; err != nil {
		return err
	}
	if len(c.Milestones) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&c.Milestones).Error; err != nil {
			return err
		}
	}
	if len(c.Signatures) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c.Signatures).Error; err != nil {
			return err
		}
	}
	if len(c.Amendments) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "responded_at", "responded_by", "response_notes"}),
		}).Create(&c.Amendments).Error; err != nil {
			return err
		}
	}

	c.Version = row.Version
	c.UpdatedAt = now
	return nil
}

func (s *GormStore) ListContracts(ctx context.Context, f ContractFilter) ([]models.Contract, error) {
	const op = "store.ListContracts"
	q := s.db.WithContext(ctx).Model(&models.Contract{})
	switch f.Role {
	case "client":
		q = q.Where("client_id = ?", f.UserID)
	case "freelancer":
		q = q.Where("freelancer_id = ?", f.UserID)
	default:
		q = q.Where("client_id = ? OR freelancer_id = ?", f.UserID, f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []models.Contract
	err := q.Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Limit(clampLimit(f.Limit)).
		Offset(f.Offset).
		Find(&out).Error
	if err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}
