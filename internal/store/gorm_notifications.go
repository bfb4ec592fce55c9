package store

import (
	"context"
	"time"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	const op = "store.CreateNotification"
	return mapError(op, s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormStore) ListNotifications(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	const op = "store.ListNotifications"
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	err := q.Order("created_at DESC").Limit(clampLimit(limit)).Find(&out).Error
	return out, mapError(op, err)
}

func (s *GormStore) CountUnread(ctx context.Context, userID uint) (int64, error) {
	const op = "store.CountUnread"
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, mapError(op, err)
}

func (s *GormStore) MarkRead(ctx context.Context, userID, id uint) error {
	const op = "store.MarkRead"
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return mapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(op, "notification not found")
	}
	return nil
}

func (s *GormStore) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	const op = "store.MarkAllRead"
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected, mapError(op, res.Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	const op = "store.GetUser"
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, mapError(op, err)
	}
	return &u, nil
}

// DefaultBankAccount prefers the account flagged default, then the newest.
func (s *GormStore) DefaultBankAccount(ctx context.Context, userID uint) (*models.BankAccount, error) {
	const op = "store.DefaultBankAccount"
	var b models.BankAccount
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		First(&b).Error
	if err != nil {
		return nil, mapError(op, err)
	}
	return &b, nil
}
