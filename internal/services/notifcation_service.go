package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"time"

	"gorm.io/datatypes"

	"TalentHive/internal/events"
	"TalentHive/internal/logger"
	"TalentHive/internal/metrics"
	"TalentHive/internal/models"
	"TalentHive/internal/store"
)

// Event is one notification addressed to one participant.
type Event struct {
	UserID  uint
	Type    models.NotificationType
	Title   string
	Message string
	Data    map[string]any
}

// Notifier delivers events. Callers treat it as fire and forget: an error
// is logged and never undoes the transition that produced the event.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NotificationService persists in-app notifications and fans them out to
// email and the event bus when those are configured.
type NotificationService struct {
	store     store.NotificationStore
	directory store.DirectoryStore
	email     EmailSender
	events    EventPublisher
	log       *logger.Logger
}

func NewNotificationService(st store.Store, email EmailSender, publisher EventPublisher, log *logger.Logger) *NotificationService {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationService{store: st, directory: st, email: email, events: publisher, log: log}
}

// Notify creates the notification row, then emails and publishes it. The
// row is the source of truth; email and bus failures are reported but the
// row stays.
func (s *NotificationService) Notify(ctx context.Context, e Event) error {
	if e.UserID == 0 {
		return nil
	}
	var data datatypes.JSON
	if e.Data != nil {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		data = b
	}
	n := models.Notification{
		UserID:  e.UserID,
		Type:    e.Type,
		Title:   e.Title,
		Message: e.Message,
		Data:    data,
	}
	if err := s.store.CreateNotification(ctx, &n); err != nil {
		metrics.RecordNotificationFailure("inbox")
		return fmt.Errorf("failed to create notification: %w", err)
	}

	var errs []error
	if s.email != nil {
		if err := s.sendEmail(ctx, e); err != nil {
			metrics.RecordNotificationFailure("email")
			errs = append(errs, err)
		}
	}
	if s.events != nil {
		env := events.Envelope{Type: string(e.Type), UserID: e.UserID, OccurredAt: time.Now().UTC(), Data: e.Data}
		if err := s.events.Publish(ctx, events.RoutingKey(string(e.Type)), env); err != nil {
			metrics.RecordNotificationFailure("bus")
			errs = append(errs, fmt.Errorf("failed to publish %s: %w", e.Type, err))
		}
	}
	return errors.Join(errs...)
}

func (s *NotificationService) sendEmail(ctx context.Context, e Event) error {
	u, err := s.directory.GetUser(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve email for user %d: %w", e.UserID, err)
	}
	if u.Email == "" {
		return nil
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", html.EscapeString(u.FullName), html.EscapeString(e.Message))
	return s.email.Send(ctx, u.Email, e.Title, body)
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uint) error {
	return s.store.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}
