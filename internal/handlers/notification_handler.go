package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"TalentHive/internal/logger"
	"TalentHive/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	log           *logger.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log *logger.Logger) *NotificationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationHandler{notifications: notifications, log: log}
}

// GetNotifications retrieves notifications for the authenticated user
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	unreadOnly := c.Query("unread_only", "false") == "true"
	notifications, err := h.notifications.List(c.UserContext(), userID, unreadOnly, intQuery(c, "limit", 50))
	if err != nil {
		return respondError(c, h.log, err)
	}
	unreadCount, err := h.notifications.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
		"unread_count":  unreadCount,
	})
}

// GetUnreadCount returns the count of unread notifications
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	unreadCount, err := h.notifications.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"unread_count": unreadCount,
	})
}

// MarkAsRead marks a specific notification as read
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification id",
		})
	}
	if err := h.notifications.MarkAsRead(c.UserContext(), userID, uint(id)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Notification marked as read",
	})
}

// MarkAllAsRead marks all notifications as read for the user
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	updated, err := h.notifications.MarkAllAsRead(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}
