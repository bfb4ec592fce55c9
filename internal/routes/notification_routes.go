package routes

import (
	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	notifications := api.Group("/notifications", protected)

	notifications.Get("/", h.Notifications.GetNotifications)
	notifications.Get("/unread-count", h.Notifications.GetUnreadCount)
	notifications.Put("/read-all", h.Notifications.MarkAllAsRead)
	notifications.Put("/:id/read", h.Notifications.MarkAsRead)
}
