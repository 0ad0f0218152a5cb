package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/usercontext"
)

// HandleListNotifications returns the caller's notifications, newest first.
func HandleListNotifications(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 50)

	notifications, err := repository.GetGlobalFactory().GetNotificationRepository().
		ListByUser(uc.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load notifications")
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

// HandleMarkNotificationRead marks one of the caller's notifications as read.
func HandleMarkNotificationRead(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	id, err := paramUint(c, "notificationId")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid notification id")
	}

	if err := repository.GetGlobalFactory().GetNotificationRepository().MarkRead(id, uc.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Notification not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update notification")
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
