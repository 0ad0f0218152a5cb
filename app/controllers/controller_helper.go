package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/internal/pkg/licensing"
)

// jsonError writes the standard error envelope.
func jsonError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// paramUint parses a numeric route parameter.
func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// queryInt reads an integer query parameter with a default.
func queryInt(c *fiber.Ctx, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// createUserError maps a user insert failure onto the API error taxonomy.
// Only a duplicate key reports email_taken; everything else is internal.
func createUserError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return jsonError(c, fiber.StatusConflict, "email_taken", "Email address is already registered")
	}
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Registration failed")
}

// licensingError maps service errors onto the API error taxonomy. Anything
// unrecognized is an internal error; details stay in the server log.
func licensingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, licensing.ErrSeatUnavailable):
		return jsonError(c, fiber.StatusConflict, "seat_unavailable", err.Error())
	case errors.Is(err, licensing.ErrInvitationInvalid):
		return jsonError(c, fiber.StatusBadRequest, "invitation_invalid", err.Error())
	case errors.Is(err, licensing.ErrEmailTaken):
		return jsonError(c, fiber.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, licensing.ErrAlreadyInvited):
		return jsonError(c, fiber.StatusConflict, "already_invited", err.Error())
	case errors.Is(err, licensing.ErrNoCurrentLicense):
		return jsonError(c, fiber.StatusForbidden, "license_expired", err.Error())
	case errors.Is(err, licensing.ErrInstitutionInactive):
		return jsonError(c, fiber.StatusForbidden, "institution_inactive", err.Error())
	case errors.Is(err, licensing.ErrNotInstitutionMember):
		return jsonError(c, fiber.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, licensing.ErrInvalidRole):
		return jsonError(c, fiber.StatusBadRequest, "invalid_role", err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "Resource not found")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Something went wrong")
	}
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
