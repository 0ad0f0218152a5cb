package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/licensing"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/usercontext"
)

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type bulkInviteRequest struct {
	Emails []string `json:"emails"`
	Role   string   `json:"role"`
}

// requireInstitution loads the institution from the :id route parameter and
// enforces that the caller belongs to it. Super admins may act on any
// institution; everyone else is fenced into their own.
func requireInstitution(c *fiber.Ctx) (*models.Institution, error) {
	id, err := paramUint(c, "id")
	if err != nil {
		return nil, jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid institution id")
	}

	institution, err := repository.GetGlobalFactory().GetInstitutionRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Institution not found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load institution")
	}

	uc := usercontext.GetUserContext(c)
	if uc.Role != models.ROLE_SUPER_ADMIN && uc.InstitutionID != institution.ID {
		return nil, jsonError(c, fiber.StatusForbidden, "forbidden", "You cannot manage another institution")
	}

	return institution, nil
}

// HandleInvite creates a single invitation. Seat availability is checked at
// invite time for student invitations.
func HandleInvite(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Email == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "email is required")
	}
	if req.Role == "" {
		req.Role = models.ROLE_STUDENT
	}

	uc := usercontext.GetUserContext(c)
	invitation, err := licensing.GetService().Invite(institution.ID, req.Email, req.Role, uc.UserID)
	if err != nil {
		return licensingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":       invitation.UUID,
		"email":      invitation.Email,
		"role":       invitation.Role,
		"status":     invitation.Status,
		"expires_at": invitation.ExpiresAt.UTC(),
	})
}

// HandleBulkInvite creates invitations for many emails at once and reports
// per-email success or failure.
func HandleBulkInvite(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	var req bulkInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if len(req.Emails) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "emails is required")
	}
	if req.Role == "" {
		req.Role = models.ROLE_STUDENT
	}

	uc := usercontext.GetUserContext(c)
	result := licensing.GetService().BulkInvite(institution.ID, req.Emails, req.Role, uc.UserID)

	return c.JSON(fiber.Map{
		"invited_count": len(result.Invited),
		"failed_count":  len(result.Failed),
		"invited":       result.Invited,
		"failed":        result.Failed,
	})
}

// HandleCancelInvitation expires a pending invitation.
func HandleCancelInvitation(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	invitationID, err := paramUint(c, "invitationId")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid invitation id")
	}

	if err := licensing.GetService().CancelInvitation(institution.ID, invitationID); err != nil {
		return licensingError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Invitation cancelled"})
}

// HandleListInvitations returns the invitations of the institution, newest
// first.
func HandleListInvitations(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 50)

	invitations, err := repository.GetGlobalFactory().GetInvitationRepository().
		ListByInstitution(institution.ID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load invitations")
	}

	return c.JSON(fiber.Map{"invitations": invitations})
}

// HandleListInstitutionUsers returns the member accounts of the institution.
func HandleListInstitutionUsers(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 50)

	users, err := repository.GetGlobalFactory().GetUserRepository().
		ListByInstitution(institution.ID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load users")
	}

	return c.JSON(fiber.Map{"users": users})
}

// HandleTerminateUser deactivates an institutional user and frees their seat.
func HandleTerminateUser(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	userID, err := paramUint(c, "userId")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid user id")
	}

	if err := licensing.GetService().Terminate(institution.ID, userID); err != nil {
		return licensingError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User deactivated"})
}

// HandleReactivateUser restores a deactivated user, re-consuming a seat when
// the license requires one.
func HandleReactivateUser(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	userID, err := paramUint(c, "userId")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid user id")
	}

	if err := licensing.GetService().Reactivate(institution.ID, userID); err != nil {
		return licensingError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User reactivated"})
}

// HandleGetLicense returns the current license and seat availability of the
// institution.
func HandleGetLicense(c *fiber.Ctx) error {
	institution, err := requireInstitution(c)
	if err != nil {
		return err
	}

	repos := repository.GetGlobalRepositories()
	license, err := repos.License.GetCurrent(institution.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "license_expired", "Institution has no current license")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load license")
	}

	seats, err := repos.License.SeatAvailability(institution.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to compute seat availability")
	}

	return c.JSON(fiber.Map{
		"license": license,
		"seats":   seats,
	})
}
