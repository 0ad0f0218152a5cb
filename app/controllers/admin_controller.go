package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"github.com/CareerForgeHQ/CareerForge/app/repository"
)

type createInstitutionRequest struct {
	Name           string   `json:"name"`
	ContactEmail   string   `json:"contact_email"`
	Domain         string   `json:"domain"`
	AllowedDomains []string `json:"allowed_domains"`
	LogoURL        string   `json:"logo_url"`
	PrimaryColor   string   `json:"primary_color"`
}

type updateInstitutionRequest struct {
	Name           *string   `json:"name"`
	ContactEmail   *string   `json:"contact_email"`
	Domain         *string   `json:"domain"`
	AllowedDomains *[]string `json:"allowed_domains"`
	LogoURL        *string   `json:"logo_url"`
	PrimaryColor   *string   `json:"primary_color"`
	IsActive       *bool     `json:"is_active"`
}

type createLicenseRequest struct {
	LicenseType   string    `json:"license_type"`
	LicensedSeats *int      `json:"licensed_seats"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// HandleCreateInstitution registers a partner institution. Super admin only.
func HandleCreateInstitution(c *fiber.Ctx) error {
	var req createInstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	institution := &models.Institution{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Domain:       req.Domain,
		LogoURL:      req.LogoURL,
		PrimaryColor: req.PrimaryColor,
		IsActive:     true,
	}
	institution.SetAllowedDomains(req.AllowedDomains)

	if err := institution.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	if err := repository.GetGlobalFactory().GetInstitutionRepository().Create(institution); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create institution")
	}

	return c.Status(fiber.StatusCreated).JSON(institution)
}

// HandleUpdateInstitution applies a partial update to an institution.
func HandleUpdateInstitution(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid institution id")
	}

	repo := repository.GetGlobalFactory().GetInstitutionRepository()
	institution, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Institution not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load institution")
	}

	var req updateInstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	if req.Name != nil {
		institution.Name = *req.Name
	}
	if req.ContactEmail != nil {
		institution.ContactEmail = *req.ContactEmail
	}
	if req.Domain != nil {
		institution.Domain = *req.Domain
	}
	if req.AllowedDomains != nil {
		institution.SetAllowedDomains(*req.AllowedDomains)
	}
	if req.LogoURL != nil {
		institution.LogoURL = *req.LogoURL
	}
	if req.PrimaryColor != nil {
		institution.PrimaryColor = *req.PrimaryColor
	}
	if req.IsActive != nil {
		institution.IsActive = *req.IsActive
	}

	if err := institution.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	if err := repo.Update(institution); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update institution")
	}

	return c.JSON(institution)
}

// HandleListInstitutions returns a paginated list of institutions.
func HandleListInstitutions(c *fiber.Ctx) error {
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 50)

	repo := repository.GetGlobalFactory().GetInstitutionRepository()
	institutions, err := repo.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load institutions")
	}
	total, err := repo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to count institutions")
	}

	return c.JSON(fiber.Map{"institutions": institutions, "total": total})
}

// HandleDailyRegistrationStats returns per-day registration counts for the
// requested window (default: last 30 days).
func HandleDailyRegistrationStats(c *fiber.Ctx) error {
	days := queryInt(c, "days", 30)
	if days < 1 || days > 365 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "days must be between 1 and 365")
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	stats, err := repository.GetGlobalFactory().GetUserRepository().GetDailyStats(start, end)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load registration stats")
	}

	return c.JSON(fiber.Map{"daily_registrations": stats})
}

// HandleCreateLicense issues a new license for an institution, superseding
// any prior one. Super admin only.
func HandleCreateLicense(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid institution id")
	}

	repos := repository.GetGlobalRepositories()
	if _, err := repos.Institution.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Institution not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load institution")
	}

	var req createLicenseRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.LicenseType == models.LICENSE_TYPE_PER_STUDENT && (req.LicensedSeats == nil || *req.LicensedSeats <= 0) {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "per_student licenses need a positive seat count")
	}
	if !req.EndDate.After(req.StartDate) {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "end_date must be after start_date")
	}

	license := &models.License{
		InstitutionID: id,
		LicenseType:   req.LicenseType,
		LicensedSeats: req.LicensedSeats,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      true,
	}
	if license.LicenseType == models.LICENSE_TYPE_SITE {
		license.LicensedSeats = nil
	}

	if err := license.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	if err := repos.License.Create(license); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create license")
	}

	return c.Status(fiber.StatusCreated).JSON(license)
}
