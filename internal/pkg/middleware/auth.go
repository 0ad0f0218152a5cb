package middleware

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/entitlements"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/usercontext"
)

// AccessGate is the authorization middleware applied to every authenticated
// route. The checks in RequireAuth run in a fixed order and short-circuit on
// the first failure: session, verification, account status, license validity.
type AccessGate struct {
	Users    repository.UserRepository
	Licenses repository.LicenseRepository
}

// NewAccessGate creates the access gate over the given repositories
func NewAccessGate(users repository.UserRepository, licenses repository.LicenseRepository) *AccessGate {
	return &AccessGate{Users: users, Licenses: licenses}
}

// RequireAuth validates the session and account state. For institutional
// users it additionally requires a current license; expired institutions are
// locked out even when the account itself is fine.
func (g *AccessGate) RequireAuth(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	if !uc.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthenticated", "message": "Login required"})
	}
	if !uc.IsVerified {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "verification_required", "message": "Please verify your email address"})
	}
	if !uc.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "account_inactive", "message": "Your account has been deactivated"})
	}

	if uc.InstitutionID != 0 {
		if _, err := g.Licenses.GetCurrent(uc.InstitutionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "license_expired", "message": "Your institution's license has expired"})
			}
			log.Printf("access gate: license lookup for institution %d failed: %v", uc.InstitutionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal_server_error", "message": "License verification failed"})
		}
		// Activity stamp is best-effort and must not block the request.
		userID := uc.UserID
		go func() {
			if err := g.Users.UpdateLastActive(userID, time.Now()); err != nil {
				log.Printf("access gate: last_active update for user %d failed: %v", userID, err)
			}
		}()
	}

	return c.Next()
}

// RequireAdmin allows only admin and super admin roles through.
func (g *AccessGate) RequireAdmin(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if uc.Role != models.ROLE_ADMIN && uc.Role != models.ROLE_SUPER_ADMIN {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "forbidden", "message": "Admin access required"})
	}
	return c.Next()
}

// RequireSuperAdmin allows only platform operators through.
func (g *AccessGate) RequireSuperAdmin(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if uc.Role != models.ROLE_SUPER_ADMIN {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "forbidden", "message": "Super admin access required"})
	}
	return c.Next()
}

// RequirePaidFeatures gates paid-tier functionality by subscription tier.
func (g *AccessGate) RequirePaidFeatures(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if !entitlements.CanUseCareerTools(entitlements.Normalize(uc.Tier)) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": "upgrade_required", "message": "This feature requires a paid or institutional plan"})
	}
	return c.Next()
}

// Global gate wired by the router at startup.
var gate *AccessGate

// SetupAccessGate initializes the global access gate instance
func SetupAccessGate(g *AccessGate) {
	gate = g
}

// GetAccessGate returns the global access gate instance
func GetAccessGate() *AccessGate {
	if gate == nil {
		panic("Access gate not initialized. Call SetupAccessGate first.")
	}
	return gate
}
