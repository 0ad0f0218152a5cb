package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/session"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session into a fresh user snapshot for
// every request. The user row is re-read per request on purpose: the access
// gate must see terminations and verification changes immediately, not a
// stale session copy.
func UserContextMiddleware(c *fiber.Ctx) error {
	anonymous := usercontext.UserContext{IsLoggedIn: false}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		usercontext.SetUserContext(c, anonymous)
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		usercontext.SetUserContext(c, anonymous)
		return c.Next()
	}

	id, ok := userID.(uint)
	if !ok {
		usercontext.SetUserContext(c, anonymous)
		return c.Next()
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal_server_error", "message": "Failed to load user"})
		}
		// Session points at a deleted account; treat as anonymous.
		usercontext.SetUserContext(c, anonymous)
		return c.Next()
	}

	uc := usercontext.UserContext{
		UserID:     user.ID,
		Username:   user.Name,
		Role:       user.Role,
		Tier:       user.SubscriptionTier,
		IsLoggedIn: true,
		IsVerified: user.IsVerified,
		IsActive:   user.IsActive(),
	}
	if user.InstitutionID != nil {
		uc.InstitutionID = *user.InstitutionID
	}
	usercontext.SetUserContext(c, uc)

	// Legacy compatibility locals still used by a few handlers
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, user.ID)
	c.Locals(usercontext.KeyUsername, user.Name)
	c.Locals(usercontext.KeyIsAdmin, user.IsAdminRole())

	return c.Next()
}
