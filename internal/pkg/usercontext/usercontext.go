package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext is the per-request snapshot of the authenticated user that the
// access gate checks. It is resolved once by the user context middleware.
type UserContext struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	Tier          string `json:"tier"`
	InstitutionID uint   `json:"institution_id"` // 0 = independent account
	IsLoggedIn    bool   `json:"is_logged_in"`
	IsVerified    bool   `json:"is_verified"`
	IsActive      bool   `json:"is_active"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyUserContext); ctx != nil {
		if uc, ok := ctx.(UserContext); ok {
			return uc
		}
	}
	return UserContext{IsLoggedIn: false}
}

// SetUserContext stores the user context on the request
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user holds an admin role
func IsAdmin(c *fiber.Ctx) bool {
	role := GetUserContext(c).Role
	return role == "admin" || role == "super_admin"
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetUsername returns the current user's username, or empty string if not logged in
func GetUsername(c *fiber.Ctx) string {
	return GetUserContext(c).Username
}
