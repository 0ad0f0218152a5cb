package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/CareerForgeHQ/CareerForge/app/controllers"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	gate := middleware.GetAccessGate()

	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "CareerForge API",
		})
	})

	v1 := api.Group("/v1")
	v1.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "CareerForge API v1",
		})
	})

	// Public
	v1.Get("/stats", controllers.HandleStats)

	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Get("/activate/:token", controllers.HandleActivate)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", controllers.HandleLogout)

	// Authenticated account
	user := v1.Group("/user", gate.RequireAuth)
	user.Get("/me", controllers.HandleGetMe)
	user.Get("/notifications", controllers.HandleListNotifications)
	user.Post("/notifications/:notificationId/read", controllers.HandleMarkNotificationRead)

	// Institution management: admins of the institution (cross-institution
	// access is fenced inside the controllers, super admins pass everywhere).
	institutions := v1.Group("/institutions/:id", gate.RequireAuth, gate.RequireAdmin)
	institutions.Post("/invite", controllers.HandleInvite)
	institutions.Post("/bulk-invite", controllers.HandleBulkInvite)
	institutions.Get("/invitations", controllers.HandleListInvitations)
	institutions.Delete("/invitations/:invitationId", controllers.HandleCancelInvitation)
	institutions.Get("/users", controllers.HandleListInstitutionUsers)
	institutions.Delete("/users/:userId", controllers.HandleTerminateUser)
	institutions.Post("/users/:userId/reactivate", controllers.HandleReactivateUser)
	institutions.Get("/license", controllers.HandleGetLicense)

	// Platform operations
	admin := v1.Group("/admin", gate.RequireAuth, gate.RequireSuperAdmin)
	admin.Get("/institutions", controllers.HandleListInstitutions)
	admin.Post("/institutions", controllers.HandleCreateInstitution)
	admin.Patch("/institutions/:id", controllers.HandleUpdateInstitution)
	admin.Post("/institutions/:id/licenses", controllers.HandleCreateLicense)
	admin.Get("/stats/daily-registrations", controllers.HandleDailyRegistrationStats)

	// Paid feature surface
	career := v1.Group("/career", gate.RequireAuth, gate.RequirePaidFeatures)
	career.Get("/insights", controllers.HandleCareerInsights)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
