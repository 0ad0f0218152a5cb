package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CareerForgeHQ/CareerForge/internal/pkg/middleware"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/session"
)

type AppRouter struct {
}

func (h AppRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)
}

func NewAppRouter() *AppRouter {
	return &AppRouter{}
}
