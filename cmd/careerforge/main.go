package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/cache"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/database"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/env"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/licensing"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/mail"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/middleware"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// Wire repositories, the licensing service and the access gate over the
	// live database connection.
	db := database.GetDB()
	repository.InitializeFactory(db)
	factory := repository.GetGlobalFactory()
	licensing.SetupService(factory.GetRepositories(), factory.GetTxManager(), mail.NewSMTPMailer())
	middleware.SetupAccessGate(middleware.NewAccessGate(
		factory.GetUserRepository(),
		factory.GetLicenseRepository(),
	))

	// Resolve the project root so the binary also runs from cmd/careerforge.
	basePaths := []string{
		"./",
		"../../",
		"../../../",
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	app := fiber.New(fiber.Config{
		AppName: "CareerForge",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
