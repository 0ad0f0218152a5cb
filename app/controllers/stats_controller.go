package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CareerForgeHQ/CareerForge/internal/pkg/statistics"
)

// HandleStats serves the public platform statistics from the cache.
func HandleStats(c *fiber.Ctx) error {
	go statistics.UpdateCacheIfNeeded()
	return c.JSON(statistics.GetStatistics())
}
