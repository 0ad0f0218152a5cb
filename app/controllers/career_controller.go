package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CareerForgeHQ/CareerForge/internal/pkg/entitlements"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/usercontext"
)

// HandleCareerInsights returns the caller's paid feature entitlements. The
// route sits behind RequirePaidFeatures, so reaching it already proves the
// tier qualifies.
func HandleCareerInsights(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	tier := entitlements.Normalize(uc.Tier)

	return c.JSON(fiber.Map{
		"tier": string(tier),
		"features": fiber.Map{
			"career_tools":    entitlements.CanUseCareerTools(tier),
			"roadmap_limit":   entitlements.RoadmapLimit(tier),
			"job_alert_limit": entitlements.JobAlertLimit(tier),
		},
	})
}
