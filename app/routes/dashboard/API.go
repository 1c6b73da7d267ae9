package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/auth"
	"go.uber.org/zap"
)

// GetDashboardStatsAPI returns dashboard statistics as JSON
func GetDashboardStatsAPI(sources database.Sources, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := auth.CurrentUser(c)
		tenant := user.Tenant()
		allSchools := user.Role.CrossTenant()
		if !allSchools && tenant == "" {
			return c.Status(403).JSON(fiber.Map{"error": "No school assigned to this account"})
		}

		stats, err := ComputeStats(c.UserContext(), sources, tenant, allSchools, time.Now())
		if err != nil {
			logger.Error("Failed to compute dashboard statistics", zap.String("school_id", tenant), zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"error":   "Failed to fetch dashboard statistics",
				"details": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    stats,
		})
	}
}
