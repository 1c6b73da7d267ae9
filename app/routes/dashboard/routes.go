package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/auth"
	"go.uber.org/zap"
)

// SetupDashboardRoutes must run before the generic /api/:resource routes.
func SetupDashboardRoutes(app *fiber.App, sources database.Sources, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := app.Group("/api/dashboard", auth.AuthMiddleware, auth.RoleMiddleware(models.SuperAdmin, models.SchoolAdmin))
	api.Get("/stats", GetDashboardStatsAPI(sources, logger))
}
