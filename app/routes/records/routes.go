package records

import (
	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/auth"
	"go.uber.org/zap"
)

// Handler serves every resource declared in Defs from the matching source.
type Handler struct {
	Defs    *listing.Definitions
	Sources database.Sources
	Log     *zap.Logger
}

func NewHandler(defs *listing.Definitions, sources database.Sources, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Defs: defs, Sources: sources, Log: logger}
}

// SetupRecordsRoutes registers the generic list routes. Register more specific /api
// routes before calling it.
func SetupRecordsRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api", auth.AuthMiddleware)
	api.Get("/:resource", h.ListAPI)
	api.Get("/:resource/stats", h.StatsAPI)
	api.Get("/:resource/export", h.ExportAPI)
}
