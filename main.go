package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/neptgadgets/school-nexus-final-sub000/app/config"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/auth"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/dashboard"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/records"
	"github.com/neptgadgets/school-nexus-final-sub000/app/services"
	"go.uber.org/zap"
)

// customErrorHandler renders every error as JSON.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		config.Logger().Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

func main() {
	cfg, err := config.Init()
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}
	defer cfg.Log.Sync()
	defer cfg.DB.Close()

	if err := database.RunMigrations(cfg.DB, cfg.Log); err != nil {
		cfg.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	sources, err := database.NewSources(cfg.DB)
	if err != nil {
		cfg.Log.Fatal("Failed to register data sources", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background scheduler
	reporter := &services.Reporter{
		Defs:    cfg.Resources,
		Sources: sources,
		Dir:     config.Conf.GetString("export_dir"),
		Log:     cfg.Log,
	}
	scheduler := &services.Scheduler{
		Hour:   config.Conf.GetInt("report_hour"),
		Minute: config.Conf.GetInt("report_minute"),
		Log:    cfg.Log,
		Task: func(ctx context.Context, now time.Time) error {
			_, err := reporter.GenerateDailyReports(ctx, now)
			return err
		},
	}
	schedulerDone := scheduler.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      config.Conf.GetString("app_name"),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := cfg.DB.PingContext(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth.SetupAuthRoutes(app)

	// Dashboard first: /api/dashboard/stats would otherwise match /api/:resource/stats
	dashboard.SetupDashboardRoutes(app, sources, cfg.Log)
	records.SetupRecordsRoutes(app, records.NewHandler(cfg.Resources, sources, cfg.Log))

	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	go func() {
		<-ctx.Done()
		cfg.Log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			cfg.Log.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := config.Conf.GetString("listen_addr")
	cfg.Log.Info("Server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		cfg.Log.Error("Server stopped", zap.Error(err))
	}
	stop()
	<-schedulerDone
}
