package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/handlers"
	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/middleware"
	"github.com/soltixdb/diskhealth/internal/utils"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, store metadata.ControlStore, cfg config.Config, version string) *handlers.Handler {
	h := handlers.New(logger, store, version)

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, "/health"))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	v1.Get("/severities", h.Severities)

	// Stateless evaluation
	v1.Post("/pdisks/reconcile", h.ReconcilePDisk)
	v1.Post("/pdisks/slots", h.Slots)
	v1.Post("/pdisks/info", h.PDiskInfo)
	v1.Post("/vdisks/reconcile", h.ReconcileVDisk)
	v1.Post("/nodes", h.Nodes)
	v1.Post("/groups", h.Groups)

	// Control-plane records
	control := v1.Group("/control")
	control.Put("/pdisks", h.PutControlPDisk)
	control.Get("/pdisks", h.ListControlPDisks)
	control.Get("/pdisks/:id", h.GetControlPDisk)
	control.Put("/vdisks", h.PutControlVDisk)
	control.Get("/vdisks", h.ListControlVDisks)
	control.Get("/vdisks/:id", h.GetControlVDisk)

	app.Use(h.NotFound)

	return h
}

// New creates the Fiber app of the disk health service
func New(logger *logging.Logger, store metadata.ControlStore, cfg config.Config, version string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "diskhealth",
		DisableStartupMessage: true,
		BodyLimit:             utils.MaxRequestBodySize,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, store, cfg, version)

	return app
}
