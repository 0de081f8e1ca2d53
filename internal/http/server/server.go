package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"pdf2image/internal/config"
	"pdf2image/internal/http/handlers"
	"pdf2image/internal/http/middleware"
	"pdf2image/internal/infra/logging"
	"pdf2image/internal/infra/usage"
	"pdf2image/internal/storage"
	"pdf2image/internal/tokens"
)

// Deps carries everything the HTTP surface needs. The storage client and
// token cache are process-scoped and shared across requests.
type Deps struct {
	Config config.Config
	Store  storage.ObjectStore
	Usage  *usage.Counters
	Tokens *tokens.Cache
}

// New creates and configures a Fiber app instance.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               d.Config.Server.Prefork,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": msg,
				},
			})
		},
	})

	middleware.Register(app, d.Config, d.Tokens)

	v1 := app.Group("/v1")

	svc := handlers.NewConvertService(d.Config, d.Store, d.Usage)
	v1.Post("/convert", svc.HandleConversion)
	v1.Get("/usage/stats", svc.HandleUsageStats)

	v1.Get("/monitor", monitor.New())

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}
