package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/minijira/issue-tracker/internal/observability"
)

// ServerConfig bundles everything needed to build the fiber app.
type ServerConfig struct {
	AppName    string
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Middleware MiddlewareConfig
	Routes     RouteConfig
}

// NewServer builds a fiber app with the global middleware chain and all
// routes registered.
func NewServer(cfg ServerConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.Middleware)
	RegisterRoutes(app, cfg.Routes)
	return app
}
