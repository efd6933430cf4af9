package router

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/turmas-api/internal/config"
	"github.com/noah-isme/turmas-api/internal/handler"
	"github.com/noah-isme/turmas-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ClassHandler      *handler.ClassHandler
	EnrollmentHandler *handler.EnrollmentHandler
	AttendanceHandler *handler.AttendanceHandler
	GradeHandler      *handler.GradeHandler
	CommentHandler    *handler.CommentHandler
	SeedHandler       *handler.SeedHandler
	SessionMiddleware fiber.Handler
	HealthProbe       func(context.Context) error
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbe))

	// Without a session middleware every protected route answers 401.
	session := deps.SessionMiddleware
	if session == nil {
		session = func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication unavailable")
		}
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/dev"))
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), session)
	}

	// Registered after the public routes so they never reach the session check.
	protected := api.Group("", session)
	if deps.ClassHandler != nil {
		deps.ClassHandler.Register(protected)
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(protected)
	}
	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(protected)
	}
	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(protected)
	}
	if deps.CommentHandler != nil {
		deps.CommentHandler.Register(protected)
	}
}
