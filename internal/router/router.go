package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assignment-hub/internal/config"
	"github.com/noah-isme/gema-assignment-hub/internal/handler"
	"github.com/noah-isme/gema-assignment-hub/internal/middleware"
	"github.com/noah-isme/gema-assignment-hub/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	TopicHandler      *handler.TopicHandler
	TemplateHandler   *handler.TemplateHandler
	StudentHandler    *handler.StudentHandler
	HealthProbes      map[string]handler.HealthProbe
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	v2 := app.Group("/api/v2", jwtMiddleware)

	if deps.AssignmentHandler != nil {
		assignments := v2.Group("/assignments", middleware.RequireRole("parent", "student", "admin", "teacher"))
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.TopicHandler != nil {
		topics := v2.Group("/topics", middleware.RequireRole("parent", "student", "admin", "teacher"))
		deps.TopicHandler.Register(topics)
	}

	if deps.StudentHandler != nil {
		students := v2.Group("/students", middleware.RequireRole("parent", "student", "admin", "teacher"))
		deps.StudentHandler.Register(students)
	}

	if deps.TemplateHandler != nil {
		templates := v2.Group("/templates", middleware.RequireRole("parent", "admin", "teacher"))
		deps.TemplateHandler.Register(templates)
	}
}
