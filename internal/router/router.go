package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classwork-go-api/internal/config"
	"github.com/noah-isme/classwork-go-api/internal/handler"
	"github.com/noah-isme/classwork-go-api/internal/middleware"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassHandler        *handler.ClassHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	QuizHandler         *handler.QuizHandler
	GradebookHandler    *handler.GradebookHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware)
		deps.ClassHandler.Register(classes)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.QuizHandler != nil {
		quiz := api.Group("/quiz", jwtMiddleware)
		deps.QuizHandler.Register(quiz)
	}

	if deps.GradebookHandler != nil {
		gradebook := api.Group("/gradebook", jwtMiddleware)
		deps.GradebookHandler.Register(gradebook)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	// Teacher grading queue. RBAC at the route level keeps students from
	// even reaching the service call.
	if deps.SubmissionHandler != nil {
		teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.SubmissionHandler.RegisterTeacher(teacher)
	}
}
