package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth        *AuthHandler
	Application *ApplicationHandler
	View        *ViewHandler
	Integration *IntegrationHandler
	Health      *HealthHandler
}

func SetupRoutes(app *fiber.App, h Handlers, authMiddleware, requireSession fiber.Handler) {
	// Health checks (public)
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1
	api := app.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/signup", h.Auth.SignUp)
	auth.Post("/signin", h.Auth.SignIn)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/signout", authMiddleware, h.Auth.SignOut)
	auth.Get("/me", authMiddleware, requireSession, h.Auth.Me)

	apps := api.Group("/applications", authMiddleware, requireSession)
	apps.Get("/", h.Application.List)
	apps.Post("/", h.Application.Create)
	apps.Delete("/edit", h.Application.CancelEdit)
	apps.Put("/:id", h.Application.Update)
	apps.Delete("/:id", h.Application.Delete)
	apps.Post("/:id/confirm-delete", h.Application.ConfirmDelete)
	apps.Post("/:id/edit", h.Application.BeginEdit)
	apps.Delete("/:id/reminder", h.Application.ClearReminder)

	// Derived views
	api.Get("/stats", authMiddleware, requireSession, h.View.Stats)
	api.Get("/dashboard", authMiddleware, requireSession, h.View.Dashboard)
	api.Get("/calendar", authMiddleware, requireSession, h.View.Calendar)
	api.Get("/reminders", authMiddleware, requireSession, h.View.Reminders)
	api.Get("/operations", authMiddleware, requireSession, h.View.Operations)

	api.Get("/integrations/:provider", authMiddleware, h.Integration.Connect)
}
