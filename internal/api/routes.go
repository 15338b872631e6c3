package api

import (
	"github.com/bilgisen/autostudio/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouteConfig holds the settings routes need beyond the handlers.
type RouteConfig struct {
	// AdminAPIKey lets operators reach admin routes without the dashboard
	// password. Empty disables it.
	AdminAPIKey string
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, cfg RouteConfig) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	access := middleware.NewAccess(middleware.AccessConfig{Resolve: h.resolveSession})
	admin := middleware.AdminOnly(middleware.AdminConfig{
		Password: func() string { return h.studio.State().SystemConfig().AdminPasswordHash },
		APIKey:   cfg.AdminAPIKey,
	})

	app.All("/api/generate", postOnly, access, h.Generate)

	// API group with versioning
	api := app.Group("/api/v1")

	api.Get("/health", h.HealthCheck)
	api.Get("/countries", h.GetCountries)
	api.Post("/session", middleware.ValidateBody[sessionRequest](), h.CreateSession)

	adm := api.Group("/admin", admin)
	{
		adm.Get("/members", h.ListMembers)
		adm.Post("/members", h.AddMember)
		adm.Delete("/members/:id", h.DeleteMember)
		adm.Patch("/members/:id/status", h.ToggleMemberStatus)
		adm.Get("/config", h.GetSystemConfig)
		adm.Put("/config", middleware.ValidateBody[systemConfigRequest](), h.UpdateSystemConfig)
		adm.Post("/reset", h.Reset)
	}

	// Access is attached per route so unknown paths still fall through to
	// the 404 handler.
	api.Get("/session", access, h.GetSession)
	api.Put("/me/gemini-key", access, h.SetGeminiKey)

	api.Get("/trends", access, middleware.ValidateQuery[trendsQuery](), h.GetTrends)
	api.Get("/trends/daily", access, middleware.ValidateQuery[dailyQuery](), h.GetDailyTrends)
	api.Get("/trends/latest", access, h.GetLatestTrends)
	api.Post("/trends/auto-refresh", access, middleware.ValidateBody[autoRefreshRequest](), h.SetAutoRefresh)
	api.Post("/keywords", access, middleware.ValidateBody[keywordsRequest](), h.ResearchKeywords)
	api.Get("/suggestions", access, middleware.ValidateQuery[suggestionsQuery](), h.GetSuggestions)

	api.Post("/articles", access, middleware.ValidateBody[writeRequest](), h.CreateArticle)
	api.Get("/articles", access, h.ListArticles)
	api.Get("/articles/:id", access, h.GetArticle)
	api.Put("/articles/:id", access, h.UpdateArticle)
	api.Delete("/articles/:id", access, h.DeleteArticle)
	api.Post("/articles/:id/publish", access, h.PublishArticle)

	api.Get("/logs", access, h.GetLogs)
	api.Delete("/logs", access, h.ClearLogs)

	api.Get("/settings/wordpress", access, h.GetWordPressSettings)
	api.Put("/settings/wordpress", access, middleware.ValidateBody[wordPressRequest](), h.UpdateWordPressSettings)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}

// postOnly rejects every method but POST before any other check runs.
func postOnly(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method not allowed",
		})
	}
	return c.Next()
}
