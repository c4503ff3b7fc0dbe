package routes

import (
	"time"

	"microcredit-api/internal/adapters/http/handlers"
	"microcredit-api/internal/adapters/http/middleware"
	"microcredit-api/internal/config"
	"microcredit-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the HTTP layer serves
type Dependencies struct {
	Auth         *services.AuthService
	Verification *services.VerificationService
	Catalog      *services.CatalogService
	Applications *services.ApplicationService
	Wizards      *services.WizardService
	HealthChecks []handlers.Check
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(cfg, deps.HealthChecks...)
	authHandler := handlers.NewAuthHandler(deps.Auth, cfg)
	verificationHandler := handlers.NewVerificationHandler(deps.Verification)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	wizardHandler := handlers.NewWizardHandler(deps.Wizards)
	applicationHandler := handlers.NewApplicationHandler(deps.Applications)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(api.Group("/auth"), authHandler, verificationHandler, cfg)
	setupCatalogRoutes(api.Group("/tenants"), catalogHandler)

	wizardRoutes := api.Group("/wizard", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupWizardRoutes(wizardRoutes, wizardHandler)

	applicationRoutes := api.Group("/applications", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	applicationRoutes.Get("/my", applicationHandler.ListMine)
	applicationRoutes.Get("/:id", applicationHandler.Get)
	applicationRoutes.Get("/:id/history", applicationHandler.History)

	adminRoutes := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.StaffOnly(), middleware.NoCacheHeaders())
	adminRoutes.Get("/applications", applicationHandler.List)
	adminRoutes.Put("/applications/:id/status", applicationHandler.UpdateStatus)
}

// setupAuthRoutes configures account and email verification routes.
// StrictRateLimiter = 3 req/min/IP on code issuing, VerifyRateLimiter =
// 5 req/min/IP on verification, AuthRateLimiter = 5 req/min/IP on login and register.
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, v *handlers.VerificationHandler, cfg *config.Config) {
	router.Use(middleware.NoCacheHeaders())

	router.Post("/send-verification-code", middleware.StrictRateLimiter(), v.SendCode)
	router.Post("/verify-code", middleware.VerifyRateLimiter(), v.VerifyCode)
	router.Get("/has-valid-code/:email", v.HasValidCode)

	router.Post("/register", middleware.AuthRateLimiter(), h.Register)
	router.Post("/login", middleware.AuthRateLimiter(), h.Login)
	router.Post("/refresh", h.RefreshToken)
	router.Post("/logout", middleware.OptionalAuth(cfg), h.Logout)

	router.Get("/me", middleware.AuthMiddleware(cfg), h.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), h.LogoutAll)
}

func setupCatalogRoutes(router fiber.Router, h *handlers.CatalogHandler) {
	router.Use(middleware.CacheControl(5 * time.Minute))
	router.Get("/", h.ListTenants)
	router.Get("/:tenantId/products", h.ListProducts)
}

func setupWizardRoutes(router fiber.Router, h *handlers.WizardHandler) {
	router.Post("/", h.Start)
	router.Get("/", h.Get)
	router.Delete("/", h.Discard)
	router.Patch("/fields", h.Patch)
	router.Post("/product", h.SelectProduct)
	router.Post("/location", h.SetLocation)
	router.Post("/next", h.Next)
	router.Post("/previous", h.Previous)
	router.Post("/submit", h.Submit)
}
