package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microcredit-api/internal/adapters/email"
	"microcredit-api/internal/adapters/http/handlers"
	"microcredit-api/internal/adapters/http/middleware"
	"microcredit-api/internal/adapters/http/routes"
	"microcredit-api/internal/adapters/persistence/codestore"
	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/adapters/persistence/repositories"
	"microcredit-api/internal/config"
	"microcredit-api/internal/core/services"
	"microcredit-api/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "microcredit-api/docs" // Swagger docs
)

// @title Microcredit Origination API
// @version 1.0
// @description Solicitudes de microcrédito multi-entidad con verificación de email por código.

// @contact.name API Support
// @contact.email soporte@creditoexpress.pe

// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("prod")
		fatal("❌ Failed to load configuration", err)
	}

	logger.Init(cfg.AppMode)
	defer logger.Sync()

	ctx := context.Background()
	if !cfg.EnvFileLoaded {
		logger.Warn(ctx, "⚠️ No .env file found, using environment variables")
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		fatal("❌ Failed to connect to database", err)
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		fatal("❌ Failed to auto migrate", err)
	}
	logger.Info(ctx, "✅ Database migration completed")

	if err := config.NewSeeder(db, cfg.Seed).Run(ctx); err != nil {
		logger.Warn(ctx, "⚠️ Warning: Failed to seed data", zap.Error(err))
	}

	healthChecks := []handlers.Check{{Name: "database", Ping: func(context.Context) error { return config.HealthCheck() }}}

	var store services.CodeStore = codestore.NewMemoryStore()
	if cfg.Verification.Store == "redis" {
		client, err := config.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			fatal("❌ Failed to connect to redis", err)
		}
		defer client.Close()
		store = codestore.NewRedisStore(client)
		healthChecks = append(healthChecks, handlers.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	tenantRepo := repositories.NewTenantRepository(db)
	productRepo := repositories.NewProductRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)

	// Services
	sender := email.New(cfg.Email)
	bus := services.NewStatusBus()
	authService := services.NewAuthService(userRepo, refreshTokenRepo, tenantRepo, bus, cfg)
	verificationService := services.NewVerificationService(store, sender, authService, services.VerificationOptions{
		CodeTTL:        cfg.Verification.CodeTTL,
		ResendInterval: cfg.Verification.ResendInterval,
		MaxAttempts:    cfg.Verification.MaxAttempts,
		BrandName:      cfg.BrandName,
	})
	catalogService := services.NewCatalogService(tenantRepo, productRepo)
	applicationService := services.NewApplicationService(applicationRepo, services.NewNotificationService(sender, cfg.BrandName))
	wizardService := services.NewWizardService(authService, catalogService, applicationService, bus, services.DefaultWizardIdleTTL)

	cronService := services.NewCronService(verificationService, refreshTokenRepo, wizardService, cfg.Verification.SweepSpec)
	if err := cronService.Start(); err != nil {
		fatal("❌ Failed to start cron jobs", err)
	}
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.BrandName + " API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)

	routes.Setup(app, cfg, routes.Dependencies{
		Auth:         authService,
		Verification: verificationService,
		Catalog:      catalogService,
		Applications: applicationService,
		Wizards:      wizardService,
		HealthChecks: healthChecks,
	})

	go gracefulShutdown(app)

	logger.Info(ctx, "🚀 Server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		fatal("❌ Failed to start server", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := context.Background()
	logger.Info(ctx, "🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error(ctx, "❌ Error during shutdown", zap.Error(err))
	}
	logger.Info(ctx, "✅ Server stopped gracefully")
}

func fatal(msg string, err error) {
	logger.Error(context.Background(), msg, zap.Error(err))
	logger.Sync()
	os.Exit(1)
}
