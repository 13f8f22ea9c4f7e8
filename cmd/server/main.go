// Package main is the entry point for the scouting report service. It wires
// configuration, the PostgreSQL pool, migrations, the optional Redis cache,
// the security stack, and the HTTP routes.
package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	pgstorage "github.com/gofiber/storage/postgres/v3"

	"github.com/jleboube/12U-form/internal/cache"
	"github.com/jleboube/12U-form/internal/config"
	"github.com/jleboube/12U-form/internal/database"
	"github.com/jleboube/12U-form/internal/handlers"
	"github.com/jleboube/12U-form/internal/middleware"
	"github.com/jleboube/12U-form/internal/security"
)

func main() {
	cfg := config.Load()

	if err := database.Connect(database.DefaultConfig(cfg.DatabaseURL)); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.BcryptCost = cfg.BcryptCost
	securityConfig.SessionTTL = cfg.SessionTTL

	securityLogger := security.NewLogger()

	// Alerter is nil until an alert channel (email, chat webhook) is wired.
	securityMiddleware := middleware.NewSecurityMiddleware(securityLogger, securityConfig, nil)

	registerRateLimiter := security.NewRateLimiter(
		securityConfig.RegisterRateLimit, // 10 registrations
		6*time.Minute,                    // per hour (60min / 10 = 6min refill)
	)

	reportWriteRateLimiter := security.NewRateLimiter(
		securityConfig.ReportWriteRateLimit, // 30 writes
		2*time.Second,                       // per minute (60s / 30 = 2s refill)
	)

	redisClient := cache.NewRedisClient(cfg.RedisAddr)
	appCache := cache.New(redisClient)
	if appCache.Enabled() {
		securityLogger.Info("Redis cache enabled")
	} else {
		securityLogger.Info("Redis cache disabled, serving directly from PostgreSQL")
	}

	// Sessions live in PostgreSQL so they survive restarts and are shared
	// across replicas.
	sessionStorage := pgstorage.New(pgstorage.Config{
		ConnectionURI: cfg.DatabaseURL,
		Table:         "session",
		Reset:         false,
		GCInterval:    10 * time.Minute,
	})

	sameSite := "Lax"
	if cfg.IsProduction() {
		sameSite = "Strict"
	}

	store := session.New(session.Config{
		Storage:        sessionStorage,
		Expiration:     cfg.SessionTTL,
		CookieName:     securityConfig.SessionCookieName,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: sameSite,
		CookiePath:     "/",
	})

	app := fiber.New(fiber.Config{
		AppName: "scouting-reports",
	})

	app.Use(recover.New())
	app.Use(securityMiddleware.RequestLogger())
	app.Use(securityMiddleware.SecureHeaders())

	authHandler := handlers.NewAuthHandler(store, securityConfig, securityMiddleware, securityLogger)
	groupHandler := handlers.NewGroupHandler(appCache, securityLogger)
	reportHandler := handlers.NewReportHandler(securityLogger)
	adminHandler := handlers.NewAdminHandler(securityConfig, appCache, securityLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		if !database.IsConnected() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public routes
	auth := app.Group("/api/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", securityMiddleware.RateLimit(registerRateLimiter, "/api/auth/register"), authHandler.Register)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", middleware.AuthRequired(store), authHandler.Me)

	app.Get("/api/groups", groupHandler.List)

	// Report routes require an approved account.
	reports := app.Group("/api/reports",
		middleware.AuthRequired(store),
		middleware.ApprovedOnly(),
	)
	reportWriteLimit := securityMiddleware.RateLimit(reportWriteRateLimiter, "/api/reports")
	reports.Get("/", reportHandler.List)
	reports.Post("/", reportWriteLimit, reportHandler.Create)
	reports.Get("/:id", reportHandler.Get)
	reports.Put("/:id", reportWriteLimit, reportHandler.Update)
	reports.Delete("/:id", reportWriteLimit, reportHandler.Delete)

	// Admin console
	admin := app.Group("/api/admin",
		middleware.AuthRequired(store),
		middleware.AdminOnly(),
	)
	admin.Get("/pending-users", adminHandler.PendingUsers)
	admin.Post("/approve-user/:id", adminHandler.DecideUser)
	admin.Get("/teams", adminHandler.ListTeams)
	admin.Post("/teams", adminHandler.CreateTeam)
	admin.Put("/teams/:id", adminHandler.UpdateTeam)
	admin.Get("/teams/:id/members", adminHandler.TeamMembers)
	admin.Get("/audit-log", adminHandler.AuditLog)

	securityLogger.Info("Server starting on port " + cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		securityLogger.Critical("Failed to start server", err)
		log.Fatalf("Failed to start server: %v", err)
	}
}
