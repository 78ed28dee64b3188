package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"smartwash-backend/internal/adapters/http/middleware"
	"smartwash-backend/internal/adapters/http/routes"
	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"

	_ "smartwash-backend/docs" // Swagger docs
)

// @title SmartWash API
// @version 1.0
// @description Washing machine rental platform API

// @contact.name API Support
// @contact.email support@smartwash.local

// @license.name MIT

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("failed to auto migrate: %v", err)
	}
	log.Println("database migration completed")

	// Seed admin account, default price plan and wash modes
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Printf("warning: failed to seed database: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SmartWash API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	authService := routes.Setup(app, db, cfg)

	// Nightly cleanup of expired refresh tokens
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("30 3 * * *", func() {
		if err := authService.CleanupExpiredTokens(context.Background()); err != nil {
			log.Printf("refresh token cleanup failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("failed to schedule token cleanup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	log.Println("server stopped gracefully")
}
