package routes

import (
	"smartwash-backend/internal/adapters/http/handlers"
	"smartwash-backend/internal/adapters/http/middleware"
	"smartwash-backend/internal/adapters/persistence/repositories"
	"smartwash-backend/internal/config"
	"smartwash-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.AuthService {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	machineRepo := repositories.NewMachineRepository(db)
	planRepo := repositories.NewPricePlanRepository(db)
	washModeRepo := repositories.NewWashModeRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Services
	walletService := services.NewWalletService(db, walletRepo, transactionRepo)
	authService := services.NewAuthService(db, userRepo, refreshTokenRepo, walletService, cfg)
	userService := services.NewUserService(userRepo)
	machineService := services.NewMachineService(machineRepo)
	planService := services.NewPricePlanService(db, planRepo)
	washModeService := services.NewWashModeService(db, washModeRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	deviceCommander := services.NewLogDeviceCommander()
	sessionService := services.NewSessionService(
		db,
		sessionRepo,
		machineRepo,
		planRepo,
		washModeRepo,
		userRepo,
		walletService,
		notificationService,
		deviceCommander,
	)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(walletService)
	machineHandler := handlers.NewMachineHandler(machineService)
	planHandler := handlers.NewPricePlanHandler(planService)
	washModeHandler := handlers.NewWashModeHandler(washModeService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	walletRoutes := apiV1.Group("/wallet")
	walletRoutes.Use(middleware.AuthMiddleware(cfg))
	setupWalletRoutes(walletRoutes, walletHandler)

	machineRoutes := apiV1.Group("/machines")
	machineRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMachineRoutes(machineRoutes, machineHandler)

	planRoutes := apiV1.Group("/price-plans")
	planRoutes.Use(middleware.AuthMiddleware(cfg))
	setupPricePlanRoutes(planRoutes, planHandler)

	washModeRoutes := apiV1.Group("/wash-modes")
	washModeRoutes.Use(middleware.AuthMiddleware(cfg))
	setupWashModeRoutes(washModeRoutes, washModeHandler)

	sessionRoutes := apiV1.Group("/sessions")
	sessionRoutes.Use(middleware.AuthMiddleware(cfg))
	setupSessionRoutes(sessionRoutes, sessionHandler)

	notificationRoutes := apiV1.Group("/notifications")
	notificationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupNotificationRoutes(notificationRoutes, notificationHandler)

	return authService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate-limited against brute force
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures profile and user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Authenticated users
	router.Get("/profile", handler.GetProfile)
	router.Patch("/profile", handler.UpdateProfile)
	router.Post("/change-password", handler.ChangePassword)

	// Admin only
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/:id", middleware.AdminOnly(), handler.GetByID)
	router.Patch("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

// setupWalletRoutes configures wallet routes (Authenticated)
func setupWalletRoutes(router fiber.Router, handler *handlers.WalletHandler) {
	router.Get("/balance", handler.GetBalance)
	router.Post("/topup", handler.Topup)
	router.Get("/transactions", handler.GetTransactions)
}

// setupMachineRoutes configures machine routes
func setupMachineRoutes(router fiber.Router, handler *handlers.MachineHandler) {
	// Authenticated users can browse machines
	router.Get("/", handler.List)
	router.Get("/:code", handler.GetByCode)

	// Admin only
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Patch("/:code", middleware.AdminOnly(), handler.Update)
	router.Delete("/:code", middleware.AdminOnly(), handler.Delete)
}

// setupPricePlanRoutes configures price plan routes
func setupPricePlanRoutes(router fiber.Router, handler *handlers.PricePlanHandler) {
	// Authenticated users can read plans
	router.Get("/", handler.List)
	router.Get("/active", handler.GetActive)
	router.Get("/:id", handler.GetByID)

	// Admin only
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Patch("/:id", middleware.AdminOnly(), handler.Update)
	router.Post("/:id/default", middleware.AdminOnly(), handler.SetDefault)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

// setupWashModeRoutes configures wash mode routes
func setupWashModeRoutes(router fiber.Router, handler *handlers.WashModeHandler) {
	// Authenticated users can browse wash programs
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)

	// Admin only
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Put("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

// setupSessionRoutes configures wash session routes
func setupSessionRoutes(router fiber.Router, handler *handlers.SessionHandler) {
	router.Post("/", handler.Start)
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)
	router.Post("/:id/cancel", handler.Cancel)

	// Admin only
	router.Post("/:id/end", middleware.AdminOnly(), handler.End)
}

// setupNotificationRoutes configures notification routes (Authenticated)
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.List)
	router.Get("/unread-count", handler.UnreadCount)
	router.Post("/read-all", handler.MarkAllRead)
	router.Post("/:id/read", handler.MarkRead)
}
