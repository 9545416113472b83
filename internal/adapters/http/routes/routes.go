package routes

import (
	"nalanda-lms/internal/adapters/http/handlers"
	"nalanda-lms/internal/adapters/http/middleware"
	"nalanda-lms/internal/adapters/persistence/repositories"
	"nalanda-lms/internal/config"
	"nalanda-lms/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, notifyService *services.NotificationService) {
	// Initialize repositories
	txManager := repositories.NewTxManager(db)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	bookService := services.NewBookService(bookRepo)
	borrowService := services.NewBorrowService(txManager, bookRepo, borrowRepo, notifyService)
	reportService := services.NewReportService(bookRepo, borrowRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService)
	borrowHandler := handlers.NewBorrowHandler(borrowService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	v1 := app.Group("/api/v1")
	auth := middleware.AuthMiddleware(cfg)

	// Auth routes
	authGroup := v1.Group("/auth", middleware.NoCacheHeaders())
	authGroup.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authGroup.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authGroup.Post("/refresh", middleware.AuthRateLimiter(), authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/logout-all", auth, authHandler.LogoutAll)

	// User routes
	users := v1.Group("/users", auth)
	users.Get("/profile", userHandler.Profile)
	users.Put("/profile", userHandler.UpdateProfile)
	users.Put("/password", userHandler.ChangePassword)
	users.Get("/", middleware.AdminOnly(), userHandler.List)
	users.Put("/:id", middleware.AdminOnly(), userHandler.UpdateByAdmin)
	users.Delete("/:id", middleware.AdminOnly(), userHandler.Delete)

	// Book catalog routes
	books := v1.Group("/books", auth)
	books.Get("/", bookHandler.List)
	books.Get("/:id", bookHandler.Get)
	books.Post("/", middleware.AdminOnly(), bookHandler.Create)
	books.Put("/:id", middleware.AdminOnly(), bookHandler.Update)
	books.Delete("/:id", middleware.AdminOnly(), bookHandler.Delete)

	// Borrow workflow routes
	borrows := v1.Group("/borrows", auth)
	borrows.Post("/", borrowHandler.Borrow)
	borrows.Put("/:id/return", borrowHandler.Return)
	borrows.Get("/", borrowHandler.List)

	// Report routes (Admin only; snapshots tolerate short shared caching)
	reports := v1.Group("/reports", auth, middleware.AdminOnly(), middleware.ReportCache())
	reports.Get("/most-borrowed", reportHandler.MostBorrowed)
	reports.Get("/active-members", reportHandler.ActiveMembers)
	reports.Get("/availability", reportHandler.Availability)
}
