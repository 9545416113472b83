package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"nalanda-lms/internal/adapters/http/middleware"
	"nalanda-lms/internal/adapters/http/routes"
	"nalanda-lms/internal/adapters/persistence/models"
	"nalanda-lms/internal/adapters/persistence/repositories"
	"nalanda-lms/internal/config"
	"nalanda-lms/internal/core/services"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default admin (and a sample catalog in dev mode)
	seeder := config.NewSeeder(db)
	if err := seeder.Run(); err != nil {
		log.Printf("⚠️ Warning: seeding failed: %v", err)
	}
	if cfg.IsDev() {
		if err := seeder.SeedSampleBooks(); err != nil {
			log.Printf("⚠️ Warning: sample catalog seeding failed: %v", err)
		}
	}

	// Borrow event notifications (no-op unless AMQP_URL is set)
	notifyService := services.NewNotificationService()

	// Overdue sweep
	overdueService := services.NewOverdueService(
		repositories.NewBorrowRepository(db),
		notifyService,
		cfg.OverdueCron,
	)
	if err := overdueService.Start(); err != nil {
		log.Fatalf("❌ Failed to start overdue sweep: %v", err)
	}
	defer overdueService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Nalanda Library API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		JSONEncoder:  jsoniter.Marshal,
		JSONDecoder:  jsoniter.Unmarshal,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, notifyService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
