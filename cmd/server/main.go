package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"swadhrama-api/internal/adapters/http/middleware"
	"swadhrama-api/internal/adapters/http/routes"
	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/adapters/persistence/repositories"
	"swadhrama-api/internal/config"
	"swadhrama-api/internal/core/services"
	"swadhrama-api/internal/pkg/logger"
	"swadhrama-api/internal/pkg/redis"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "swadhrama-api/docs" // Swagger docs
)

// @title Swadhrama API
// @version 1.0
// @description Devotional service booking API: OTP sign-in, booking requests and admin moderation.

// @contact.name API Support

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
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	logger.Init(cfg.AppMode)
	defer logger.Sync()

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Redis is optional; without it the OTP cooldown is checked in the database
	var throttle services.IssueThrottle
	if cfg.Redis.URL != "" {
		if err := redis.Init(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.GetLogger().Warn("Redis unavailable, using database cooldown", zap.Error(err))
		} else {
			throttle = redis.NewThrottle(redis.GetClient(), "otp:cooldown:")
			defer redis.Close()
			log.Println("✅ Redis connected")
		}
	}

	notifier := services.NewNotificationService(cfg)
	svc := routes.NewServices(db, cfg, notifier, notifier, throttle)

	// Cleanup of expired OTP challenges and refresh tokens
	cronService := services.NewCronService(
		repositories.NewOtpRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg.OTP.CleanupSchedule,
		cfg.OTP.Retention,
	)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Swadhrama API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, cfg, svc)

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
