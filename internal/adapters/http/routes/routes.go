package routes

import (
	"swadhrama-api/internal/adapters/http/handlers"
	"swadhrama-api/internal/adapters/http/middleware"
	"swadhrama-api/internal/adapters/persistence/repositories"
	"swadhrama-api/internal/config"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Services groups the application services the router exposes
type Services struct {
	Auth    *services.AuthService
	Booking *services.BookingService
	Admin   *services.AdminService
}

// NewServices wires repositories and services on top of db. throttle may be
// nil, in which case the OTP resend cooldown is enforced by the database.
func NewServices(
	db *gorm.DB,
	cfg *config.Config,
	sender services.OTPSender,
	notifier services.BookingNotifier,
	throttle services.IssueThrottle,
) *Services {
	uow := repositories.NewUnitOfWork(db)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	otpRepo := repositories.NewOtpRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)

	otpService := services.NewOTPService(uow, otpRepo, userRepo, sender, throttle, cfg.OTP.ResendCooldown)

	return &Services{
		Auth:    services.NewAuthService(uow, userRepo, refreshTokenRepo, otpService, cfg),
		Booking: services.NewBookingService(uow, bookingRepo, userRepo, notifier),
		Admin:   services.NewAdminService(uow, userRepo, refreshTokenRepo, bookingRepo),
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, svc *Services) {
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	profileHandler := handlers.NewProfileHandler(svc.Auth)
	bookingHandler := handlers.NewBookingHandler(svc.Booking)
	adminHandler := handlers.NewAdminHandler(svc.Admin)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, authHandler, profileHandler, bookingHandler, adminHandler, svc.Auth, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	bookingHandler *handlers.BookingHandler,
	adminHandler *handlers.AdminHandler,
	roles middleware.RoleLookup,
	cfg *config.Config,
) {
	authRoutes := router.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Get("/", profileHandler.GetProfile)
	profileRoutes.Put("/", profileHandler.UpdateProfile)

	bookingRoutes := router.Group("/bookings")
	bookingRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBookingRoutes(bookingRoutes, bookingHandler)

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.CurrentRole(roles))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// OTP routes (3 req/min/IP)
	router.Post("/otp/send", middleware.StrictRateLimiter(), handler.SendOTP)
	router.Post("/otp/verify", middleware.StrictRateLimiter(), handler.VerifyOTP)
	router.Post("/password/reset", middleware.StrictRateLimiter(), handler.ResetPassword)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupBookingRoutes configures booking routes (Authenticated)
func setupBookingRoutes(router fiber.Router, handler *handlers.BookingHandler) {
	router.Post("/", middleware.RequireRoles(domain.RoleMember, domain.RoleAdmin), handler.Create)
	router.Get("/", handler.List)
	router.Get("/scheduled", handler.ListScheduled)
	router.Get("/:id", handler.Get)

	decide := middleware.RequireRoles(domain.RoleProvider, domain.RoleAdmin)
	router.Post("/:id/accept", decide, handler.Accept)
	router.Post("/:id/reject", decide, handler.Reject)
	router.Post("/:id/reschedule", handler.Reschedule)
}

// setupAdminRoutes configures user moderation routes (Admin only)
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Get("/users", handler.ListUsers)
	router.Patch("/users/:id/status", handler.UpdateStatus)
	router.Patch("/users/:id/role", handler.UpdateRole)
	router.Delete("/users/:id", handler.DeleteUser)
	router.Get("/stats", handler.Stats)
}
