package routes

import (
	"relic-ledger/internal/adapters/http/handlers"
	"relic-ledger/internal/adapters/http/middleware"
	"relic-ledger/internal/adapters/persistence/repositories"
	"relic-ledger/internal/config"
	"relic-ledger/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and registers all routes
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	artifactRepo := repositories.NewArtifactRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)
	returnRepo := repositories.NewReturnRepository(db)

	// Services
	engine := services.NewComparisonEngine(cfg)
	taskStore := services.NewTaskStore(cfg)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	artifactService := services.NewArtifactService(artifactRepo)
	borrowService := services.NewBorrowService(borrowRepo, artifactRepo)
	returnService := services.NewReturnService(returnRepo, borrowRepo, engine)
	comparisonService := services.NewComparisonService(engine, taskStore)
	dashboardService := services.NewDashboardService(db)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	artifactHandler := handlers.NewArtifactHandler(artifactService)
	borrowHandler := handlers.NewBorrowHandler(borrowService)
	returnHandler := handlers.NewReturnHandler(returnService, comparisonService)
	adminHandler := handlers.NewAdminHandler(userService, dashboardService)

	auth := middleware.AuthMiddleware(cfg)

	// Public
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Auth
	authGroup := app.Group("/auth")
	authGroup.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authGroup.Post("/refresh", middleware.AuthRateLimiter(), authHandler.Refresh)
	authGroup.Get("/me", auth, authHandler.Me)
	authGroup.Get("/verify-token", authHandler.VerifyToken)
	authGroup.Post("/logout", auth, authHandler.Logout)

	// Artifact registry
	artifacts := app.Group("/artifacts", auth)
	artifacts.Get("/", artifactHandler.List)
	artifacts.Get("/:id", artifactHandler.Get)
	artifacts.Post("/", artifactHandler.Create)
	artifacts.Put("/:id", artifactHandler.Update)
	artifacts.Delete("/:id", middleware.AdminOnly(), artifactHandler.Delete)

	// Borrow ledger
	borrow := app.Group("/borrow", auth)
	borrow.Post("/", borrowHandler.Create)
	borrow.Get("/", borrowHandler.List)
	borrow.Post("/upload", borrowHandler.Upload)
	borrow.Get("/artifact/:artifact_no", borrowHandler.GetByArtifactNo)
	borrow.Get("/:id", borrowHandler.Get)
	borrow.Put("/:id", borrowHandler.Update)
	borrow.Delete("/:id", middleware.AdminOnly(), borrowHandler.Delete)

	// Return and verification workflow
	ret := app.Group("/return", auth)
	ret.Post("/", returnHandler.Create)
	ret.Get("/", returnHandler.List)
	ret.Post("/compare", returnHandler.Compare)
	ret.Post("/compare/async", returnHandler.CompareAsync)
	ret.Get("/compare/tasks/:id", returnHandler.GetTask)
	ret.Get("/:id", returnHandler.Get)
	ret.Patch("/:id/conclusion", middleware.AppraiserOrAdmin(), returnHandler.SetConclusion)
	ret.Delete("/:id", middleware.AdminOnly(), returnHandler.Delete)

	// Administration
	admin := app.Group("/admin", auth, middleware.AdminOnly())
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Post("/users", adminHandler.CreateUser)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Post("/users/:id/reset-password", adminHandler.ResetPassword)
}
