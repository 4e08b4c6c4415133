// Package server wires repositories, services and handlers into the fiber app.
package server

import (
	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New builds the HTTP application. The caller owns db and categories.
func New(cfg *config.Config, db *gorm.DB, categories *cache.Categories, log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}

	// Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	historyRepo := repository.NewHistoryRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	invService := service.NewInventoryService(productRepo, historyRepo, categories, log.Named("inventory"))
	importService := service.NewImportService(productRepo, historyRepo, categories, log.Named("import"))
	historyService := service.NewHistoryService(historyRepo, cfg.Inventory.Location)
	authService := service.NewAuthService(userRepo, roleRepo, tokens, log.Named("auth"))

	invHandler := handler.NewInventoryHandler(invService, importService)
	historyHandler := handler.NewHistoryHandler(historyService)
	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(db, categories)

	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.Name,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORSOrigins}))
	app.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	app.Get("/healthz", healthHandler.Health)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// ============ PROTECTED ROUTES ============
	requireAuth := middleware.RequireAuth(authService)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Post("/logout", requireAuth, authHandler.Logout)

	products := api.Group("/products", requireAuth)

	// static paths first so they never read as an :id
	products.Get("/search", middleware.RequirePrivilege(model.PrivProductView), invHandler.SearchProducts)
	products.Get("/export", middleware.RequirePrivilege(model.PrivProductExport), invHandler.ExportProducts)
	products.Post("/import", middleware.RequirePrivilege(model.PrivProductImport), invHandler.ImportProducts)
	products.Get("/logs", middleware.RequirePrivilege(model.PrivHistoryView), historyHandler.GetLogs)
	products.Get("/logs/movement", middleware.RequirePrivilege(model.PrivHistoryView), historyHandler.GetStockMovement)

	products.Get("/", middleware.RequirePrivilege(model.PrivProductView), invHandler.GetProducts)
	products.Post("/", middleware.RequirePrivilege(model.PrivProductCreate), invHandler.CreateProduct)
	products.Put("/:id", middleware.RequirePrivilege(model.PrivProductUpdate), invHandler.UpdateProduct)
	products.Delete("/:id", middleware.RequirePrivilege(model.PrivProductDelete), invHandler.DeleteProduct)

	return app
}
