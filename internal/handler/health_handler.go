package handler

import (
	"go-inventory-ledger/internal/cache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db         *gorm.DB
	categories *cache.Categories
}

func NewHealthHandler(db *gorm.DB, categories *cache.Categories) *HealthHandler {
	return &HealthHandler{db: db, categories: categories}
}

// Health pings the database and, when configured, Redis
// GET /healthz
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok", "cache": "ok"}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		checks["database"] = err.Error()
		healthy = false
	}

	// the cache is optional; a failing Redis degrades but does not fail health
	if err := h.categories.Ping(c.UserContext()); err != nil {
		checks["cache"] = err.Error()
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "checks": checks})
	}
	return c.JSON(fiber.Map{"status": "ok", "checks": checks})
}
