package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	service service.HistoryService
}

func NewHistoryHandler(s service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: s}
}

// GetLogs returns filtered ledger entries with stats over the same filter
// GET /api/v1/products/logs?page&limit&productId&changeType&userId&date
func (h *HistoryHandler) GetLogs(c *fiber.Ctx) error {
	page, limit, msg := pageParams(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	result, err := h.service.Query(c.UserContext(), service.HistoryQuery{
		Page:       page,
		Limit:      limit,
		ProductID:  c.Query("productId"),
		ChangeType: c.Query("changeType"),
		UserID:     c.Query("userId"),
		Date:       c.Query("date"),
	})
	if err != nil {
		return respondError(c, err, "Error fetching inventory logs")
	}

	history := make([]model.HistoryResponse, len(result.History))
	for i := range result.History {
		history[i] = result.History[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"history":    history,
		"pagination": result.Pagination,
		"stats":      result.Stats,
		"filters":    result.Filters,
	})
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *HistoryHandler) GetStockMovement(c *fiber.Ctx) error {
	days, err := queryInt(c, "days")
	if err != nil {
		return badRequest(c, "Days must be an integer")
	}

	data, err := h.service.StockMovement(c.UserContext(), days)
	if err != nil {
		return respondError(c, err, "Failed to fetch stock movement")
	}

	if days == 0 {
		days = 7
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
