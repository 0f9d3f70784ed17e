package handler

import (
	"strconv"

	"fruitpos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
}

func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: s}
}

// GetSummary returns total revenue, today's revenue, and transaction count
// GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Failed to compute summary"})
	}
	return c.JSON(summary)
}

// GetBestSelling returns per-product rankings by quantity sold
// GET /api/analytics/best-selling
func (h *AnalyticsHandler) GetBestSelling(c *fiber.Ctx) error {
	items, err := h.service.BestSelling(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Failed to compute best sellers"})
	}
	return c.JSON(items)
}

// GetDailySales returns per-day revenue for a window ending today
// GET /api/analytics/daily-sales?days=7
func (h *AnalyticsHandler) GetDailySales(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	entries, err := h.service.DailySales(c.Context(), days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Failed to compute daily sales"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   entries,
	})
}
