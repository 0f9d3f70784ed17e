package handler

import (
	"errors"

	"fruitpos-backend/internal/repository"
	"fruitpos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SalesHandler struct {
	service service.SalesService
}

func NewSalesHandler(s service.SalesService) *SalesHandler {
	return &SalesHandler{service: s}
}

// GetTransactions returns the full ledger, newest first
// GET /api/transactions
func (h *SalesHandler) GetTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.GetAllTransactions()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(transactions)
}

// CreateTransaction records a sale; accepts canonical or legacy field names
// POST /api/transactions
func (h *SalesHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid JSON"})
	}

	tx, err := h.service.RecordSale(&req)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(201).JSON(tx)
}

// ReduceStockRequest represents the stock reduction body
type ReduceStockRequest struct {
	Quantity int `json:"quantity"`
}

// ReduceStock atomically decrements a product's stock for a sale
// PUT /api/products/:id/reduce-stock
func (h *SalesHandler) ReduceStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid product ID"})
	}

	var req ReduceStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid JSON"})
	}

	product, err := h.service.ReduceStock(id, req.Quantity)
	if err != nil {
		var insufficient *repository.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			return c.Status(400).JSON(fiber.Map{
				"message":   "Insufficient stock",
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			})
		case errors.Is(err, service.ErrProductNotFound):
			return c.Status(404).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, service.ErrInvalidQuantity):
			return c.Status(400).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(product)
}
