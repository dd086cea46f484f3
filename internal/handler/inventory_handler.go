package handler

import (
	"go-resto-ops/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	ledger service.LedgerService
}

func NewInventoryHandler(ledger service.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// CreateAdjustment records a manual stock change
// POST /api/v1/inventory/transactions
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	var req service.AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	entry, err := h.ledger.RecordAdjustment(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock adjusted", "data": entry})
}

// GetTransactions lists the newest ledger entries
// GET /api/v1/inventory/transactions?limit=50
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	entries, err := h.ledger.ListRecentTransactions(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	entry, err := h.ledger.GetTransaction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// GetLowStock lists active products at or below their minimum level
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.ledger.ListLowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}
