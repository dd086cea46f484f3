package handler

import (
	"go-resto-ops/internal/repository"
	"go-resto-ops/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
	ledger  service.LedgerService
}

func NewProductHandler(s service.ProductService, ledger service.LedgerService) *ProductHandler {
	return &ProductHandler{service: s, ledger: ledger}
}

// GetProducts lists the catalog
// GET /api/v1/products?active=true&category=mains
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		ActiveOnly: c.QueryBool("active", false),
		Category:   c.Query("category"),
	}
	products, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": product, "stock_status": product.StockStatus()})
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	product, err := h.service.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct edits catalog fields; stock is left untouched.
// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	product, err := h.service.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

func (h *ProductHandler) ActivateProduct(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *ProductHandler) DeactivateProduct(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *ProductHandler) setActive(c *fiber.Ctx, active bool) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.service.SetActive(c.UserContext(), actor(c), id, active)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// GetProductHistory returns the ledger entries of one product
// GET /api/v1/products/:id/transactions?limit=20
func (h *ProductHandler) GetProductHistory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	entries, err := h.ledger.ProductHistory(c.UserContext(), id, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
