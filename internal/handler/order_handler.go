package handler

import (
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type UpdateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type AssignRequest struct {
	AssignedTo uuid.UUID `json:"assigned_to"`
}

// GetOrders lists orders, newest first
// GET /api/v1/orders?status=pending
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.service.List(c.UserContext(), model.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.service.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order created", "data": order})
}

// UpdateStatus moves an order along pending -> processing -> fulfilled, or cancels it
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.service.UpdateStatus(c.UserContext(), actor(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

// Assign hands an order to a team member
// PATCH /api/v1/orders/:id/assign
func (h *OrderHandler) Assign(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.service.Assign(c.UserContext(), actor(c), id, req.AssignedTo)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order assigned", "data": order})
}
