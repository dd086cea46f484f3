package handler

import (
	"errors"

	"go-resto-ops/internal/middleware"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps the service error taxonomy onto HTTP statuses. The body
// always carries a plain message and the error category.
func respondError(c *fiber.Ctx, err error) error {
	var (
		ve *service.ValidationError
		oe *service.OutOfRangeError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error(), "category": "validation", "field": ve.Field})
	case errors.As(err, &oe):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":         oe.Error(),
			"category":      "out_of_range",
			"current_stock": oe.CurrentStock,
			"change":        oe.Change,
		})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrProfileInactive):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error(), "category": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "category": "not_found"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "category": "invalid_transition"})
	case errors.Is(err, service.ErrStockConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "category": "conflict"})
	case errors.Is(err, service.ErrSKUExists), errors.Is(err, service.ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "category": "duplicate"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrSessionExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "category": "unauthorized"})
	case errors.Is(err, service.ErrWrongPassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "category": "validation"})
	}
	// Backend details stay in the logs.
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":    "Something went wrong while talking to the database, please try again",
		"category": "backend",
	})
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON", "category": "validation"})
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Field: "id", Reason: "must be a valid UUID"}
	}
	return id, nil
}

func actor(c *fiber.Ctx) model.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}
