package handler

import (
	"go-resto-ops/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TeamHandler struct {
	service service.TeamService
}

func NewTeamHandler(s service.TeamService) *TeamHandler {
	return &TeamHandler{service: s}
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *TeamHandler) GetProfiles(c *fiber.Ctx) error {
	profiles, err := h.service.List(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

func (h *TeamHandler) GetProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := h.service.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// Me returns the signed-in profile with its capabilities
// GET /api/v1/me
func (h *TeamHandler) Me(c *fiber.Ctx) error {
	a := actor(c)
	profile, err := h.service.Get(c.UserContext(), a, a.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *TeamHandler) CreateProfile(c *fiber.Ctx) error {
	var req service.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	profile, err := h.service.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Profile created", "data": profile})
}

// SetActive enables or disables sign-in for a profile
// PATCH /api/v1/team/:id/active
func (h *TeamHandler) SetActive(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	profile, err := h.service.SetActive(c.UserContext(), actor(c), id, req.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "data": profile})
}
