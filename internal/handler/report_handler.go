package handler

import (
	"go-resto-ops/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// Download renders a report and sends it as an attachment
// GET /api/v1/reports?type=sales&format=csv&start=2026-01-01&end=2026-01-31
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	var req service.ReportRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query", "category": "validation"})
	}

	report, err := h.service.Generate(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}

	c.Attachment(report.Filename)
	c.Set(fiber.HeaderContentType, report.ContentType)
	return c.Send(report.Body)
}
