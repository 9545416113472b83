package handlers

import (
	"strconv"

	"nalanda-lms/internal/core/services"
	"nalanda-lms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// getTopN reads the "top" query parameter
func getTopN(c *fiber.Ctx) int {
	topN, _ := strconv.Atoi(c.Query("top", "0"))
	return topN
}

// MostBorrowed returns the most-borrowed books ranking
func (h *ReportHandler) MostBorrowed(c *fiber.Ctx) error {
	rows, err := h.reportService.MostBorrowedBooks(c.Context(), getTopN(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Most borrowed books", fiber.Map{"books": rows})
}

// ActiveMembers returns the most active members ranking
func (h *ReportHandler) ActiveMembers(c *fiber.Ctx) error {
	rows, err := h.reportService.ActiveMembers(c.Context(), getTopN(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Most active members", fiber.Map{"members": rows})
}

// Availability returns the book availability summary
func (h *ReportHandler) Availability(c *fiber.Ctx) error {
	summary, err := h.reportService.AvailabilitySummary(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Book availability", summary)
}
