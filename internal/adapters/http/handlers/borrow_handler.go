package handlers

import (
	"errors"
	"strconv"

	"nalanda-lms/internal/core/services"
	"nalanda-lms/internal/pkg/pagination"
	"nalanda-lms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowHandler handles borrow workflow endpoints
type BorrowHandler struct {
	borrowService *services.BorrowService
}

// NewBorrowHandler creates a new borrow handler
func NewBorrowHandler(borrowService *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

// BorrowRequest represents a borrow intent
type BorrowRequest struct {
	BookID  uint   `json:"book_id"`
	DueDate string `json:"due_date"`
}

// Borrow lends a book to the current user
func (h *BorrowHandler) Borrow(c *fiber.Ctx) error {
	var req BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}
	if req.DueDate == "" {
		return response.BadRequest(c, "Due date is required")
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return response.BadRequest(c, "Invalid due date")
	}

	userID, _ := c.Locals("userID").(uint)

	record, err := h.borrowService.Borrow(c.Context(), &services.BorrowInput{
		UserID:  userID,
		BookID:  req.BookID,
		DueDate: dueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrBookNotAvailable):
			return response.Conflict(c, "Book not available")
		default:
			return response.InternalServerError(c, "Failed to borrow book")
		}
	}

	return response.Created(c, "Book borrowed successfully", fiber.Map{
		"borrow": record.ToResponse(),
	})
}

// Return marks a borrow record as returned
func (h *BorrowHandler) Return(c *fiber.Ctx) error {
	borrowID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid borrow ID")
	}

	userID, _ := c.Locals("userID").(uint)

	record, err := h.borrowService.Return(c.Context(), uint(borrowID), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBorrowNotFound):
			return response.NotFound(c, "Borrow record not found")
		case errors.Is(err, services.ErrNotBorrowed):
			return response.Conflict(c, "This book is not currently borrowed")
		default:
			return response.InternalServerError(c, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"borrow": record.ToResponse(),
	})
}

// List lists borrow records visible to the caller
func (h *BorrowHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	userFilter, _ := strconv.ParseUint(c.Query("user_id", "0"), 10, 32)
	bookFilter, _ := strconv.ParseUint(c.Query("book_id", "0"), 10, 32)

	filter := &services.BorrowFilter{
		UserID: uint(userFilter),
		BookID: uint(bookFilter),
		Status: c.Query("status"),
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	records, total, err := h.borrowService.List(c.Context(), filter, userID, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to list borrow records")
	}

	return response.Success(c, "Borrow records loaded", pagination.NewResponse(records, params, total))
}
