package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"nalanda-lms/internal/core/services"
	"nalanda-lms/internal/pkg/pagination"
	"nalanda-lms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// CreateBookRequest represents create book request
type CreateBookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationDate string `json:"publication_date"`
	Genre           string `json:"genre"`
	Copies          int    `json:"copies"`
}

// UpdateBookRequest represents update book request (partial)
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	PublicationDate *string `json:"publication_date"`
	Genre           *string `json:"genre"`
	Copies          *int    `json:"copies"`
}

// parseDate accepts RFC3339 or plain yyyy-mm-dd dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// Create adds a book to the catalog (Admin only)
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return response.BadRequest(c, "Title is required")
	}
	if strings.TrimSpace(req.Author) == "" {
		return response.BadRequest(c, "Author is required")
	}
	if strings.TrimSpace(req.ISBN) == "" {
		return response.BadRequest(c, "ISBN is required")
	}
	if req.Copies < 0 {
		return response.BadRequest(c, "Copies must be zero or more")
	}

	var pubDate time.Time
	if req.PublicationDate != "" {
		var err error
		pubDate, err = parseDate(req.PublicationDate)
		if err != nil {
			return response.BadRequest(c, "Invalid publication date")
		}
	}

	input := &services.CreateBookInput{
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		ISBN:            strings.TrimSpace(req.ISBN),
		PublicationDate: pubDate,
		Genre:           strings.TrimSpace(req.Genre),
		Copies:          req.Copies,
	}

	book, err := h.bookService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrISBNAlreadyExists):
			return response.Conflict(c, "A book with this ISBN already exists")
		default:
			return response.InternalServerError(c, "Failed to create book")
		}
	}

	return response.Created(c, "Book created successfully", fiber.Map{"book": book.ToResponse()})
}

// List lists books with pagination and search
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	books, total, err := h.bookService.List(c.Context(), &services.ListBooksInput{
		Offset: params.Offset,
		Limit:  params.Limit,
		Search: pagination.GetSearch(c),
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Success(c, "Books loaded", pagination.NewResponse(books, params, total))
}

// Get returns a single book
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to load book")
	}

	return response.Success(c, "Book loaded", fiber.Map{"book": book.ToResponse()})
}

// Update updates a book (Admin only)
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateBookInput{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Copies: req.Copies,
	}
	if req.PublicationDate != nil {
		pubDate, err := parseDate(*req.PublicationDate)
		if err != nil {
			return response.BadRequest(c, "Invalid publication date")
		}
		input.PublicationDate = &pubDate
	}

	book, err := h.bookService.Update(c.Context(), uint(id), input)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to update book")
	}

	return response.Success(c, "Book updated successfully", fiber.Map{"book": book.ToResponse()})
}

// Delete removes a book (Admin only)
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to delete book")
	}

	return response.Success(c, "Book deleted successfully", nil)
}
