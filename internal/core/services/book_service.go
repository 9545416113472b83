package services

import (
	"context"
	"errors"
	"log"
	"time"

	"nalanda-lms/internal/adapters/persistence/models"
	"nalanda-lms/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Book service errors
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrISBNAlreadyExists = errors.New("isbn already exists")
)

// BookService handles catalog business logic
type BookService struct {
	bookRepo repositories.BookRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// CreateBookInput represents create book input
type CreateBookInput struct {
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublicationDate time.Time `json:"publication_date"`
	Genre           string    `json:"genre"`
	Copies          int       `json:"copies"`
}

// UpdateBookInput represents update book input (partial)
type UpdateBookInput struct {
	Title           *string    `json:"title"`
	Author          *string    `json:"author"`
	PublicationDate *time.Time `json:"publication_date"`
	Genre           *string    `json:"genre"`
	Copies          *int       `json:"copies"`
}

// ListBooksInput represents list books input
type ListBooksInput struct {
	Offset int
	Limit  int
	Search string
}

// Create adds a new book to the catalog
func (s *BookService) Create(ctx context.Context, input *CreateBookInput) (*models.Book, error) {
	// ISBN must be unique
	if _, err := s.bookRepo.GetByISBN(ctx, input.ISBN); err == nil {
		return nil, ErrISBNAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	book := &models.Book{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		PublicationDate: input.PublicationDate,
		Genre:           input.Genre,
		Copies:          input.Copies,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Book created: %s (ISBN: %s)", book.Title, book.ISBN)
	return book, nil
}

// GetByID gets a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// List lists books with pagination and search
func (s *BookService) List(ctx context.Context, input *ListBooksInput) ([]*models.BookResponse, int64, error) {
	books, total, err := s.bookRepo.List(ctx, input.Offset, input.Limit, input.Search)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.BookResponse, len(books))
	for i, book := range books {
		responses[i] = book.ToResponse()
	}

	return responses, total, nil
}

// Update updates catalog fields of a book
func (s *BookService) Update(ctx context.Context, id uint, input *UpdateBookInput) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if input.Title != nil && *input.Title != "" {
		book.Title = *input.Title
	}
	if input.Author != nil && *input.Author != "" {
		book.Author = *input.Author
	}
	if input.PublicationDate != nil {
		book.PublicationDate = *input.PublicationDate
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}
	if input.Copies != nil && *input.Copies >= 0 {
		book.Copies = *input.Copies
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Book updated: %d", book.ID)
	return book, nil
}

// Delete removes a book from the catalog
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.bookRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Book deleted: %d", id)
	return nil
}
