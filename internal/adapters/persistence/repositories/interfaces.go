package repositories

import (
	"context"
	"errors"
	"time"

	"nalanda-lms/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ErrCopiesExhausted is returned when a conditional copy decrement matches no rows
var ErrCopiesExhausted = errors.New("no available copies")

// TxManager runs a function inside a single database transaction
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int, search string) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// BookRepository defines book repository interface.
// WithTx rebinds the repository onto a transaction handle so copy-count
// mutations and ledger writes can share one transactional boundary.
type BookRepository interface {
	WithTx(tx *gorm.DB) BookRepository
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int, search string) ([]*models.Book, int64, error)
	ListAll(ctx context.Context) ([]*models.Book, error)

	// DecrementCopies performs a single conditional update
	// (copies = copies - 1 WHERE copies > 0) and returns
	// ErrCopiesExhausted when no row matched.
	DecrementCopies(ctx context.Context, id uint) error
	IncrementCopies(ctx context.Context, id uint) error
}

// BorrowListFilter narrows a ledger listing
type BorrowListFilter struct {
	UserID uint
	BookID uint
	Status string
}

// BorrowRepository defines borrow ledger repository interface
type BorrowRepository interface {
	WithTx(tx *gorm.DB) BorrowRepository
	Create(ctx context.Context, record *models.BorrowRecord) error
	GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error)
	Update(ctx context.Context, record *models.BorrowRecord) error
	List(ctx context.Context, filter BorrowListFilter, offset, limit int) ([]*models.BorrowRecord, int64, error)

	// Report queries
	MostBorrowed(ctx context.Context, limit int) ([]*models.BookBorrowCount, error)
	MostActiveMembers(ctx context.Context, limit int) ([]*models.MemberBorrowCount, error)
	BorrowedCountsByBook(ctx context.Context) (map[uint]int64, error)

	// MarkOverdue flips past-due borrowed records to overdue and
	// returns the number of rows affected.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
