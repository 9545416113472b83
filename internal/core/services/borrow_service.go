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

// Borrow workflow errors
var (
	ErrBookNotAvailable = errors.New("book not available")
	ErrBorrowNotFound   = errors.New("borrow record not found")
	ErrNotBorrowed      = errors.New("book is not currently borrowed")
)

// BorrowService orchestrates the borrow/return workflow against the
// catalog and the borrow ledger. Copy-count mutation and ledger writes
// always share one transaction so a crash cannot leave them out of sync.
type BorrowService struct {
	txm        repositories.TxManager
	bookRepo   repositories.BookRepository
	borrowRepo repositories.BorrowRepository
	notify     *NotificationService
}

// NewBorrowService creates a new borrow service
func NewBorrowService(
	txm repositories.TxManager,
	bookRepo repositories.BookRepository,
	borrowRepo repositories.BorrowRepository,
	notify *NotificationService,
) *BorrowService {
	return &BorrowService{
		txm:        txm,
		bookRepo:   bookRepo,
		borrowRepo: borrowRepo,
		notify:     notify,
	}
}

// BorrowInput represents borrow intent
type BorrowInput struct {
	UserID  uint
	BookID  uint
	DueDate time.Time
}

// BorrowFilter narrows a borrow listing
type BorrowFilter struct {
	UserID uint
	BookID uint
	Status string
	Offset int
	Limit  int
}

// Borrow lends one copy of a book to a user.
// The conditional decrement runs inside the same transaction as the
// ledger insert; when no copy is left it fails with ErrBookNotAvailable
// and nothing is mutated.
func (s *BorrowService) Borrow(ctx context.Context, input *BorrowInput) (*models.BorrowRecord, error) {
	// Existence check first so a missing book is reported as not-found
	// rather than not-available.
	if _, err := s.bookRepo.GetByID(ctx, input.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	var record *models.BorrowRecord
	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		borrowRepo := s.borrowRepo.WithTx(tx)

		if err := bookRepo.DecrementCopies(ctx, input.BookID); err != nil {
			if errors.Is(err, repositories.ErrCopiesExhausted) {
				return ErrBookNotAvailable
			}
			return err
		}

		record = &models.BorrowRecord{
			UserID:     input.UserID,
			BookID:     input.BookID,
			BorrowDate: time.Now(),
			DueDate:    input.DueDate,
			Status:     models.StatusBorrowed,
		}
		return borrowRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	// Resolve book/user references for the response
	if reloaded, err := s.borrowRepo.GetByID(ctx, record.ID); err == nil {
		record = reloaded
	}

	s.notify.NotifyBorrowCreated(record)

	log.Printf("✅ Borrow created: record %d (user %d, book %d)", record.ID, record.UserID, record.BookID)
	return record, nil
}

// Return marks a borrow record returned and puts the copy back.
// requestingUserID is accepted for future ownership enforcement; the
// access-control layer currently decides who may call this.
// A second return of the same record fails with ErrNotBorrowed and
// performs no further mutation.
func (s *BorrowService) Return(ctx context.Context, borrowID, requestingUserID uint) (*models.BorrowRecord, error) {
	var record *models.BorrowRecord
	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		borrowRepo := s.borrowRepo.WithTx(tx)

		rec, err := borrowRepo.GetByID(ctx, borrowID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowNotFound
			}
			return err
		}

		// Overdue loans can still be returned; only the returned state
		// is final.
		if rec.Status != models.StatusBorrowed && rec.Status != models.StatusOverdue {
			return ErrNotBorrowed
		}

		now := time.Now()
		rec.Status = models.StatusReturned
		rec.ReturnDate = &now
		if err := borrowRepo.Update(ctx, rec); err != nil {
			return err
		}

		if err := bookRepo.IncrementCopies(ctx, rec.BookID); err != nil {
			return err
		}

		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.NotifyBorrowReturned(record)

	log.Printf("✅ Borrow returned: record %d (by user %d)", record.ID, requestingUserID)
	return record, nil
}

// List lists borrow records visible to the caller, newest first.
// A Member who supplies no explicit user filter only sees their own
// history; an explicit filter and Admin callers are honored as given.
func (s *BorrowService) List(ctx context.Context, filter *BorrowFilter, currentUserID uint, currentRole string) ([]*models.BorrowResponse, int64, error) {
	if filter.UserID == 0 && currentRole == models.RoleMember {
		filter.UserID = currentUserID
	}

	records, total, err := s.borrowRepo.List(ctx, repositories.BorrowListFilter{
		UserID: filter.UserID,
		BookID: filter.BookID,
		Status: filter.Status,
	}, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.BorrowResponse, len(records))
	for i, record := range records {
		responses[i] = record.ToResponse()
	}

	return responses, total, nil
}
