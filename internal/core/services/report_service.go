package services

import (
	"context"

	"nalanda-lms/internal/adapters/persistence/models"
	"nalanda-lms/internal/adapters/persistence/repositories"
)

// DefaultTopN is the default size of ranked reports
const DefaultTopN = 10

// MaxTopN caps ranked report size
const MaxTopN = 100

// ReportService computes read-only aggregates over the borrow ledger
// and the catalog. Reports are uncoordinated snapshots; they may lag
// concurrent borrow/return activity.
type ReportService struct {
	bookRepo   repositories.BookRepository
	borrowRepo repositories.BorrowRepository
}

// NewReportService creates a new report service
func NewReportService(
	bookRepo repositories.BookRepository,
	borrowRepo repositories.BorrowRepository,
) *ReportService {
	return &ReportService{
		bookRepo:   bookRepo,
		borrowRepo: borrowRepo,
	}
}

// BookAvailability is the availability snapshot of one book.
// AvailableCopies is reported raw and can go negative when the ledger
// and the copy count disagree; only rolled-up totals are clamped.
type BookAvailability struct {
	BookID          uint   `json:"book_id"`
	Title           string `json:"title"`
	ISBN            string `json:"isbn"`
	TotalCopies     int64  `json:"total_copies"`
	BorrowedCopies  int64  `json:"borrowed_copies"`
	AvailableCopies int64  `json:"available_copies"`
}

// AvailabilityTotals are the rolled-up availability counters
type AvailabilityTotals struct {
	TotalBooks     int64 `json:"total_books"`
	BorrowedBooks  int64 `json:"borrowed_books"`
	AvailableBooks int64 `json:"available_books"`
}

// AvailabilitySummary is the full availability report
type AvailabilitySummary struct {
	PerBook []*BookAvailability `json:"per_book"`
	Totals  AvailabilityTotals  `json:"totals"`
}

// clampTopN applies default and cap to a requested ranking size
func clampTopN(topN int) int {
	if topN <= 0 {
		return DefaultTopN
	}
	if topN > MaxTopN {
		return MaxTopN
	}
	return topN
}

// MostBorrowedBooks ranks books by total historical borrow count,
// all statuses included, ties broken by book id for a stable order.
func (s *ReportService) MostBorrowedBooks(ctx context.Context, topN int) ([]*models.BookBorrowCount, error) {
	return s.borrowRepo.MostBorrowed(ctx, clampTopN(topN))
}

// ActiveMembers ranks users by total historical borrow count
func (s *ReportService) ActiveMembers(ctx context.Context, topN int) ([]*models.MemberBorrowCount, error) {
	return s.borrowRepo.MostActiveMembers(ctx, clampTopN(topN))
}

// AvailabilitySummary joins the catalog snapshot with the count of
// currently-borrowed records per book
func (s *ReportService) AvailabilitySummary(ctx context.Context) (*AvailabilitySummary, error) {
	books, err := s.bookRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	borrowed, err := s.borrowRepo.BorrowedCountsByBook(ctx)
	if err != nil {
		return nil, err
	}

	summary := &AvailabilitySummary{
		PerBook: make([]*BookAvailability, 0, len(books)),
	}

	for _, book := range books {
		total := int64(book.Copies)
		out := borrowed[book.ID]
		available := total - out

		summary.PerBook = append(summary.PerBook, &BookAvailability{
			BookID:          book.ID,
			Title:           book.Title,
			ISBN:            book.ISBN,
			TotalCopies:     total,
			BorrowedCopies:  out,
			AvailableCopies: available,
		})

		summary.Totals.TotalBooks += total
		summary.Totals.BorrowedBooks += out
		if available > 0 {
			summary.Totals.AvailableBooks += available
		}
	}

	return summary, nil
}
