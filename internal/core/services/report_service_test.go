package services_test

import (
	"context"
	"testing"

	"nalanda-lms/internal/adapters/persistence/models"
	"nalanda-lms/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findAvailability(summary *services.AvailabilitySummary, bookID uint) *services.BookAvailability {
	for _, row := range summary.PerBook {
		if row.BookID == bookID {
			return row
		}
	}
	return nil
}

func TestAvailabilitySummary(t *testing.T) {
	bookRepo := newBookRepoMock(
		&models.Book{ID: 1, Title: "Dune", ISBN: "978-0441013593", Copies: 5},
		&models.Book{ID: 2, Title: "Neuromancer", ISBN: "978-0441569595", Copies: 1},
	)
	borrowRepo := newBorrowRepoMock()
	borrowRepo.borrowedByBk = map[uint]int64{1: 2}
	svc := services.NewReportService(bookRepo, borrowRepo)

	summary, err := svc.AvailabilitySummary(context.Background())

	require.NoError(t, err)
	require.Len(t, summary.PerBook, 2)

	dune := findAvailability(summary, 1)
	require.NotNil(t, dune)
	assert.Equal(t, int64(5), dune.TotalCopies)
	assert.Equal(t, int64(2), dune.BorrowedCopies)
	assert.Equal(t, int64(3), dune.AvailableCopies)

	assert.Equal(t, int64(6), summary.Totals.TotalBooks)
	assert.Equal(t, int64(2), summary.Totals.BorrowedBooks)
	assert.Equal(t, int64(4), summary.Totals.AvailableBooks)
}

func TestAvailabilityNegativePerBookClampedInTotals(t *testing.T) {
	// Ledger and copy count can disagree when copies were edited while
	// loans were open. Per-book rows show the raw value, the roll-up
	// never counts a negative contribution.
	bookRepo := newBookRepoMock(
		&models.Book{ID: 1, Title: "Dune", Copies: 1},
		&models.Book{ID: 2, Title: "Neuromancer", Copies: 4},
	)
	borrowRepo := newBorrowRepoMock()
	borrowRepo.borrowedByBk = map[uint]int64{1: 3, 2: 1}
	svc := services.NewReportService(bookRepo, borrowRepo)

	summary, err := svc.AvailabilitySummary(context.Background())

	require.NoError(t, err)

	dune := findAvailability(summary, 1)
	require.NotNil(t, dune)
	assert.Equal(t, int64(-2), dune.AvailableCopies)

	assert.Equal(t, int64(5), summary.Totals.TotalBooks)
	assert.Equal(t, int64(4), summary.Totals.BorrowedBooks)
	assert.Equal(t, int64(3), summary.Totals.AvailableBooks)
}

func TestAvailabilityEmptyCatalog(t *testing.T) {
	svc := services.NewReportService(newBookRepoMock(), newBorrowRepoMock())

	summary, err := svc.AvailabilitySummary(context.Background())

	require.NoError(t, err)
	assert.Empty(t, summary.PerBook)
	assert.Equal(t, services.AvailabilityTotals{}, summary.Totals)
}

func TestMostBorrowedBooks(t *testing.T) {
	borrowRepo := newBorrowRepoMock()
	borrowRepo.mostBorrowed = []*models.BookBorrowCount{
		{BookID: 1, Title: "Dune", BorrowCount: 5},
		{BookID: 2, Title: "Neuromancer", BorrowCount: 3},
		{BookID: 3, Title: "Hyperion", BorrowCount: 3},
	}
	svc := services.NewReportService(newBookRepoMock(), borrowRepo)

	rows, err := svc.MostBorrowedBooks(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, uint(1), rows[0].BookID)
	assert.Equal(t, int64(5), rows[0].BorrowCount)
	// ties keep the repository order (lower id first)
	assert.Equal(t, uint(2), rows[1].BookID)
	assert.Equal(t, uint(3), rows[2].BookID)
}

func TestMostBorrowedBooksDefaultTopN(t *testing.T) {
	borrowRepo := newBorrowRepoMock()
	svc := services.NewReportService(newBookRepoMock(), borrowRepo)

	_, err := svc.MostBorrowedBooks(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, services.DefaultTopN, borrowRepo.lastLimit)
}

func TestMostBorrowedBooksTopNCapped(t *testing.T) {
	borrowRepo := newBorrowRepoMock()
	svc := services.NewReportService(newBookRepoMock(), borrowRepo)

	_, err := svc.MostBorrowedBooks(context.Background(), 5000)

	require.NoError(t, err)
	assert.Equal(t, services.MaxTopN, borrowRepo.lastLimit)
}

func TestActiveMembers(t *testing.T) {
	borrowRepo := newBorrowRepoMock()
	borrowRepo.activeMembers = []*models.MemberBorrowCount{
		{UserID: 7, Name: "Asha", BorrowCount: 4},
		{UserID: 8, Name: "Ravi", BorrowCount: 2},
	}
	svc := services.NewReportService(newBookRepoMock(), borrowRepo)

	rows, err := svc.ActiveMembers(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(7), rows[0].UserID)
	assert.Equal(t, int64(4), rows[0].BorrowCount)
	assert.Equal(t, 2, borrowRepo.lastLimit)
}
