package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"nalanda-lms/internal/adapters/persistence/models"
	"nalanda-lms/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBorrowService(bookRepo *bookRepoMock, borrowRepo *borrowRepoMock) *services.BorrowService {
	return services.NewBorrowService(txManagerMock{}, bookRepo, borrowRepo, services.NewNotificationService())
}

func dueNextWeek() time.Time {
	return time.Now().AddDate(0, 0, 7)
}

func TestBorrowUnknownBook(t *testing.T) {
	bookRepo := newBookRepoMock()
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	record, err := svc.Borrow(context.Background(), &services.BorrowInput{
		UserID:  1,
		BookID:  99,
		DueDate: dueNextWeek(),
	})

	require.ErrorIs(t, err, services.ErrBookNotFound)
	assert.Nil(t, record)
	assert.Equal(t, 0, borrowRepo.count())
}

func TestBorrowNoCopiesLeft(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Title: "Dune", Copies: 0})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	record, err := svc.Borrow(context.Background(), &services.BorrowInput{
		UserID:  1,
		BookID:  1,
		DueDate: dueNextWeek(),
	})

	require.ErrorIs(t, err, services.ErrBookNotAvailable)
	assert.Nil(t, record)
	// a failed borrow must not leave a ledger entry behind
	assert.Equal(t, 0, borrowRepo.count())
	assert.Equal(t, 0, bookRepo.copies(1))
}

func TestBorrowSuccess(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Title: "Dune", Copies: 3})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	due := dueNextWeek()
	record, err := svc.Borrow(context.Background(), &services.BorrowInput{
		UserID:  7,
		BookID:  1,
		DueDate: due,
	})

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, uint(7), record.UserID)
	assert.Equal(t, uint(1), record.BookID)
	assert.Equal(t, models.StatusBorrowed, record.Status)
	assert.WithinDuration(t, due, record.DueDate, time.Second)
	assert.Nil(t, record.ReturnDate)

	// exactly one copy handed out
	assert.Equal(t, 2, bookRepo.copies(1))
	assert.Equal(t, 1, bookRepo.decrements)
	assert.Equal(t, 1, borrowRepo.count())
}

func TestBorrowConcurrentLastCopy(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Title: "Dune", Copies: 1})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	const attempts = 25

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, exhausted := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := svc.Borrow(context.Background(), &services.BorrowInput{
				UserID:  userID,
				BookID:  1,
				DueDate: dueNextWeek(),
			})

			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				succeeded++
			case services.ErrBookNotAvailable:
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uint(i + 1))
	}
	wg.Wait()

	// only one goroutine may win the last copy
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, exhausted)
	assert.Equal(t, 0, bookRepo.copies(1))
	assert.Equal(t, 1, borrowRepo.count())
}

func TestReturnSuccess(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Title: "Dune", Copies: 3})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	borrowed, err := svc.Borrow(context.Background(), &services.BorrowInput{
		UserID:  7,
		BookID:  1,
		DueDate: dueNextWeek(),
	})
	require.NoError(t, err)
	require.Equal(t, 2, bookRepo.copies(1))

	returned, err := svc.Return(context.Background(), borrowed.ID, 7)

	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.WithinDuration(t, time.Now(), *returned.ReturnDate, time.Second)

	// the copy goes back to the pool
	assert.Equal(t, 3, bookRepo.copies(1))
}

func TestReturnUnknownRecord(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Copies: 1})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	_, err := svc.Return(context.Background(), 42, 7)

	require.ErrorIs(t, err, services.ErrBorrowNotFound)
	assert.Equal(t, 0, bookRepo.increments)
}

func TestReturnTwice(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Copies: 1})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	borrowed, err := svc.Borrow(context.Background(), &services.BorrowInput{
		UserID:  7,
		BookID:  1,
		DueDate: dueNextWeek(),
	})
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), borrowed.ID, 7)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), borrowed.ID, 7)

	require.ErrorIs(t, err, services.ErrNotBorrowed)
	// the second attempt must not inflate the copy count
	assert.Equal(t, 1, bookRepo.copies(1))
	assert.Equal(t, 1, bookRepo.increments)
}

func TestReturnOverdueRecord(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Copies: 1})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	borrowed, err := svc.Borrow(context.Background(), &services.BorrowInput{
		UserID:  7,
		BookID:  1,
		DueDate: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	marked, err := borrowRepo.MarkOverdue(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), marked)

	returned, err := svc.Return(context.Background(), borrowed.ID, 7)

	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)
	assert.Equal(t, 1, bookRepo.copies(1))
}

func TestListMemberSeesOnlyOwnRecords(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Copies: 5})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	for _, userID := range []uint{7, 7, 8} {
		_, err := svc.Borrow(context.Background(), &services.BorrowInput{
			UserID:  userID,
			BookID:  1,
			DueDate: dueNextWeek(),
		})
		require.NoError(t, err)
	}

	records, total, err := svc.List(context.Background(), &services.BorrowFilter{Limit: 20}, 7, models.RoleMember)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)
	assert.Equal(t, uint(7), borrowRepo.lastFilter.UserID)
}

func TestListMemberExplicitFilterHonored(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Copies: 5})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	_, _, err := svc.List(context.Background(), &services.BorrowFilter{UserID: 8, Limit: 20}, 7, models.RoleMember)

	require.NoError(t, err)
	assert.Equal(t, uint(8), borrowRepo.lastFilter.UserID)
}

func TestListAdminSeesEverything(t *testing.T) {
	bookRepo := newBookRepoMock(&models.Book{ID: 1, Copies: 5})
	borrowRepo := newBorrowRepoMock()
	svc := newBorrowService(bookRepo, borrowRepo)

	for _, userID := range []uint{7, 8} {
		_, err := svc.Borrow(context.Background(), &services.BorrowInput{
			UserID:  userID,
			BookID:  1,
			DueDate: dueNextWeek(),
		})
		require.NoError(t, err)
	}

	records, total, err := svc.List(context.Background(), &services.BorrowFilter{Limit: 20}, 1, models.RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)
	assert.Equal(t, uint(0), borrowRepo.lastFilter.UserID)
}
