package services_test

import (
	"context"
	"sync"
	"time"

	"nalanda-lms/internal/adapters/persistence/models"
	"nalanda-lms/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// txManagerMock runs the callback directly; the mocks below are already
// safe for concurrent use, so no real transaction is needed.
type txManagerMock struct{}

func (txManagerMock) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// bookRepoMock is an in-memory BookRepository
type bookRepoMock struct {
	mu    sync.Mutex
	books map[uint]*models.Book

	decrements int
	increments int
}

func newBookRepoMock(books ...*models.Book) *bookRepoMock {
	m := &bookRepoMock{books: make(map[uint]*models.Book)}
	for _, b := range books {
		m.books[b.ID] = b
	}
	return m
}

func (m *bookRepoMock) WithTx(_ *gorm.DB) repositories.BookRepository { return m }

func (m *bookRepoMock) Create(_ context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if book.ID == 0 {
		book.ID = uint(len(m.books) + 1)
	}
	m.books[book.ID] = book
	return nil
}

func (m *bookRepoMock) GetByID(_ context.Context, id uint) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *book
	return &copied, nil
}

func (m *bookRepoMock) GetByISBN(_ context.Context, isbn string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, book := range m.books {
		if book.ISBN == isbn {
			copied := *book
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *bookRepoMock) Update(_ context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = book
	return nil
}

func (m *bookRepoMock) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

func (m *bookRepoMock) List(_ context.Context, _, _ int, _ string) ([]*models.Book, int64, error) {
	all, _ := m.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (m *bookRepoMock) ListAll(_ context.Context) ([]*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	books := make([]*models.Book, 0, len(m.books))
	for _, book := range m.books {
		copied := *book
		books = append(books, &copied)
	}
	return books, nil
}

// DecrementCopies mirrors the conditional single-statement update of the
// real repository: the guard and the mutation happen under one lock.
func (m *bookRepoMock) DecrementCopies(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok || book.Copies <= 0 {
		return repositories.ErrCopiesExhausted
	}
	book.Copies--
	m.decrements++
	return nil
}

func (m *bookRepoMock) IncrementCopies(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	book.Copies++
	m.increments++
	return nil
}

func (m *bookRepoMock) copies(id uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[id].Copies
}

// borrowRepoMock is an in-memory BorrowRepository
type borrowRepoMock struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]*models.BorrowRecord

	lastFilter    repositories.BorrowListFilter
	lastLimit     int
	mostBorrowed  []*models.BookBorrowCount
	activeMembers []*models.MemberBorrowCount
	borrowedByBk  map[uint]int64
	updates       int
}

func newBorrowRepoMock() *borrowRepoMock {
	return &borrowRepoMock{records: make(map[uint]*models.BorrowRecord)}
}

func (m *borrowRepoMock) WithTx(_ *gorm.DB) repositories.BorrowRepository { return m }

func (m *borrowRepoMock) Create(_ context.Context, record *models.BorrowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	record.ID = m.nextID
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *borrowRepoMock) GetByID(_ context.Context, id uint) (*models.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *borrowRepoMock) Update(_ context.Context, record *models.BorrowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.ID] = &copied
	m.updates++
	return nil
}

func (m *borrowRepoMock) List(_ context.Context, filter repositories.BorrowListFilter, _, limit int) ([]*models.BorrowRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	m.lastLimit = limit

	var matched []*models.BorrowRecord
	for _, record := range m.records {
		if filter.UserID != 0 && record.UserID != filter.UserID {
			continue
		}
		if filter.BookID != 0 && record.BookID != filter.BookID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		copied := *record
		matched = append(matched, &copied)
	}
	return matched, int64(len(matched)), nil
}

func (m *borrowRepoMock) MostBorrowed(_ context.Context, limit int) ([]*models.BookBorrowCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if len(m.mostBorrowed) > limit {
		return m.mostBorrowed[:limit], nil
	}
	return m.mostBorrowed, nil
}

func (m *borrowRepoMock) MostActiveMembers(_ context.Context, limit int) ([]*models.MemberBorrowCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if len(m.activeMembers) > limit {
		return m.activeMembers[:limit], nil
	}
	return m.activeMembers, nil
}

func (m *borrowRepoMock) BorrowedCountsByBook(_ context.Context) (map[uint]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[uint]int64, len(m.borrowedByBk))
	for id, count := range m.borrowedByBk {
		counts[id] = count
	}
	return counts, nil
}

func (m *borrowRepoMock) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, record := range m.records {
		if record.Status == models.StatusBorrowed && record.DueDate.Before(now) {
			record.Status = models.StatusOverdue
			count++
		}
	}
	return count, nil
}

func (m *borrowRepoMock) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
