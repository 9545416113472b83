package repositories

import (
	"context"
	"time"

	"nalanda-lms/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// borrowRepository implements BorrowRepository interface
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository creates a new borrow repository
func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

// WithTx rebinds the repository onto a transaction handle
func (r *borrowRepository) WithTx(tx *gorm.DB) BorrowRepository {
	return &borrowRepository{db: tx}
}

// Create creates a new borrow record
func (r *borrowRepository) Create(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets a borrow record by ID with book and user references resolved
func (r *borrowRepository) GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update updates a borrow record
func (r *borrowRepository) Update(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// List lists borrow records matching the filter, newest first
func (r *borrowRepository) List(ctx context.Context, filter BorrowListFilter, offset, limit int) ([]*models.BorrowRecord, int64, error) {
	var records []*models.BorrowRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.BorrowRecord{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.BookID != 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Book").
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// MostBorrowed groups the whole ledger by book, all statuses counted.
// Ties break on book id ascending so the ranking is deterministic.
func (r *borrowRepository) MostBorrowed(ctx context.Context, limit int) ([]*models.BookBorrowCount, error) {
	var rows []*models.BookBorrowCount
	err := r.db.WithContext(ctx).
		Table("borrow_records").
		Select("borrow_records.book_id, books.title, books.author, books.isbn, COUNT(*) AS borrow_count").
		Joins("JOIN books ON books.id = borrow_records.book_id").
		Where("books.deleted_at IS NULL").
		Group("borrow_records.book_id, books.title, books.author, books.isbn").
		Order("borrow_count DESC, borrow_records.book_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MostActiveMembers groups the whole ledger by user
func (r *borrowRepository) MostActiveMembers(ctx context.Context, limit int) ([]*models.MemberBorrowCount, error) {
	var rows []*models.MemberBorrowCount
	err := r.db.WithContext(ctx).
		Table("borrow_records").
		Select("borrow_records.user_id, users.name, users.email, COUNT(*) AS borrow_count").
		Joins("JOIN users ON users.id = borrow_records.user_id").
		Where("users.deleted_at IS NULL").
		Group("borrow_records.user_id, users.name, users.email").
		Order("borrow_count DESC, borrow_records.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BorrowedCountsByBook counts currently-borrowed records per book
func (r *borrowRepository) BorrowedCountsByBook(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		BookID uint
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Table("borrow_records").
		Select("book_id, COUNT(*) AS count").
		Where("status = ?", models.StatusBorrowed).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.BookID] = row.Count
	}
	return counts, nil
}

// MarkOverdue flips past-due borrowed records to overdue in one statement
func (r *borrowRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("status = ? AND due_date < ?", models.StatusBorrowed, now).
		Update("status", models.StatusOverdue)
	return result.RowsAffected, result.Error
}
