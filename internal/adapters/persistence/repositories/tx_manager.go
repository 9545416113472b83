package repositories

import (
	"context"

	"gorm.io/gorm"
)

// gormTxManager implements TxManager over a GORM connection
type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// Transaction runs fn inside a database transaction; any error rolls back
func (m *gormTxManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
