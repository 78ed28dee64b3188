package repositories

import (
	"context"

	"smartwash-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new wallet transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *transactionRepository) WithTx(tx *gorm.DB) TransactionRepository {
	return &transactionRepository{db: tx}
}

// Create appends a new ledger entry
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListByUser lists a user's transactions newest-first, optionally filtered by type
func (r *transactionRepository) ListByUser(ctx context.Context, userID uint, txnType string, offset, limit int) ([]*models.Transaction, int64, error) {
	var txns []*models.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if txnType != "" {
		query = query.Where("type = ?", txnType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}
