package repositories

import (
	"context"
	"time"

	"smartwash-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// walletRepository implements WalletRepository interface
type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *walletRepository) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepository{db: tx}
}

// Create creates a new wallet
func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

// GetByID gets a wallet by ID
func (r *walletRepository) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetByUserID gets a wallet by owner
func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ApplyTopup credits the wallet and updates the topup counters in one UPDATE
func (r *walletRepository) ApplyTopup(ctx context.Context, userID uint, amount float64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":           gorm.Expr("balance + ?", amount),
			"total_deposited":   gorm.Expr("total_deposited + ?", amount),
			"last_topup_amount": amount,
			"last_topup_date":   at,
		}).Error
}

// ApplyDeduct debits the wallet with a balance guard in the WHERE clause.
// Returns false when the guard rejects the update (insufficient balance),
// so two concurrent deducts can never drive the balance negative.
func (r *walletRepository) ApplyDeduct(ctx context.Context, userID uint, amount float64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Where("balance >= ?", amount).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("balance - ?", amount),
			"total_spent": gorm.Expr("total_spent + ?", amount),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ApplyRefund credits the wallet without touching the deposit counters
func (r *walletRepository) ApplyRefund(ctx context.Context, userID uint, amount float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}
