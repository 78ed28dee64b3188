package repositories

import (
	"context"
	"time"

	"smartwash-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// WalletRepository defines wallet repository interface. The Apply* methods
// are single guarded UPDATE statements so that concurrent mutations of the
// same wallet cannot interleave into a negative balance.
type WalletRepository interface {
	WithTx(tx *gorm.DB) WalletRepository
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	ApplyTopup(ctx context.Context, userID uint, amount float64, at time.Time) error
	ApplyDeduct(ctx context.Context, userID uint, amount float64) (bool, error)
	ApplyRefund(ctx context.Context, userID uint, amount float64) error
}

// TransactionRepository defines wallet transaction repository interface.
// Transactions are append-only; there is no update or delete.
type TransactionRepository interface {
	WithTx(tx *gorm.DB) TransactionRepository
	Create(ctx context.Context, txn *models.Transaction) error
	ListByUser(ctx context.Context, userID uint, txnType string, offset, limit int) ([]*models.Transaction, int64, error)
}

// MachineRepository defines machine repository interface
type MachineRepository interface {
	WithTx(tx *gorm.DB) MachineRepository
	Create(ctx context.Context, machine *models.Machine) error
	GetByCode(ctx context.Context, code string) (*models.Machine, error)
	List(ctx context.Context, status, location string, offset, limit int) ([]*models.Machine, int64, error)
	Update(ctx context.Context, machine *models.Machine) error
	DeleteByCode(ctx context.Context, code string) (bool, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Claim(ctx context.Context, code string, sessionID uint) (bool, error)
	Release(ctx context.Context, code string) error
}

// PricePlanRepository defines price plan repository interface
type PricePlanRepository interface {
	WithTx(tx *gorm.DB) PricePlanRepository
	Create(ctx context.Context, plan *models.PricePlan) error
	GetByID(ctx context.Context, id uint) (*models.PricePlan, error)
	GetDefault(ctx context.Context) (*models.PricePlan, error)
	GetFirstActive(ctx context.Context) (*models.PricePlan, error)
	List(ctx context.Context, isActive *bool, offset, limit int) ([]*models.PricePlan, int64, error)
	Update(ctx context.Context, plan *models.PricePlan) error
	Delete(ctx context.Context, id uint) error
	ClearDefaultExcept(ctx context.Context, id uint) error
}

// WashModeRepository defines wash mode repository interface
type WashModeRepository interface {
	WithTx(tx *gorm.DB) WashModeRepository
	Create(ctx context.Context, mode *models.WashMode) error
	GetByID(ctx context.Context, id uint) (*models.WashMode, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.WashMode, error)
	List(ctx context.Context, offset, limit int) ([]*models.WashMode, int64, error)
	Update(ctx context.Context, mode *models.WashMode) error
	DeleteStages(ctx context.Context, washModeID uint) error
	Delete(ctx context.Context, id uint) error
}

// SessionRepository defines wash session repository interface
type SessionRepository interface {
	WithTx(tx *gorm.DB) SessionRepository
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uint) (*models.Session, error)
	GetByIDAndUser(ctx context.Context, id, userID uint) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	ListByUser(ctx context.Context, userID uint, status string, offset, limit int) ([]*models.Session, int64, error)
}

// NotificationRepository defines notification repository interface
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) (bool, error)
	MarkAllRead(ctx context.Context, userID uint) error
}
