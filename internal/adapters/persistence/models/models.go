package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	PhoneNumber string         `gorm:"size:20" json:"phone_number"`
	Role        string         `gorm:"size:20;default:'customer'" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	WalletID    *uint          `gorm:"index" json:"wallet_id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse DTO
type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	WalletID    *uint     `json:"wallet_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
		WalletID:    u.WalletID,
		CreatedAt:   u.CreatedAt,
	}
}

// Wallet currencies
const (
	CurrencyVND = "VND"
	CurrencyUSD = "USD"
)

// Wallet represents wallets table. One wallet per user; the balance never
// goes below zero (mutations are guarded updates in the repository layer).
type Wallet struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance            float64    `gorm:"not null;default:0" json:"balance"`
	Currency           string     `gorm:"size:3;default:'VND'" json:"currency"`
	TotalDeposited     float64    `gorm:"default:0" json:"total_deposited"`
	TotalSpent         float64    `gorm:"default:0" json:"total_spent"`
	LastTopupAmount    float64    `gorm:"default:0" json:"last_topup_amount"`
	LastTopupDate      *time.Time `json:"last_topup_date"`
	IsActive           bool       `gorm:"default:true" json:"is_active"`
	AutoTopupEnabled   bool       `gorm:"default:false" json:"auto_topup_enabled"`
	AutoTopupThreshold float64    `gorm:"default:10000" json:"auto_topup_threshold"`
	AutoTopupAmount    float64    `gorm:"default:50000" json:"auto_topup_amount"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) HasSufficientBalance(amount float64) bool {
	return w.Balance >= amount
}

// Transaction types
const (
	TransactionTypeTopup  = "topup"
	TransactionTypeDeduct = "deduct"
	TransactionTypeRefund = "refund"
)

// Transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
)

// Transaction represents wallet_transactions table. Rows are append-only:
// every balance change writes exactly one row carrying the resulting balance.
type Transaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Reference    string    `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	WalletID     uint      `gorm:"index;not null" json:"wallet_id"`
	SessionID    *uint     `gorm:"index" json:"session_id"`
	Type         string    `gorm:"size:10;not null" json:"type"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Method       string    `gorm:"size:20;default:'system'" json:"method"`
	Description  string    `gorm:"size:255" json:"description"`
	BalanceAfter float64   `json:"balance_after"`
	Status       string    `gorm:"size:10;default:'pending'" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "wallet_transactions"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate runs migrations for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Wallet{},
		&Transaction{},
		&Machine{},
		&PricePlan{},
		&WashMode{},
		&WaterStage{},
		&Session{},
		&Notification{},
	)
}
