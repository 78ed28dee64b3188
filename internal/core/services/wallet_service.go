package services

import (
	"context"
	"errors"
	"time"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet service errors
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// Payment methods accepted for topups
var topupMethods = map[string]bool{
	"cash":   true,
	"credit": true,
	"momo":   true,
	"paypal": true,
	"system": true,
}

// WalletService handles the stored-value ledger. Every balance mutation
// pairs one wallet update with exactly one appended transaction row, inside
// a single database transaction.
type WalletService struct {
	db         *gorm.DB
	walletRepo repositories.WalletRepository
	txnRepo    repositories.TransactionRepository
}

// NewWalletService creates a new wallet service
func NewWalletService(
	db *gorm.DB,
	walletRepo repositories.WalletRepository,
	txnRepo repositories.TransactionRepository,
) *WalletService {
	return &WalletService{
		db:         db,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
	}
}

// BalanceOutput represents the wallet balance view
type BalanceOutput struct {
	Balance   float64    `json:"balance"`
	Currency  string     `json:"currency"`
	UserID    uint       `json:"user_id"`
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email,omitempty"`
	LastTopup *time.Time `json:"last_topup"`
}

// MutationOutput represents the result of a wallet mutation
type MutationOutput struct {
	Wallet      *models.Wallet      `json:"wallet"`
	Transaction *models.Transaction `json:"transaction"`
	OldBalance  float64             `json:"old_balance"`
	NewBalance  float64             `json:"new_balance"`
}

// TransactionHistoryOutput represents a page of ledger entries
type TransactionHistoryOutput struct {
	Transactions []*models.Transaction `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
}

// CreateWalletTx creates a wallet for a user inside an existing transaction.
// Already-existing wallets are returned as-is so registration retries stay safe.
func (s *WalletService) CreateWalletTx(ctx context.Context, tx *gorm.DB, userID uint) (*models.Wallet, error) {
	repo := s.walletRepo.WithTx(tx)

	existing, err := repo.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet := &models.Wallet{
		UserID:   userID,
		Balance:  0,
		Currency: models.CurrencyVND,
		IsActive: true,
	}
	if err := repo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// BalanceTx reads the wallet balance inside an existing transaction
func (s *WalletService) BalanceTx(ctx context.Context, tx *gorm.DB, userID uint) (float64, error) {
	wallet, err := s.walletRepo.WithTx(tx).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrWalletNotFound
		}
		return 0, err
	}
	return wallet.Balance, nil
}

// Topup credits the wallet and records a topup transaction
func (s *WalletService) Topup(ctx context.Context, userID uint, amount float64, method, description string) (*MutationOutput, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if method == "" || !topupMethods[method] {
		method = "system"
	}
	if description == "" {
		description = "Wallet topup"
	}

	var out *MutationOutput
	err := s.db.Transaction(func(tx *gorm.DB) error {
		walletRepo := s.walletRepo.WithTx(tx)

		wallet, err := walletRepo.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		oldBalance := wallet.Balance

		now := time.Now()
		if err := walletRepo.ApplyTopup(ctx, userID, amount, now); err != nil {
			return err
		}

		updated, err := walletRepo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		txn := &models.Transaction{
			Reference:    uuid.NewString(),
			UserID:       userID,
			WalletID:     wallet.ID,
			Type:         models.TransactionTypeTopup,
			Amount:       amount,
			Method:       method,
			Description:  description,
			BalanceAfter: updated.Balance,
			Status:       models.TransactionStatusCompleted,
		}
		if err := s.txnRepo.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}

		out = &MutationOutput{
			Wallet:      updated,
			Transaction: txn,
			OldBalance:  oldBalance,
			NewBalance:  updated.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deduct debits the wallet and records a deduct transaction
func (s *WalletService) Deduct(ctx context.Context, userID uint, amount float64, sessionID *uint, description string) (*MutationOutput, error) {
	var out *MutationOutput
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var innerErr error
		out, innerErr = s.DeductTx(ctx, tx, userID, amount, sessionID, description)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeductTx debits the wallet inside an existing transaction, so callers like
// the session service can make the debit part of their own atomic unit.
func (s *WalletService) DeductTx(ctx context.Context, tx *gorm.DB, userID uint, amount float64, sessionID *uint, description string) (*MutationOutput, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Service payment"
	}

	walletRepo := s.walletRepo.WithTx(tx)

	wallet, err := walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	oldBalance := wallet.Balance

	applied, err := walletRepo.ApplyDeduct(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrInsufficientBalance
	}

	updated, err := walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		Reference:    uuid.NewString(),
		UserID:       userID,
		WalletID:     wallet.ID,
		SessionID:    sessionID,
		Type:         models.TransactionTypeDeduct,
		Amount:       amount,
		Method:       "system",
		Description:  description,
		BalanceAfter: updated.Balance,
		Status:       models.TransactionStatusCompleted,
	}
	if err := s.txnRepo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, err
	}

	return &MutationOutput{
		Wallet:      updated,
		Transaction: txn,
		OldBalance:  oldBalance,
		NewBalance:  updated.Balance,
	}, nil
}

// Refund credits the wallet back and records a refund transaction
func (s *WalletService) Refund(ctx context.Context, userID uint, amount float64, sessionID *uint, description string) (*MutationOutput, error) {
	var out *MutationOutput
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var innerErr error
		out, innerErr = s.RefundTx(ctx, tx, userID, amount, sessionID, description)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RefundTx credits the wallet back inside an existing transaction
func (s *WalletService) RefundTx(ctx context.Context, tx *gorm.DB, userID uint, amount float64, sessionID *uint, description string) (*MutationOutput, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Refund"
	}

	walletRepo := s.walletRepo.WithTx(tx)

	wallet, err := walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	oldBalance := wallet.Balance

	if err := walletRepo.ApplyRefund(ctx, userID, amount); err != nil {
		return nil, err
	}

	updated, err := walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		Reference:    uuid.NewString(),
		UserID:       userID,
		WalletID:     wallet.ID,
		SessionID:    sessionID,
		Type:         models.TransactionTypeRefund,
		Amount:       amount,
		Method:       "system",
		Description:  description,
		BalanceAfter: updated.Balance,
		Status:       models.TransactionStatusCompleted,
	}
	if err := s.txnRepo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, err
	}

	return &MutationOutput{
		Wallet:      updated,
		Transaction: txn,
		OldBalance:  oldBalance,
		NewBalance:  updated.Balance,
	}, nil
}

// CheckBalance returns the wallet balance without mutating anything
func (s *WalletService) CheckBalance(ctx context.Context, userID uint) (*BalanceOutput, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	return &BalanceOutput{
		Balance:   wallet.Balance,
		Currency:  wallet.Currency,
		UserID:    wallet.UserID,
		LastTopup: wallet.LastTopupDate,
	}, nil
}

// GetTransactionHistory returns a page of ledger entries, newest first
func (s *WalletService) GetTransactionHistory(ctx context.Context, userID uint, txnType string, page, limit int) (*TransactionHistoryOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	txns, total, err := s.txnRepo.ListByUser(ctx, userID, txnType, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &TransactionHistoryOutput{
		Transactions: txns,
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
	}, nil
}
