package services

import (
	"context"
	"testing"

	"smartwash-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletTopup(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "alice", 0)

	out, err := svc.Topup(context.Background(), user.ID, 50000, "momo", "")
	require.NoError(t, err)

	assert.Equal(t, float64(0), out.OldBalance)
	assert.Equal(t, float64(50000), out.NewBalance)
	assert.Equal(t, models.TransactionTypeTopup, out.Transaction.Type)
	assert.Equal(t, "momo", out.Transaction.Method)
	assert.Equal(t, float64(50000), out.Transaction.BalanceAfter)
	assert.NotEmpty(t, out.Transaction.Reference)

	assert.NotNil(t, out.Wallet.LastTopupDate)
	assert.Equal(t, float64(50000), out.Wallet.TotalDeposited)
}

func TestWalletTopupRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "alice", 0)

	_, err := svc.Topup(context.Background(), user.ID, 0, "cash", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Topup(context.Background(), user.ID, -100, "cash", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWalletTopupUnknownMethodFallsBackToSystem(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "alice", 0)

	out, err := svc.Topup(context.Background(), user.ID, 1000, "bitcoin", "")
	require.NoError(t, err)
	assert.Equal(t, "system", out.Transaction.Method)
}

func TestWalletDeduct(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "bob", 10000)

	out, err := svc.Deduct(context.Background(), user.ID, 7500, nil, "")
	require.NoError(t, err)

	assert.Equal(t, float64(10000), out.OldBalance)
	assert.Equal(t, float64(2500), out.NewBalance)
	assert.Equal(t, models.TransactionTypeDeduct, out.Transaction.Type)
	assert.Equal(t, float64(7500), out.Wallet.TotalSpent)
}

func TestWalletDeductInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "bob", 5000)

	_, err := svc.Deduct(context.Background(), user.ID, 5001, nil, "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// The failed deduct must leave no trace: balance unchanged, ledger empty.
	balance, err := svc.CheckBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(5000), balance.Balance)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestWalletDeductExactBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "bob", 5000)

	out, err := svc.Deduct(context.Background(), user.ID, 5000, nil, "")
	require.NoError(t, err)
	assert.Equal(t, float64(0), out.NewBalance)
}

func TestWalletRefund(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "carol", 2500)

	out, err := svc.Refund(context.Background(), user.ID, 7500, nil, "")
	require.NoError(t, err)

	assert.Equal(t, float64(10000), out.NewBalance)
	assert.Equal(t, models.TransactionTypeRefund, out.Transaction.Type)
}

func TestWalletNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)

	_, err := svc.CheckBalance(context.Background(), 999)
	assert.ErrorIs(t, err, ErrWalletNotFound)

	_, err = svc.Topup(context.Background(), 999, 1000, "cash", "")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestWalletTransactionHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "dave", 0)

	for i := 0; i < 3; i++ {
		_, err := svc.Topup(context.Background(), user.ID, 1000, "cash", "")
		require.NoError(t, err)
	}
	_, err := svc.Deduct(context.Background(), user.ID, 500, nil, "")
	require.NoError(t, err)

	all, err := svc.GetTransactionHistory(context.Background(), user.ID, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Len(t, all.Transactions, 4)

	topups, err := svc.GetTransactionHistory(context.Background(), user.ID, models.TransactionTypeTopup, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), topups.Total)
	for _, txn := range topups.Transactions {
		assert.Equal(t, models.TransactionTypeTopup, txn.Type)
	}

	paged, err := svc.GetTransactionHistory(context.Background(), user.ID, "", 1, 3)
	require.NoError(t, err)
	assert.Len(t, paged.Transactions, 3)
	assert.Equal(t, 2, paged.TotalPages)
}

func TestWalletCreateWalletTxIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWalletService(db)
	user := seedUser(t, db, "erin", 4000)

	first, err := svc.CreateWalletTx(context.Background(), db, user.ID)
	require.NoError(t, err)

	second, err := svc.CreateWalletTx(context.Background(), db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, float64(4000), second.Balance)
}
