package services

import (
	"fmt"
	"strings"
	"testing"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a named in-memory SQLite database so that every pooled
// connection sees the same data, and migrates the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func newTestWalletService(db *gorm.DB) *WalletService {
	return NewWalletService(db,
		repositories.NewWalletRepository(db),
		repositories.NewTransactionRepository(db))
}

func newTestSessionService(db *gorm.DB) *SessionService {
	walletService := newTestWalletService(db)
	notifyService := NewNotificationService(repositories.NewNotificationRepository(db))

	return NewSessionService(
		db,
		repositories.NewSessionRepository(db),
		repositories.NewMachineRepository(db),
		repositories.NewPricePlanRepository(db),
		repositories.NewWashModeRepository(db),
		repositories.NewUserRepository(db),
		walletService,
		notifyService,
		NewLogDeviceCommander(),
	)
}

// seedUser creates a customer with a funded wallet
func seedUser(t *testing.T, db *gorm.DB, username string, balance float64) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)

	wallet := &models.Wallet{
		UserID:   user.ID,
		Balance:  balance,
		Currency: models.CurrencyVND,
		IsActive: true,
	}
	require.NoError(t, db.Create(wallet).Error)

	user.WalletID = &wallet.ID
	require.NoError(t, db.Save(user).Error)
	return user
}

func seedMachine(t *testing.T, db *gorm.DB, code string) *models.Machine {
	t.Helper()

	machine := &models.Machine{
		Name:        "Washer " + code,
		MachineCode: code,
		Status:      models.MachineStatusAvailable,
		Location:    "Building A",
		MqttTopic:   "smartwash/machines/" + code,
	}
	require.NoError(t, db.Create(machine).Error)
	return machine
}

func seedPlan(t *testing.T, db *gorm.DB, rate float64, maxDuration int, isDefault bool) *models.PricePlan {
	t.Helper()

	plan := &models.PricePlan{
		Name:          fmt.Sprintf("Plan %.0f", rate),
		RatePerMinute: rate,
		MaxDuration:   maxDuration,
		IsActive:      true,
		IsDefault:     isDefault,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func seedWashMode(t *testing.T, db *gorm.DB, name string, duration int) *models.WashMode {
	t.Helper()

	mode := &models.WashMode{
		Name:        name,
		Description: name + " cycle",
		Duration:    duration,
	}
	require.NoError(t, db.Create(mode).Error)
	return mode
}
