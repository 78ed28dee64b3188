package config

import (
	"log"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		return err
	}
	if err := s.seedDefaultPricePlan(); err != nil {
		return err
	}
	if err := s.seedWashModes(); err != nil {
		return err
	}

	log.Println("database seeding completed")
	return nil
}

// seedAdminUser seeds the bootstrap admin account with its wallet
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash(s.cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: s.cfg.Seed.AdminUsername,
		Email:    s.cfg.Seed.AdminEmail,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		wallet := &models.Wallet{
			UserID:   admin.ID,
			Balance:  0,
			Currency: models.CurrencyVND,
		}
		if err := tx.Create(wallet).Error; err != nil {
			return err
		}

		admin.WalletID = &wallet.ID
		if err := tx.Save(admin).Error; err != nil {
			return err
		}

		log.Printf("admin user created: %s", admin.Username)
		return nil
	})
}

// seedDefaultPricePlan guarantees sessions without an explicit plan can
// resolve a default
func (s *Seeder) seedDefaultPricePlan() error {
	var count int64
	s.db.Model(&models.PricePlan{}).Count(&count)
	if count > 0 {
		return nil
	}

	plan := &models.PricePlan{
		Name:          "Standard",
		RatePerMinute: 500,
		MaxDuration:   120,
		IsActive:      true,
		IsDefault:     true,
	}

	if err := s.db.Create(plan).Error; err != nil {
		return err
	}

	log.Printf("default price plan created: %s", plan.Name)
	return nil
}

// seedWashModes seeds the built-in wash programs
func (s *Seeder) seedWashModes() error {
	var count int64
	s.db.Model(&models.WashMode{}).Count(&count)
	if count > 0 {
		return nil
	}

	modes := []*models.WashMode{
		{
			Name:        "Quick Wash",
			Description: "Short cycle for lightly soiled clothes",
			Duration:    5,
			Stages: []models.WaterStage{
				{StageOrder: 1, Level: 1, Duration: 5},
			},
		},
		{
			Name:        "Normal Wash",
			Description: "Everyday wash cycle",
			Duration:    10,
			Stages: []models.WaterStage{
				{StageOrder: 1, Level: 2, Duration: 8},
				{StageOrder: 2, Level: 1, Duration: 5},
			},
		},
		{
			Name:        "Heavy Duty",
			Description: "Extended cycle for heavily soiled loads",
			Duration:    15,
			Stages: []models.WaterStage{
				{StageOrder: 1, Level: 3, Duration: 10},
				{StageOrder: 2, Level: 2, Duration: 8},
				{StageOrder: 3, Level: 1, Duration: 5},
			},
		},
	}

	for _, mode := range modes {
		if err := s.db.Create(mode).Error; err != nil {
			return err
		}
	}

	log.Printf("wash modes seeded: %d", len(modes))
	return nil
}
