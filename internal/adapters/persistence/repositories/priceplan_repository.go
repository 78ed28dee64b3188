package repositories

import (
	"context"

	"smartwash-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// pricePlanRepository implements PricePlanRepository interface
type pricePlanRepository struct {
	db *gorm.DB
}

// NewPricePlanRepository creates a new price plan repository
func NewPricePlanRepository(db *gorm.DB) PricePlanRepository {
	return &pricePlanRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *pricePlanRepository) WithTx(tx *gorm.DB) PricePlanRepository {
	return &pricePlanRepository{db: tx}
}

// Create creates a new price plan
func (r *pricePlanRepository) Create(ctx context.Context, plan *models.PricePlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// GetByID gets a price plan by ID
func (r *pricePlanRepository) GetByID(ctx context.Context, id uint) (*models.PricePlan, error) {
	var plan models.PricePlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetDefault gets the plan flagged as default
func (r *pricePlanRepository) GetDefault(ctx context.Context) (*models.PricePlan, error) {
	var plan models.PricePlan
	err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetFirstActive gets an active plan
func (r *pricePlanRepository) GetFirstActive(ctx context.Context) (*models.PricePlan, error) {
	var plan models.PricePlan
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// List lists price plans newest-first, optionally filtered by active flag
func (r *pricePlanRepository) List(ctx context.Context, isActive *bool, offset, limit int) ([]*models.PricePlan, int64, error) {
	var plans []*models.PricePlan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PricePlan{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&plans).Error; err != nil {
		return nil, 0, err
	}

	return plans, total, nil
}

// Update updates a price plan
func (r *pricePlanRepository) Update(ctx context.Context, plan *models.PricePlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// Delete deletes a price plan
func (r *pricePlanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PricePlan{}, id).Error
}

// ClearDefaultExcept clears the default flag on every plan other than id
func (r *pricePlanRepository) ClearDefaultExcept(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.PricePlan{}).
		Where("id <> ?", id).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}
