package repositories

import (
	"context"

	"smartwash-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// washModeRepository implements WashModeRepository interface
type washModeRepository struct {
	db *gorm.DB
}

// NewWashModeRepository creates a new wash mode repository
func NewWashModeRepository(db *gorm.DB) WashModeRepository {
	return &washModeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *washModeRepository) WithTx(tx *gorm.DB) WashModeRepository {
	return &washModeRepository{db: tx}
}

// Create creates a new wash mode with its stages
func (r *washModeRepository) Create(ctx context.Context, mode *models.WashMode) error {
	return r.db.WithContext(ctx).Create(mode).Error
}

// GetByID gets a wash mode with its water stages
func (r *washModeRepository) GetByID(ctx context.Context, id uint) (*models.WashMode, error) {
	var mode models.WashMode
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		Where("id = ?", id).
		First(&mode).Error
	if err != nil {
		return nil, err
	}
	return &mode, nil
}

// GetByIDs gets all wash modes matching ids, with their water stages.
// Callers compare len(result) against len(ids) to detect unknown ids.
func (r *washModeRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.WashMode, error) {
	var modes []*models.WashMode
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		Where("id IN ?", ids).
		Find(&modes).Error
	if err != nil {
		return nil, err
	}
	return modes, nil
}

// List lists wash modes with pagination
func (r *washModeRepository) List(ctx context.Context, offset, limit int) ([]*models.WashMode, int64, error) {
	var modes []*models.WashMode
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.WashMode{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&modes).Error
	if err != nil {
		return nil, 0, err
	}

	return modes, total, nil
}

// Update updates a wash mode and saves any attached stages
func (r *washModeRepository) Update(ctx context.Context, mode *models.WashMode) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(mode).Error
}

// DeleteStages removes all water stages of a wash mode
func (r *washModeRepository) DeleteStages(ctx context.Context, washModeID uint) error {
	return r.db.WithContext(ctx).Where("wash_mode_id = ?", washModeID).Delete(&models.WaterStage{}).Error
}

// Delete deletes a wash mode and its stages
func (r *washModeRepository) Delete(ctx context.Context, id uint) error {
	if err := r.DeleteStages(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.WashMode{}, id).Error
}
