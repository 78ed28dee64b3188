package repositories

import (
	"context"
	"strings"
	"time"

	"smartwash-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// machineRepository implements MachineRepository interface
type machineRepository struct {
	db *gorm.DB
}

// NewMachineRepository creates a new machine repository
func NewMachineRepository(db *gorm.DB) MachineRepository {
	return &machineRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *machineRepository) WithTx(tx *gorm.DB) MachineRepository {
	return &machineRepository{db: tx}
}

// Create creates a new machine
func (r *machineRepository) Create(ctx context.Context, machine *models.Machine) error {
	return r.db.WithContext(ctx).Create(machine).Error
}

// GetByCode gets a machine by its machine code
func (r *machineRepository) GetByCode(ctx context.Context, code string) (*models.Machine, error) {
	var machine models.Machine
	err := r.db.WithContext(ctx).Where("machine_code = ?", code).First(&machine).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

// List lists machines sorted by name, optionally filtered by status equality
// and case-insensitive location substring
func (r *machineRepository) List(ctx context.Context, status, location string, offset, limit int) ([]*models.Machine, int64, error) {
	var machines []*models.Machine
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Machine{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&machines).Error; err != nil {
		return nil, 0, err
	}

	return machines, total, nil
}

// Update updates a machine
func (r *machineRepository) Update(ctx context.Context, machine *models.Machine) error {
	return r.db.WithContext(ctx).Save(machine).Error
}

// DeleteByCode deletes a machine by code, reporting whether a row was removed
func (r *machineRepository) DeleteByCode(ctx context.Context, code string) (bool, error) {
	result := r.db.WithContext(ctx).Where("machine_code = ?", code).Delete(&models.Machine{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExistsByCode checks if a machine code exists
func (r *machineRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Machine{}).Where("machine_code = ?", code).Count(&count).Error
	return count > 0, err
}

// Claim flips the machine from available to in_use and attaches the session,
// guarded on the current status so that when two sessions race for the same
// machine only one UPDATE matches a row.
func (r *machineRepository) Claim(ctx context.Context, code string, sessionID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Machine{}).
		Where("machine_code = ?", code).
		Where("status = ?", models.MachineStatusAvailable).
		Updates(map[string]interface{}{
			"status":             models.MachineStatusInUse,
			"current_session_id": sessionID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Release returns the machine to available and clears the session reference
func (r *machineRepository) Release(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Machine{}).
		Where("machine_code = ?", code).
		Updates(map[string]interface{}{
			"status":             models.MachineStatusAvailable,
			"current_session_id": nil,
			"last_seen":          time.Now(),
		}).Error
}
