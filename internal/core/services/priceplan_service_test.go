package services

import (
	"context"
	"testing"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestPlanService(db *gorm.DB) *PricePlanService {
	return NewPricePlanService(db, repositories.NewPricePlanRepository(db))
}

func countDefaultPlans(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.PricePlan{}).Where("is_default = ?", true).Count(&count).Error)
	return count
}

func TestPricePlanCreate(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlanService(db)

	plan, err := svc.Create(context.Background(), &CreatePlanInput{
		Name:          "Standard",
		RatePerMinute: 500,
		MaxDuration:   120,
		IsDefault:     true,
	})
	require.NoError(t, err)
	assert.True(t, plan.IsActive)
	assert.True(t, plan.IsDefault)

	_, err = svc.Create(context.Background(), &CreatePlanInput{RatePerMinute: 500})
	assert.ErrorIs(t, err, ErrPlanMissingField)
}

func TestPricePlanSingleDefault(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlanService(db)

	first, err := svc.Create(context.Background(), &CreatePlanInput{
		Name:          "First",
		RatePerMinute: 500,
		IsDefault:     true,
	})
	require.NoError(t, err)

	// Creating a second default clears the first one in the same transaction.
	second, err := svc.Create(context.Background(), &CreatePlanInput{
		Name:          "Second",
		RatePerMinute: 700,
		IsDefault:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), countDefaultPlans(t, db))

	var reloaded models.PricePlan
	require.NoError(t, db.First(&reloaded, first.ID).Error)
	assert.False(t, reloaded.IsDefault)

	// SetDefault moves the flag and stays idempotent.
	_, err = svc.SetDefault(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = svc.SetDefault(context.Background(), first.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), countDefaultPlans(t, db))

	reloaded = models.PricePlan{}
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.False(t, reloaded.IsDefault)
}

func TestPricePlanUpdateAllowList(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlanService(db)

	plan, err := svc.Create(context.Background(), &CreatePlanInput{
		Name:          "Standard",
		RatePerMinute: 500,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), plan.ID, &UpdatePlanInput{
		Fields: map[string]interface{}{
			"name":          "Premium",
			"ratePerMinute": float64(800),
			"maxDuration":   float64(60),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Premium", updated.Name)
	assert.Equal(t, float64(800), updated.RatePerMinute)
	assert.Equal(t, 60, updated.MaxDuration)

	// One bad field rejects the whole update.
	_, err = svc.Update(context.Background(), plan.ID, &UpdatePlanInput{
		Fields: map[string]interface{}{
			"name":      "Hacked",
			"isDefault": true,
		},
	})
	assert.ErrorIs(t, err, ErrInvalidPlanField)

	var reloaded models.PricePlan
	require.NoError(t, db.First(&reloaded, plan.ID).Error)
	assert.Equal(t, "Premium", reloaded.Name)
}

func TestPricePlanGetActiveFallback(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlanService(db)

	_, err := svc.GetActive(context.Background())
	assert.ErrorIs(t, err, ErrNoActivePlan)

	// Without a default the first active plan wins.
	plan, err := svc.Create(context.Background(), &CreatePlanInput{
		Name:          "Only",
		RatePerMinute: 500,
	})
	require.NoError(t, err)

	active, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plan.ID, active.ID)

	// A default plan takes precedence.
	preferred, err := svc.Create(context.Background(), &CreatePlanInput{
		Name:          "Preferred",
		RatePerMinute: 900,
		IsDefault:     true,
	})
	require.NoError(t, err)

	active, err = svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, preferred.ID, active.ID)
}

func TestPricePlanDelete(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlanService(db)

	plan, err := svc.Create(context.Background(), &CreatePlanInput{
		Name:          "Doomed",
		RatePerMinute: 500,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), plan.ID))

	_, err = svc.GetByID(context.Background(), plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	err = svc.Delete(context.Background(), plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
