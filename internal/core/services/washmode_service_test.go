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

func newTestWashModeService(db *gorm.DB) *WashModeService {
	return NewWashModeService(db, repositories.NewWashModeRepository(db))
}

func TestWashModeCreateWithStages(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWashModeService(db)
	ctx := context.Background()

	mode, err := svc.Create(ctx, &CreateWashModeInput{
		Name:        "Heavy Duty",
		Description: "Long cycle for heavily soiled loads",
		Duration:    15,
		Stages: []WaterStageInput{
			{Level: 3, Duration: 8},
			{Level: 2, Duration: 5},
			{Level: 1, Duration: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, mode.Stages, 3)

	// stage order follows input order
	assert.Equal(t, 1, mode.Stages[0].StageOrder)
	assert.Equal(t, 3, mode.Stages[0].Level)
	assert.Equal(t, 3, mode.Stages[2].StageOrder)
	assert.Equal(t, 1, mode.Stages[2].Level)

	assert.Equal(t, 15+8+5+2, mode.TotalDuration())
}

func TestWashModeCreateMissingFields(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWashModeService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateWashModeInput{Name: "Quick"})
	assert.ErrorIs(t, err, ErrWashModeMissingField)

	_, err = svc.Create(ctx, &CreateWashModeInput{
		Name:        "Quick",
		Description: "Short cycle",
		Duration:    0,
	})
	assert.ErrorIs(t, err, ErrWashModeMissingField)
}

func TestWashModeGetByIDOrdersStages(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWashModeService(db)
	ctx := context.Background()

	mode := &models.WashMode{
		Name:        "Normal Wash",
		Description: "Standard cycle",
		Duration:    10,
		Stages: []models.WaterStage{
			{StageOrder: 2, Level: 1, Duration: 4},
			{StageOrder: 1, Level: 2, Duration: 6},
		},
	}
	require.NoError(t, db.Create(mode).Error)

	got, err := svc.GetByID(ctx, mode.ID)
	require.NoError(t, err)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, 1, got.Stages[0].StageOrder)
	assert.Equal(t, 2, got.Stages[1].StageOrder)

	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrWashModeNotFound)
}

func TestWashModeList(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWashModeService(db)
	ctx := context.Background()

	seedWashMode(t, db, "Quick Wash", 5)
	seedWashMode(t, db, "Normal Wash", 10)
	seedWashMode(t, db, "Heavy Duty", 15)

	out, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.WashModes, 2)
	assert.Equal(t, 2, out.TotalPages)

	// sorted by name
	assert.Equal(t, "Heavy Duty", out.WashModes[0].Name)
	assert.Equal(t, "Normal Wash", out.WashModes[1].Name)
}

func TestWashModeUpdateReplacesStages(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWashModeService(db)
	ctx := context.Background()

	mode, err := svc.Create(ctx, &CreateWashModeInput{
		Name:        "Normal Wash",
		Description: "Standard cycle",
		Duration:    10,
		Stages: []WaterStageInput{
			{Level: 2, Duration: 6},
			{Level: 1, Duration: 4},
		},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, mode.ID, &CreateWashModeInput{
		Name:        "Normal Wash Plus",
		Description: "Standard cycle with extra rinse",
		Duration:    12,
		Stages: []WaterStageInput{
			{Level: 3, Duration: 9},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Normal Wash Plus", updated.Name)
	assert.Equal(t, 12, updated.Duration)
	require.Len(t, updated.Stages, 1)
	assert.Equal(t, 3, updated.Stages[0].Level)

	// old stage rows are gone
	var count int64
	require.NoError(t, db.Model(&models.WaterStage{}).
		Where("wash_mode_id = ?", mode.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = svc.Update(ctx, 999, &CreateWashModeInput{
		Name:        "Ghost",
		Description: "Does not exist",
		Duration:    5,
	})
	assert.ErrorIs(t, err, ErrWashModeNotFound)
}

func TestWashModeDeleteCascadesStages(t *testing.T) {
	db := newTestDB(t)
	svc := newTestWashModeService(db)
	ctx := context.Background()

	mode, err := svc.Create(ctx, &CreateWashModeInput{
		Name:        "Quick Wash",
		Description: "Short cycle",
		Duration:    5,
		Stages: []WaterStageInput{
			{Level: 1, Duration: 3},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, mode.ID))
	assert.ErrorIs(t, svc.Delete(ctx, mode.ID), ErrWashModeNotFound)

	var count int64
	require.NoError(t, db.Model(&models.WaterStage{}).
		Where("wash_mode_id = ?", mode.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
