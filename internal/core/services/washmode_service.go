package services

import (
	"context"
	"errors"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Wash mode service errors
var (
	ErrWashModeMissingField = errors.New("name, description and duration are required")
)

// WashModeService handles wash program management
type WashModeService struct {
	db           *gorm.DB
	washModeRepo repositories.WashModeRepository
}

// NewWashModeService creates a new wash mode service
func NewWashModeService(db *gorm.DB, washModeRepo repositories.WashModeRepository) *WashModeService {
	return &WashModeService{db: db, washModeRepo: washModeRepo}
}

// WaterStageInput represents one water stage of a wash mode
type WaterStageInput struct {
	Level    int `json:"level"`
	Duration int `json:"duration"`
}

// CreateWashModeInput represents create wash mode input
type CreateWashModeInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Duration    int               `json:"duration"`
	IsDefault   bool              `json:"is_default"`
	Stages      []WaterStageInput `json:"stages"`
}

// WashModeListOutput represents a page of wash modes
type WashModeListOutput struct {
	WashModes  []*models.WashMode `json:"wash_modes"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// Create creates a wash mode with its ordered water stages
func (s *WashModeService) Create(ctx context.Context, input *CreateWashModeInput) (*models.WashMode, error) {
	if input.Name == "" || input.Description == "" || input.Duration <= 0 {
		return nil, ErrWashModeMissingField
	}

	mode := &models.WashMode{
		Name:        input.Name,
		Description: input.Description,
		Duration:    input.Duration,
		IsDefault:   input.IsDefault,
	}
	for i, stage := range input.Stages {
		mode.Stages = append(mode.Stages, models.WaterStage{
			StageOrder: i + 1,
			Level:      stage.Level,
			Duration:   stage.Duration,
		})
	}

	if err := s.washModeRepo.Create(ctx, mode); err != nil {
		return nil, err
	}
	return mode, nil
}

// GetByID gets a wash mode with its stages
func (s *WashModeService) GetByID(ctx context.Context, id uint) (*models.WashMode, error) {
	mode, err := s.washModeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWashModeNotFound
		}
		return nil, err
	}
	return mode, nil
}

// List lists wash modes with pagination
func (s *WashModeService) List(ctx context.Context, page, limit int) (*WashModeListOutput, error) {
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

	modes, total, err := s.washModeRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &WashModeListOutput{
		WashModes:  modes,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Update replaces the mode's fields and its stage list as one transaction
func (s *WashModeService) Update(ctx context.Context, id uint, input *CreateWashModeInput) (*models.WashMode, error) {
	if input.Name == "" || input.Description == "" || input.Duration <= 0 {
		return nil, ErrWashModeMissingField
	}

	var mode *models.WashMode
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.washModeRepo.WithTx(tx)

		var err error
		mode, err = repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWashModeNotFound
			}
			return err
		}

		if err := repo.DeleteStages(ctx, id); err != nil {
			return err
		}

		mode.Name = input.Name
		mode.Description = input.Description
		mode.Duration = input.Duration
		mode.IsDefault = input.IsDefault
		mode.Stages = nil
		for i, stage := range input.Stages {
			mode.Stages = append(mode.Stages, models.WaterStage{
				WashModeID: id,
				StageOrder: i + 1,
				Level:      stage.Level,
				Duration:   stage.Duration,
			})
		}

		return repo.Update(ctx, mode)
	})
	if err != nil {
		return nil, err
	}
	return mode, nil
}

// Delete removes a wash mode and its stages
func (s *WashModeService) Delete(ctx context.Context, id uint) error {
	if _, err := s.washModeRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWashModeNotFound
		}
		return err
	}
	return s.washModeRepo.Delete(ctx, id)
}
