package services

import (
	"context"
	"errors"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Price plan service errors
var (
	ErrPlanNotFound     = errors.New("price plan not found")
	ErrNoActivePlan     = errors.New("no active price plan")
	ErrPlanMissingField = errors.New("name and rate per minute are required")
	ErrInvalidPlanField = errors.New("update contains a disallowed field")
)

// planUpdatableFields is the allow-list for partial plan updates
var planUpdatableFields = map[string]bool{
	"name":          true,
	"ratePerMinute": true,
	"maxDuration":   true,
	"isActive":      true,
}

// PricePlanService handles billing rate management. The single-default
// invariant lives here: setting a plan default clears the flag on every
// other plan inside the same transaction.
type PricePlanService struct {
	db       *gorm.DB
	planRepo repositories.PricePlanRepository
}

// NewPricePlanService creates a new price plan service
func NewPricePlanService(db *gorm.DB, planRepo repositories.PricePlanRepository) *PricePlanService {
	return &PricePlanService{db: db, planRepo: planRepo}
}

// CreatePlanInput represents create plan input
type CreatePlanInput struct {
	Name          string  `json:"name"`
	RatePerMinute float64 `json:"rate_per_minute"`
	MaxDuration   int     `json:"max_duration"`
	IsActive      *bool   `json:"is_active"`
	IsDefault     bool    `json:"is_default"`
}

// UpdatePlanInput carries the raw field map of a partial update
type UpdatePlanInput struct {
	Fields map[string]interface{}
}

// PlanListOutput represents a page of price plans
type PlanListOutput struct {
	Plans      []*models.PricePlan `json:"plans"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// Create creates a new price plan
func (s *PricePlanService) Create(ctx context.Context, input *CreatePlanInput) (*models.PricePlan, error) {
	if input.Name == "" || input.RatePerMinute <= 0 {
		return nil, ErrPlanMissingField
	}

	plan := &models.PricePlan{
		Name:          input.Name,
		RatePerMinute: input.RatePerMinute,
		MaxDuration:   input.MaxDuration,
		IsActive:      true,
		IsDefault:     input.IsDefault,
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		planRepo := s.planRepo.WithTx(tx)
		if err := planRepo.Create(ctx, plan); err != nil {
			return err
		}
		if plan.IsDefault {
			return planRepo.ClearDefaultExcept(ctx, plan.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// List lists price plans newest-first, optionally filtered by active flag
func (s *PricePlanService) List(ctx context.Context, isActive *bool, page, limit int) (*PlanListOutput, error) {
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

	plans, total, err := s.planRepo.List(ctx, isActive, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &PlanListOutput{
		Plans:      plans,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetByID gets a price plan by ID
func (s *PricePlanService) GetByID(ctx context.Context, id uint) (*models.PricePlan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetActive returns an active plan, failing when none is configured
func (s *PricePlanService) GetActive(ctx context.Context) (*models.PricePlan, error) {
	plan, err := s.planRepo.GetFirstActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	return plan, nil
}

// Update applies a partial update restricted to the allow-list
func (s *PricePlanService) Update(ctx context.Context, id uint, input *UpdatePlanInput) (*models.PricePlan, error) {
	for field := range input.Fields {
		if !planUpdatableFields[field] {
			return nil, ErrInvalidPlanField
		}
	}

	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if v, ok := input.Fields["name"].(string); ok {
		plan.Name = v
	}
	if v, ok := input.Fields["ratePerMinute"].(float64); ok {
		plan.RatePerMinute = v
	}
	if v, ok := input.Fields["maxDuration"].(float64); ok {
		plan.MaxDuration = int(v)
	}
	if v, ok := input.Fields["isActive"].(bool); ok {
		plan.IsActive = v
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// SetDefault flags one plan as the default and clears the flag everywhere
// else inside the same transaction. Safe to call repeatedly.
func (s *PricePlanService) SetDefault(ctx context.Context, id uint) (*models.PricePlan, error) {
	var plan *models.PricePlan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		planRepo := s.planRepo.WithTx(tx)

		var err error
		plan, err = planRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return err
		}

		if err := planRepo.ClearDefaultExcept(ctx, id); err != nil {
			return err
		}

		if !plan.IsDefault {
			plan.IsDefault = true
			return planRepo.Update(ctx, plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete removes a price plan
func (s *PricePlanService) Delete(ctx context.Context, id uint) error {
	if _, err := s.planRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return s.planRepo.Delete(ctx, id)
}
