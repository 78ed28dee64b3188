package services

import (
	"context"
	"errors"
	"time"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Machine service errors
var (
	ErrMachineCodeExists   = errors.New("machine code already exists")
	ErrMachineMissingField = errors.New("name, machine code, location and mqtt topic are required")
	ErrInvalidMachineField = errors.New("update contains a disallowed field")
	ErrBadMachineStatus    = errors.New("unknown machine status")
)

// machineUpdatableFields is the allow-list for partial updates. Any other
// field in the request rejects the whole update.
var machineUpdatableFields = map[string]bool{
	"name":      true,
	"location":  true,
	"status":    true,
	"mqttTopic": true,
}

// MachineService handles machine registry business logic
type MachineService struct {
	machineRepo repositories.MachineRepository
}

// NewMachineService creates a new machine service
func NewMachineService(machineRepo repositories.MachineRepository) *MachineService {
	return &MachineService{machineRepo: machineRepo}
}

// CreateMachineInput represents create machine input
type CreateMachineInput struct {
	Name        string `json:"name"`
	MachineCode string `json:"machine_code"`
	Location    string `json:"location"`
	MqttTopic   string `json:"mqtt_topic"`
}

// UpdateMachineInput carries the raw field map of a partial update so the
// allow-list can see exactly what the caller sent.
type UpdateMachineInput struct {
	Fields map[string]interface{}
}

// MachineListOutput represents a page of machines
type MachineListOutput struct {
	Machines   []*models.Machine `json:"machines"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// Create registers a new machine
func (s *MachineService) Create(ctx context.Context, input *CreateMachineInput) (*models.Machine, error) {
	if input.Name == "" || input.MachineCode == "" || input.Location == "" || input.MqttTopic == "" {
		return nil, ErrMachineMissingField
	}

	exists, err := s.machineRepo.ExistsByCode(ctx, input.MachineCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrMachineCodeExists
	}

	machine := &models.Machine{
		Name:        input.Name,
		MachineCode: input.MachineCode,
		Status:      models.MachineStatusAvailable,
		Location:    input.Location,
		MqttTopic:   input.MqttTopic,
		LastSeen:    time.Now(),
	}
	if err := s.machineRepo.Create(ctx, machine); err != nil {
		return nil, err
	}
	return machine, nil
}

// List lists machines sorted by name, optionally filtered by status and location
func (s *MachineService) List(ctx context.Context, status, location string, page, limit int) (*MachineListOutput, error) {
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

	machines, total, err := s.machineRepo.List(ctx, status, location, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &MachineListOutput{
		Machines:   machines,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetByCode gets a machine by its code
func (s *MachineService) GetByCode(ctx context.Context, code string) (*models.Machine, error) {
	machine, err := s.machineRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return machine, nil
}

// Update applies a partial update restricted to the allow-list. A single
// disallowed field rejects the update without applying anything.
func (s *MachineService) Update(ctx context.Context, code string, input *UpdateMachineInput) (*models.Machine, error) {
	for field := range input.Fields {
		if !machineUpdatableFields[field] {
			return nil, ErrInvalidMachineField
		}
	}

	machine, err := s.machineRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}

	if v, ok := input.Fields["name"].(string); ok {
		machine.Name = v
	}
	if v, ok := input.Fields["location"].(string); ok {
		machine.Location = v
	}
	if v, ok := input.Fields["mqttTopic"].(string); ok {
		machine.MqttTopic = v
	}
	if v, ok := input.Fields["status"].(string); ok {
		if !models.ValidMachineStatus(v) {
			return nil, ErrBadMachineStatus
		}
		machine.Status = v
	}

	if err := s.machineRepo.Update(ctx, machine); err != nil {
		return nil, err
	}
	return machine, nil
}

// Delete removes a machine by code
func (s *MachineService) Delete(ctx context.Context, code string) error {
	deleted, err := s.machineRepo.DeleteByCode(ctx, code)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMachineNotFound
	}
	return nil
}

// SetStatus updates the machine's status and stamps lastSeen
func (s *MachineService) SetStatus(ctx context.Context, code, status string) (*models.Machine, error) {
	if !models.ValidMachineStatus(status) {
		return nil, ErrBadMachineStatus
	}

	machine, err := s.machineRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}

	machine.Status = status
	machine.LastSeen = time.Now()
	if err := s.machineRepo.Update(ctx, machine); err != nil {
		return nil, err
	}
	return machine, nil
}
