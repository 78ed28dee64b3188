package handlers

import (
	"errors"

	"smartwash-backend/internal/core/services"
	"smartwash-backend/internal/pkg/pagination"
	"smartwash-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MachineHandler handles machine endpoints
type MachineHandler struct {
	machineService *services.MachineService
}

// NewMachineHandler creates a new machine handler
func NewMachineHandler(machineService *services.MachineService) *MachineHandler {
	return &MachineHandler{machineService: machineService}
}

// Create registers a new machine
// @Summary Create machine
// @Description Register a new washing machine (admin only)
// @Tags Machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMachineInput true "Machine data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /machines [post]
func (h *MachineHandler) Create(c *fiber.Ctx) error {
	var input services.CreateMachineInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	machine, err := h.machineService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMachineMissingField):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrMachineCodeExists):
			return response.Conflict(c, "Machine code already exists")
		default:
			return response.InternalServerError(c, "Failed to create machine")
		}
	}

	return response.Created(c, "Machine created successfully", machine)
}

// List returns machines with optional filters
// @Summary List machines
// @Description List machines with optional status and location filters
// @Tags Machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Machine status"
// @Param location query string false "Location substring"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /machines [get]
func (h *MachineHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")
	location := c.Query("location")

	result, err := h.machineService.List(c.Context(), status, location, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list machines")
	}

	return response.Success(c, "Machines retrieved successfully", result)
}

// GetByCode returns one machine
// @Summary Get machine
// @Description Get a machine by its code
// @Tags Machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Machine code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /machines/{code} [get]
func (h *MachineHandler) GetByCode(c *fiber.Ctx) error {
	code := c.Params("code")

	machine, err := h.machineService.GetByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrMachineNotFound) {
			return response.NotFound(c, "Machine not found")
		}
		return response.InternalServerError(c, "Failed to get machine")
	}

	return response.Success(c, "Machine retrieved successfully", machine)
}

// Update modifies a machine
// @Summary Update machine
// @Description Update machine fields; unknown fields reject the whole update (admin only)
// @Tags Machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Machine code"
// @Param body body map[string]interface{} true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /machines/{code} [patch]
func (h *MachineHandler) Update(c *fiber.Ctx) error {
	code := c.Params("code")

	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	machine, err := h.machineService.Update(c.Context(), code, &services.UpdateMachineInput{Fields: fields})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMachineNotFound):
			return response.NotFound(c, "Machine not found")
		case errors.Is(err, services.ErrInvalidMachineField):
			return response.BadRequest(c, "Update contains a disallowed field")
		case errors.Is(err, services.ErrBadMachineStatus):
			return response.BadRequest(c, "Unknown machine status")
		default:
			return response.InternalServerError(c, "Failed to update machine")
		}
	}

	return response.Success(c, "Machine updated successfully", machine)
}

// Delete removes a machine
// @Summary Delete machine
// @Description Delete a machine by its code (admin only)
// @Tags Machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Machine code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /machines/{code} [delete]
func (h *MachineHandler) Delete(c *fiber.Ctx) error {
	code := c.Params("code")

	if err := h.machineService.Delete(c.Context(), code); err != nil {
		if errors.Is(err, services.ErrMachineNotFound) {
			return response.NotFound(c, "Machine not found")
		}
		return response.InternalServerError(c, "Failed to delete machine")
	}

	return response.Success(c, "Machine deleted successfully", nil)
}
