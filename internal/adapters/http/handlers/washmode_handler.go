package handlers

import (
	"errors"

	"smartwash-backend/internal/core/services"
	"smartwash-backend/internal/pkg/pagination"
	"smartwash-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WashModeHandler handles wash mode endpoints
type WashModeHandler struct {
	washModeService *services.WashModeService
}

// NewWashModeHandler creates a new wash mode handler
func NewWashModeHandler(washModeService *services.WashModeService) *WashModeHandler {
	return &WashModeHandler{washModeService: washModeService}
}

// Create creates a new wash mode
// @Summary Create wash mode
// @Description Create a wash program with its ordered water stages (admin only)
// @Tags WashModes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateWashModeInput true "Wash mode data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /wash-modes [post]
func (h *WashModeHandler) Create(c *fiber.Ctx) error {
	var input services.CreateWashModeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	mode, err := h.washModeService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrWashModeMissingField) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to create wash mode")
	}

	return response.Created(c, "Wash mode created successfully", mode)
}

// List returns wash modes with their stages
// @Summary List wash modes
// @Description List wash programs with their water stages
// @Tags WashModes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /wash-modes [get]
func (h *WashModeHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.washModeService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list wash modes")
	}

	return response.Success(c, "Wash modes retrieved successfully", result)
}

// GetByID returns one wash mode
// @Summary Get wash mode
// @Description Get a wash mode by ID, stages included
// @Tags WashModes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Wash mode ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /wash-modes/{id} [get]
func (h *WashModeHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid wash mode ID")
	}

	mode, err := h.washModeService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrWashModeNotFound) {
			return response.NotFound(c, "Wash mode not found")
		}
		return response.InternalServerError(c, "Failed to get wash mode")
	}

	return response.Success(c, "Wash mode retrieved successfully", mode)
}

// Update replaces a wash mode's definition and stages
// @Summary Update wash mode
// @Description Replace the wash mode definition, stages included (admin only)
// @Tags WashModes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Wash mode ID"
// @Param body body services.CreateWashModeInput true "Wash mode data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /wash-modes/{id} [put]
func (h *WashModeHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid wash mode ID")
	}

	var input services.CreateWashModeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	mode, err := h.washModeService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWashModeNotFound):
			return response.NotFound(c, "Wash mode not found")
		case errors.Is(err, services.ErrWashModeMissingField):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update wash mode")
		}
	}

	return response.Success(c, "Wash mode updated successfully", mode)
}

// Delete removes a wash mode and its stages
// @Summary Delete wash mode
// @Description Delete a wash mode by ID (admin only)
// @Tags WashModes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Wash mode ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /wash-modes/{id} [delete]
func (h *WashModeHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid wash mode ID")
	}

	if err := h.washModeService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrWashModeNotFound) {
			return response.NotFound(c, "Wash mode not found")
		}
		return response.InternalServerError(c, "Failed to delete wash mode")
	}

	return response.Success(c, "Wash mode deleted successfully", nil)
}
