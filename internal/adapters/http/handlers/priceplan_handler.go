package handlers

import (
	"errors"
	"strconv"

	"smartwash-backend/internal/core/services"
	"smartwash-backend/internal/pkg/pagination"
	"smartwash-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PricePlanHandler handles price plan endpoints
type PricePlanHandler struct {
	planService *services.PricePlanService
}

// NewPricePlanHandler creates a new price plan handler
func NewPricePlanHandler(planService *services.PricePlanService) *PricePlanHandler {
	return &PricePlanHandler{planService: planService}
}

// Create creates a new price plan
// @Summary Create price plan
// @Description Create a new price plan (admin only)
// @Tags PricePlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePlanInput true "Plan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /price-plans [post]
func (h *PricePlanHandler) Create(c *fiber.Ctx) error {
	var input services.CreatePlanInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	plan, err := h.planService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrPlanMissingField) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to create price plan")
	}

	return response.Created(c, "Price plan created successfully", plan)
}

// List returns price plans
// @Summary List price plans
// @Description List price plans, optionally filtered by active state
// @Tags PricePlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param is_active query bool false "Filter by active state"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /price-plans [get]
func (h *PricePlanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid is_active value")
		}
		isActive = &parsed
	}

	result, err := h.planService.List(c.Context(), isActive, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list price plans")
	}

	return response.Success(c, "Price plans retrieved successfully", result)
}

// GetActive returns the plan used for billing when none is specified
// @Summary Get active price plan
// @Description Get the default plan, or the first active plan when no default is set
// @Tags PricePlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /price-plans/active [get]
func (h *PricePlanHandler) GetActive(c *fiber.Ctx) error {
	plan, err := h.planService.GetActive(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoActivePlan) {
			return response.NotFound(c, "No active price plan")
		}
		return response.InternalServerError(c, "Failed to get active price plan")
	}

	return response.Success(c, "Active price plan retrieved successfully", plan)
}

// GetByID returns one price plan
// @Summary Get price plan
// @Description Get a price plan by ID
// @Tags PricePlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /price-plans/{id} [get]
func (h *PricePlanHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plan ID")
	}

	plan, err := h.planService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return response.NotFound(c, "Price plan not found")
		}
		return response.InternalServerError(c, "Failed to get price plan")
	}

	return response.Success(c, "Price plan retrieved successfully", plan)
}

// Update modifies a price plan
// @Summary Update price plan
// @Description Update plan fields; unknown fields reject the whole update (admin only)
// @Tags PricePlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Param body body map[string]interface{} true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /price-plans/{id} [patch]
func (h *PricePlanHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plan ID")
	}

	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	plan, err := h.planService.Update(c.Context(), uint(id), &services.UpdatePlanInput{Fields: fields})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlanNotFound):
			return response.NotFound(c, "Price plan not found")
		case errors.Is(err, services.ErrInvalidPlanField):
			return response.BadRequest(c, "Update contains a disallowed field")
		default:
			return response.InternalServerError(c, "Failed to update price plan")
		}
	}

	return response.Success(c, "Price plan updated successfully", plan)
}

// SetDefault marks a plan as the default
// @Summary Set default price plan
// @Description Mark a plan as default; any previous default is cleared (admin only)
// @Tags PricePlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /price-plans/{id}/default [post]
func (h *PricePlanHandler) SetDefault(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plan ID")
	}

	plan, err := h.planService.SetDefault(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return response.NotFound(c, "Price plan not found")
		}
		return response.InternalServerError(c, "Failed to set default price plan")
	}

	return response.Success(c, "Default price plan set successfully", plan)
}

// Delete removes a price plan
// @Summary Delete price plan
// @Description Delete a price plan by ID (admin only)
// @Tags PricePlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /price-plans/{id} [delete]
func (h *PricePlanHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plan ID")
	}

	if err := h.planService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return response.NotFound(c, "Price plan not found")
		}
		return response.InternalServerError(c, "Failed to delete price plan")
	}

	return response.Success(c, "Price plan deleted successfully", nil)
}
