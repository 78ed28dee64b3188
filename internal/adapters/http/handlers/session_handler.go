package handlers

import (
	"errors"

	"smartwash-backend/internal/core/services"
	"smartwash-backend/internal/pkg/pagination"
	"smartwash-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler handles wash session endpoints
type SessionHandler struct {
	sessionService *services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start starts a new wash session
// @Summary Start wash session
// @Description Reserve a machine, bill the wallet and start the session atomically
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.StartSessionInput true "Session data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 402 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /sessions [post]
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.StartSessionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	session, err := h.sessionService.StartSession(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoWashModesSelected):
			return response.BadRequest(c, "At least one wash mode is required")
		case errors.Is(err, services.ErrMachineNotFound):
			return response.NotFound(c, "Machine not found")
		case errors.Is(err, services.ErrMachineBusy):
			return response.Conflict(c, "Machine is not available")
		case errors.Is(err, services.ErrPlanUnavailable):
			return response.NotFound(c, "Price plan not found or inactive")
		case errors.Is(err, services.ErrNoDefaultPlan):
			return response.NotFound(c, "No default price plan configured")
		case errors.Is(err, services.ErrWashModeNotFound):
			return response.NotFound(c, "Wash mode not found")
		case errors.Is(err, services.ErrDurationExceedsPlan):
			return response.BadRequest(c, "Total duration exceeds the plan's maximum")
		case errors.Is(err, services.ErrWalletNotFound):
			return response.NotFound(c, "Wallet not found")
		case errors.Is(err, services.ErrInsufficientBalance):
			return response.Error(c, fiber.StatusPaymentRequired, "Insufficient wallet balance")
		default:
			return response.InternalServerError(c, "Failed to start session")
		}
	}

	return response.Created(c, "Session started successfully", session)
}

// List returns the authenticated user's sessions
// @Summary List sessions
// @Description List the user's wash sessions, newest first
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Session status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /sessions [get]
func (h *SessionHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	status := c.Query("status")

	result, err := h.sessionService.GetUserSessions(c.Context(), userID, status, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list sessions")
	}

	return response.Success(c, "Sessions retrieved successfully", result)
}

// GetByID returns one of the authenticated user's sessions
// @Summary Get session
// @Description Get a wash session owned by the authenticated user
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid session ID")
	}

	session, err := h.sessionService.GetSession(c.Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return response.NotFound(c, "Session not found")
		}
		return response.InternalServerError(c, "Failed to get session")
	}

	return response.Success(c, "Session retrieved successfully", session)
}

// Cancel aborts a pending or running session
// @Summary Cancel session
// @Description Cancel the user's session; paid sessions are refunded in full
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid session ID")
	}

	session, err := h.sessionService.CancelSession(c.Context(), userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return response.NotFound(c, "Session not found")
		case errors.Is(err, services.ErrInvalidSessionState):
			return response.Conflict(c, "Only pending or running sessions can be cancelled")
		default:
			return response.InternalServerError(c, "Failed to cancel session")
		}
	}

	return response.Success(c, "Session cancelled successfully", session)
}

// End completes a running session (admin only)
// @Summary End session
// @Description Complete a session and free its machine
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sessions/{id}/end [post]
func (h *SessionHandler) End(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid session ID")
	}

	session, err := h.sessionService.EndSession(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return response.NotFound(c, "Session not found")
		case errors.Is(err, services.ErrMachineNotFound):
			return response.NotFound(c, "Machine not found")
		default:
			return response.InternalServerError(c, "Failed to end session")
		}
	}

	return response.Success(c, "Session ended successfully", session)
}
