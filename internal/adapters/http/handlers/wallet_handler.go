package handlers

import (
	"errors"

	"smartwash-backend/internal/core/services"
	"smartwash-backend/internal/pkg/pagination"
	"smartwash-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler handles wallet endpoints
type WalletHandler struct {
	walletService *services.WalletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// TopupRequest represents topup request body
type TopupRequest struct {
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	Description string  `json:"description"`
}

// GetBalance returns the authenticated user's wallet balance
// @Summary Get wallet balance
// @Description Get the current wallet balance of the authenticated user
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /wallet/balance [get]
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	balance, err := h.walletService.CheckBalance(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrWalletNotFound) {
			return response.NotFound(c, "Wallet not found")
		}
		return response.InternalServerError(c, "Failed to get balance")
	}

	return response.Success(c, "Balance retrieved successfully", balance)
}

// Topup credits the authenticated user's wallet
// @Summary Topup wallet
// @Description Credit the wallet and record a topup transaction
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TopupRequest true "Topup data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /wallet/topup [post]
func (h *WalletHandler) Topup(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req TopupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.walletService.Topup(c.Context(), userID, req.Amount, req.Method, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, services.ErrWalletNotFound):
			return response.NotFound(c, "Wallet not found")
		default:
			return response.InternalServerError(c, "Failed to topup wallet")
		}
	}

	return response.Success(c, "Wallet topped up successfully", result)
}

// GetTransactions returns the authenticated user's ledger entries
// @Summary Get transaction history
// @Description Get wallet transactions, newest first, optionally filtered by type
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param type query string false "Transaction type (topup, deduct, refund)"
// @Success 200 {object} response.Response
// @Router /wallet/transactions [get]
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	txnType := c.Query("type")

	history, err := h.walletService.GetTransactionHistory(c.Context(), userID, txnType, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to get transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", history)
}
