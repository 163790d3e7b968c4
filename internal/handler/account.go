package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kontobank/kontobank/internal/handler/dto"
	"github.com/kontobank/kontobank/internal/service"
)

// AccountHandler handles balance reads and deposits for the token holder.
type AccountHandler struct {
	svc    *service.BalanceService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.BalanceService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Balance handles POST /me/accounts and GET /me/accounts.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if r.Method != http.MethodGet {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
			return
		}
	}

	balance, err := h.svc.GetBalance(r.Context(), bearerToken(r, req.Token))
	if err != nil {
		handleServiceError(w, r, h.logger, err, "Error checking balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{Balance: dto.Money(balance)})
}

// Deposit handles POST /me/accounts/transactions.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}

	// An unparseable amount is deposited as zero so the token is still
	// checked first and the service rejects the amount.
	amount, err := req.ParseAmount()
	if err != nil {
		amount = decimal.Zero
	}

	newBalance, err := h.svc.Deposit(r.Context(), bearerToken(r, req.Token), amount)
	if err != nil {
		handleServiceError(w, r, h.logger, err, "Error processing deposit")
		return
	}

	writeJSON(w, http.StatusOK, dto.DepositResponse{NewBalance: dto.Money(newBalance)})
}
