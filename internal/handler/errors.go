package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kontobank/kontobank/internal/middleware"
	"github.com/kontobank/kontobank/internal/service"
)

// handleServiceError maps service errors to responses. Anything unrecognised
// is logged and answered with internalMessage.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, internalMessage string) {
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, "DUPLICATE_USERNAME", "Username is already taken")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Username and password are required")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusForbidden, "INVALID_TOKEN", "Invalid token")
	case errors.Is(err, service.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a positive value with at most two decimal places")
	default:
		logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
			"path", r.URL.Path,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", internalMessage)
	}
}
