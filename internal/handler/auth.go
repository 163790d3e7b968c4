package handler

import (
	"log/slog"
	"net/http"

	"github.com/kontobank/kontobank/internal/handler/dto"
	"github.com/kontobank/kontobank/internal/service"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}

	if _, err := h.svc.RegisterUser(r.Context(), req.Username, req.Password); err != nil {
		handleServiceError(w, r, h.logger, err, "Error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageResponse{Message: "User created"})
}

// Login handles POST /sessions.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}

	issued, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, r, h.logger, err, "Error during login")
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	})
}

// Logout handles DELETE /sessions.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}

	if err := h.svc.Logout(r.Context(), bearerToken(r, req.Token)); err != nil {
		handleServiceError(w, r, h.logger, err, "Error during logout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
