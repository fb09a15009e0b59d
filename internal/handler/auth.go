package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/model"
)

// Authenticator is the part of service.AuthService the handler needs.
type Authenticator interface {
	Register(ctx context.Context, req model.SignupRequest) (*model.User, error)
	Authenticate(ctx context.Context, req model.LoginRequest) (string, error)
}

// AuthHandler serves the public /api/auth endpoints.
type AuthHandler struct {
	auth   Authenticator
	logger *slog.Logger
}

func NewAuthHandler(auth Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleSignup registers an account.
//
// HTTP: POST /api/auth/signup
//
// Every client-side failure (bad input, email taken) is a 400 carrying
// "Registration failed: <reason>".
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Message: "Registration failed: " + messageFor(err)})
		return
	}

	if _, err := h.auth.Register(r.Context(), req); err != nil {
		status := http.StatusBadRequest
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			status = http.StatusInternalServerError
			reportInternal(r, h.logger, err)
		}
		writeJSON(w, status, AuthResponse{Message: "Registration failed: " + messageFor(err)})
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "User registered successfully"})
}

// HandleLogin exchanges credentials for a bearer token.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Message: messageFor(err)})
		return
	}

	token, err := h.auth.Authenticate(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			reportInternal(r, h.logger, err)
		}
		writeJSON(w, status, AuthResponse{Message: messageFor(err)})
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Login successful", Token: token})
}
