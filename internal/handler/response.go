// Package handler binds HTTP requests to the services.
//
// RESPONSE SHAPES:
// The API keeps three body styles, one per endpoint family:
//
//	/api/auth, /api/user   {"success": false, "message": "..."}   (AuthResponse)
//	/api/cdc               plain text "<French context>: <message>"
//	/api/gemini            {"response": "..."}
//
// Status codes never depend on message text. They come from the apperror kind
// via statusFor, so a message can be reworded without changing the status.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/sakif/cahier-api/internal/apperror"
)

// maxJSONBody caps request bodies. A full CDC with every section filled in
// stays well below it.
const maxJSONBody = 2 << 20

const msgInternal = "An internal error occurred"

// AuthResponse is the body of every /api/auth reply and of /api/user failures.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// statusFor maps an error kind to an HTTP status. Anything that isn't an
// AppError is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperror.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// messageFor returns the client-safe message of err. Internal errors may
// carry SQL or file paths, so they are replaced by a generic message.
func messageFor(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return msgInternal
}

// reportInternal logs a 500 and forwards it to Sentry when the request
// carries a hub (sentryhttp puts one on the context).
func reportInternal(r *http.Request, logger *slog.Logger, err error) {
	logger.Error("internal error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

// decodeJSON reads a single JSON value from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
