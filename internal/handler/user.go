package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/cahier-api/internal/auth"
	"github.com/sakif/cahier-api/internal/model"
)

// MaxPictureBytes is the largest profile picture accepted.
const MaxPictureBytes = 5 << 20

// Profiles is the part of service.UserService the handler needs.
type Profiles interface {
	Profile(ctx context.Context, email string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, email string, upd model.ProfileUpdate) (*model.UserProfile, error)
	UpdateProfilePicture(ctx context.Context, email string, image io.Reader) (*model.UserProfile, error)
}

// UserHandler serves the caller's own profile. Every route sits behind
// auth.RequireAuth, which puts the caller's email on the context.
type UserHandler struct {
	users  Profiles
	logger *slog.Logger
}

func NewUserHandler(users Profiles, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleProfile returns the caller's profile.
//
// HTTP: GET /api/user/profile
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, AuthResponse{Message: "Full authentication is required to access this resource"})
		return
	}

	profile, err := h.users.Profile(r.Context(), email)
	if err != nil {
		h.fail(w, r, "Could not retrieve user profile: ", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile overwrites the fields present in the body.
//
// HTTP: PUT /api/user/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, AuthResponse{Message: "Full authentication is required to access this resource"})
		return
	}

	var upd model.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		h.fail(w, r, "Could not update user profile: ", err)
		return
	}

	profile, err := h.users.UpdateProfile(r.Context(), email, upd)
	if err != nil {
		h.fail(w, r, "Could not update user profile: ", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdatePicture stores a new profile picture.
//
// HTTP: PUT /api/user/profile/picture (multipart/form-data, field "file")
func (h *UserHandler) HandleUpdatePicture(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, AuthResponse{Message: "Full authentication is required to access this resource"})
		return
	}

	// Room for the multipart framing on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, MaxPictureBytes+64<<10)
	if err := r.ParseMultipartForm(MaxPictureBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, AuthResponse{Message: "The uploaded file exceeds 5 MiB"})
			return
		}
		writeJSON(w, http.StatusBadRequest, AuthResponse{Message: "Expected a multipart form with a file field"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Message: "file is required"})
		return
	}
	defer file.Close()

	if header.Size > MaxPictureBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, AuthResponse{Message: "The uploaded file exceeds 5 MiB"})
		return
	}

	profile, err := h.users.UpdateProfilePicture(r.Context(), email, file)
	if err != nil {
		h.fail(w, r, "Could not update profile picture: ", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		reportInternal(r, h.logger, err)
	}
	writeJSON(w, status, AuthResponse{Message: prefix + messageFor(err)})
}
