package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/model"
	"github.com/sakif/cahier-api/internal/repository"
	"github.com/sakif/cahier-api/internal/storage"
	"github.com/sakif/cahier-api/internal/validation"
)

// PictureStore saves an object and returns the URL it can be fetched from.
// *storage.MinioStore satisfies it.
type PictureStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// UserService serves the authenticated caller's own profile.
type UserService struct {
	users    repository.UserRepository
	pictures PictureStore // nil when object storage isn't configured
	logger   *slog.Logger
}

func NewUserService(users repository.UserRepository, pictures PictureStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, pictures: pictures, logger: logger}
}

// Profile returns the read-only projection of the account with this email.
func (s *UserService) Profile(ctx context.Context, email string) (*model.UserProfile, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// UpdateProfile overwrites the non-nil fields of upd. Email, password and plan
// are not editable here.
func (s *UserService) UpdateProfile(ctx context.Context, email string, upd model.ProfileUpdate) (*model.UserProfile, error) {
	if upd.Name != nil && validation.IsBlank(upd.Name) {
		return nil, apperror.ValidationFailed("name", "Name is required")
	}
	if upd.PhoneNumber != nil && !validation.IsBlank(upd.PhoneNumber) && !validation.IsValidPhoneNumber(*upd.PhoneNumber) {
		return nil, apperror.ValidationFailed("phoneNumber", "Invalid phone number format")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&user.Name, upd.Name)
	set(&user.Address, upd.Address)
	set(&user.PhoneNumber, upd.PhoneNumber)
	set(&user.JobTitle, upd.JobTitle)
	set(&user.Department, upd.Department)
	set(&user.Company, upd.Company)
	set(&user.Location, upd.Location)
	set(&user.Bio, upd.Bio)

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("id", user.ID))
	return user.Profile(), nil
}

// UpdateProfilePicture normalises the uploaded image, stores it and records
// its URL on the account.
func (s *UserService) UpdateProfilePicture(ctx context.Context, email string, image io.Reader) (*model.UserProfile, error) {
	if s.pictures == nil {
		return nil, apperror.Unavailable("Profile picture storage is not configured")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	data, err := storage.NormalizeProfilePicture(image)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, apperror.ValidationFailed("file", "The uploaded file is not a supported image")
		}
		return nil, fmt.Errorf("normalising picture: %w", err)
	}

	url, err := s.pictures.Put(ctx, storage.ProfilePictureObject(user.ID), data, storage.ProfilePictureContentType)
	if err != nil {
		s.logger.Error("profile picture upload failed",
			slog.String("id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream("Profile picture upload failed", nil)
	}

	user.ProfilePic = url
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("saving picture url: %w", err)
	}

	s.logger.Info("profile picture updated", slog.String("id", user.ID))
	return user.Profile(), nil
}
