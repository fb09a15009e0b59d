// Package service holds the business rules between the HTTP handlers and the
// stores.
//
// LAYERS:
//
//	handler   parses HTTP, picks status codes
//	service   validates, maps, orchestrates (this package)
//	repository reads and writes rows
//
// Services take repository interfaces and return *apperror.AppError for every
// failure a client should see. Anything else is an internal error the handler
// turns into a 500.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/auth"
	"github.com/sakif/cahier-api/internal/model"
	"github.com/sakif/cahier-api/internal/repository"
	"github.com/sakif/cahier-api/internal/validation"
)

// Messages clients see. Wrong password and unknown email share msgBadCredentials.
const (
	msgEmailInUse     = "Email is already in use!"
	msgBadCredentials = "Invalid email or password"
)

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register validates req, checks the email is free, hashes the password and
// stores the account. Nothing is written unless every check passes.
func (s *AuthService) Register(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if err := validateSignup(req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, apperror.Conflict("email", msgEmailInUse)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Plan:         model.DefaultPlan,
		MemberSince:  now,
		LastLogin:    now,
	}

	// The store's UNIQUE constraint catches a signup racing past ExistsByEmail.
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("id", user.ID), slog.String("email", user.Email))
	return user, nil
}

// Authenticate checks the credentials, records the login time and returns a
// signed token for the email.
func (s *AuthService) Authenticate(ctx context.Context, req model.LoginRequest) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = s.passwords.DummyVerify(req.Password)
			return "", apperror.Unauthorized(msgBadCredentials)
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unusable",
				slog.String("id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return "", apperror.Unauthorized(msgBadCredentials)
	}

	user.LastLogin = s.now()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return "", fmt.Errorf("recording login: %w", err)
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return token, nil
}

func validateSignup(req model.SignupRequest) error {
	switch {
	case validation.IsBlankString(req.Name):
		return apperror.ValidationFailed("name", "Name is required")
	case validation.IsBlankString(req.Email):
		return apperror.ValidationFailed("email", "Email is required")
	case validation.IsBlankString(req.Password):
		return apperror.ValidationFailed("password", "Password is required")
	case !validation.IsValidEmail(req.Email):
		return apperror.ValidationFailed("email", "Invalid email format")
	case !validation.IsValidPassword(req.Password):
		return apperror.ValidationFailed("password",
			"Password must be at least 8 characters long and contain at least one digit, one lowercase letter, one uppercase letter and one special character")
	case !validation.IsBlankString(req.PhoneNumber) && !validation.IsValidPhoneNumber(req.PhoneNumber):
		return apperror.ValidationFailed("phoneNumber", "Invalid phone number format")
	}
	return nil
}
