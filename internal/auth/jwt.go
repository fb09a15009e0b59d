// Package auth issues and verifies bearer tokens and hashes passwords.
//
// TOKEN FLOW:
// 1. POST /api/auth/login checks the password and calls TokenService.Generate.
// 2. The client sends the token back as "Authorization: Bearer <jwt>" (or, for
//    older clients, in an "x-auth-token" header).
// 3. RequireAuth validates it and stores the account email in the context.
//
// The token subject is the account EMAIL, not an internal id: the email is the
// login identity and every protected lookup is by email. Tokens are stateless;
// there is no server-side revocation list, so a token stays valid until its
// expiry even if the account is deleted.
//
// TOKEN SHAPE:
//
//	{"alg":"HS256","typ":"JWT"}.{"iss":"cahier-api","sub":"ana@x.com","iat":..,"exp":..}.sig
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into every token and required on validation.
const Issuer = "cahier-api"

// DefaultTokenTTL is used when NewTokenService is given a zero ttl.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned by Validate for every rejected token.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenService signs and verifies HS256 tokens with a shared secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; ttl <= 0 means DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of tokens produced by Generate.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Generate returns a signed token whose subject is email.
func (s *TokenService) Generate(email string) (string, error) {
	return s.GenerateWithDuration(email, s.ttl)
}

// GenerateWithDuration is Generate with an explicit lifetime. A negative d
// yields an already-expired token, which the tests rely on.
func (s *TokenService) GenerateWithDuration(email string, d time.Duration) (string, error) {
	now := s.now()
	c := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry and returns the
// subject email. Every failure wraps ErrInvalidToken.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return c.Subject, nil
}
