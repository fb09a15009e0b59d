package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is private so no other package can read or shadow our values.
type contextKey string

const emailKey contextKey = "email"

// TokenHeader is the legacy header some clients send the raw token in.
const TokenHeader = "x-auth-token"

// RequireAuth rejects requests without a valid token with 401 and otherwise
// stores the token subject (the account email) in the request context.
//
// The token is read from "Authorization: Bearer <jwt>" first, then from
// TokenHeader.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				unauthorized(w)
				return
			}
			email, err := tokens.Validate(raw)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), email)))
		})
	}
}

// WithEmail returns a copy of ctx carrying email. Handlers tests use it to
// fake an authenticated request without minting a token.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// EmailFromContext returns the authenticated email, or ("", false) when the
// request went through no auth middleware.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get(TokenHeader))
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"Full authentication is required to access this resource"}`))
}
