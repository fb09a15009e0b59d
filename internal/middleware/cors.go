package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/sakif/cahier-api/internal/auth"
)

// CORS allows browser clients from origins to call the API. "*" allows any
// origin. Tokens travel in headers, never cookies, so credentials stay off.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", auth.TokenHeader},
		AllowCredentials: false,
		MaxAge:           3600,
	})
}
