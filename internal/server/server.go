// Package server is the composition root: it opens the store, builds the
// services and handlers, and mounts them on a chi router.
//
// ROUTES:
//
//	GET    /healthz                        public
//	POST   /api/auth/signup                public
//	POST   /api/auth/login                 public
//	GET    /api/user/profile               bearer token
//	PUT    /api/user/profile               bearer token
//	PUT    /api/user/profile/picture       bearer token
//	POST   /api/cdc                        bearer token
//	POST   /api/cdc/enhance                bearer token
//	GET    /api/cdc                        bearer token
//	GET    /api/cdc/search?nomProjet=      bearer token
//	GET    /api/cdc/{id}                   bearer token
//	PUT    /api/cdc/{id}                   bearer token
//	PUT    /api/cdc/{id}/enhance           bearer token
//	DELETE /api/cdc/{id}                   bearer token
//	POST   /api/gemini/generate            bearer token
//	POST   /api/gemini/generate-with-system bearer token
//
// MIDDLEWARE ORDER (outermost first):
// RequestID → RealIP → Logger → CORS → Recoverer → Sentry. CORS answers
// preflight requests before auth runs, and Recoverer sits outside Sentry so a
// panic is reported and then turned into a 500.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/cahier-api/internal/auth"
	"github.com/sakif/cahier-api/internal/handler"
	"github.com/sakif/cahier-api/internal/middleware"
	sqliteRepo "github.com/sakif/cahier-api/internal/repository/sqlite"
	"github.com/sakif/cahier-api/internal/service"
)

type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	JWTTTL             time.Duration
	CORSAllowedOrigins []string
	// SentryEnabled mounts the Sentry middleware. sentry.Init must have run.
	SentryEnabled bool
	// PasswordCost overrides the bcrypt cost; zero means auth.DefaultCost.
	PasswordCost int
}

// Backends are the optional external collaborators. A nil field disables the
// feature that needs it: enhancement passes text through unchanged, text
// generation answers 503, picture uploads answer 503.
type Backends struct {
	Generator service.TextGenerator
	Pictures  service.PictureStore
}

// Server owns the router and the database connection.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, runs migrations and wires every route.
func New(cfg Config, logger *slog.Logger, backends Backends) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(backends); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the database.
func (s *Server) Close() error { return s.db.Close() }

func (s *Server) setupRoutes(b Backends) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	if s.config.PasswordCost > 0 {
		passwords = auth.NewPasswordServiceWithCost(s.config.PasswordCost)
	}

	// Services get the store through its repository interfaces.
	authService := service.NewAuthService(s.db, passwords, tokens, s.logger)
	userService := service.NewUserService(s.db, b.Pictures, s.logger)
	enhanceService := service.NewEnhanceService(b.Generator, s.logger)
	cdcService := service.NewCDCService(s.db, enhanceService, s.logger)
	generateService := service.NewGenerateService(b.Generator, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	cdcHandler := handler.NewCDCHandler(cdcService, s.logger)
	geminiHandler := handler.NewGeminiHandler(generateService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.CORSAllowedOrigins))
	s.router.Use(chimiddleware.Recoverer)
	if s.config.SentryEnabled {
		s.router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(middleware.Caller)

			r.Get("/user/profile", userHandler.HandleProfile)
			r.Put("/user/profile", userHandler.HandleUpdateProfile)
			r.Put("/user/profile/picture", userHandler.HandleUpdatePicture)

			r.Route("/cdc", func(r chi.Router) {
				r.Post("/", cdcHandler.HandleCreate)
				r.Post("/enhance", cdcHandler.HandleEnhanceAndCreate)
				r.Get("/", cdcHandler.HandleList)
				r.Get("/search", cdcHandler.HandleSearch)
				r.Get("/{id}", cdcHandler.HandleGet)
				r.Put("/{id}", cdcHandler.HandleUpdate)
				r.Put("/{id}/enhance", cdcHandler.HandleEnhanceAndUpdate)
				r.Delete("/{id}", cdcHandler.HandleDelete)
			})

			r.Post("/gemini/generate", geminiHandler.HandleGenerate)
			r.Post("/gemini/generate-with-system", geminiHandler.HandleGenerateWithSystem)
		})
	})

	return nil
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up to
// 30 seconds and closes the database.
//
// WriteTimeout is generous: an enhance request makes one model call per
// filled-in field, strictly in sequence.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
