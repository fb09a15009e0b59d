// Command server runs the Cahier des Charges API.
//
// Configuration comes from the environment, optionally seeded from a .env
// file in the working directory. See internal/config for every variable.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sakif/cahier-api/internal/config"
	"github.com/sakif/cahier-api/internal/gemini"
	"github.com/sakif/cahier-api/internal/server"
	"github.com/sakif/cahier-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return err
		}
	}

	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warn("sentry disabled", slog.String("error", err.Error()))
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Optional backends. Each one is left nil (not a typed nil) when disabled.
	var backends server.Backends

	if cfg.Gemini.Enabled() {
		client, err := gemini.New(context.Background(), gemini.Config{
			APIKey:          cfg.Gemini.APIKey,
			Project:         cfg.Gemini.Project,
			Location:        cfg.Gemini.Location,
			Model:           cfg.Gemini.Model,
			BaseURL:         cfg.Gemini.BaseURL,
			Temperature:     cfg.Gemini.Temperature,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		})
		if err != nil {
			logger.Warn("text generation unavailable", slog.String("error", err.Error()))
		} else {
			backends.Generator = client
			logger.Info("text generation enabled", slog.String("model", cfg.Gemini.Model))
		}
	} else {
		logger.Warn("GEMINI_API_KEY and GEMINI_PROJECT not set: enhancement passes text through unchanged")
	}

	if cfg.Minio.Enabled() {
		store, err := storage.NewMinio(storage.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err = store.EnsureBucket(ctx)
			cancel()
		}
		if err != nil {
			logger.Warn("profile picture storage unavailable", slog.String("error", err.Error()))
		} else {
			backends.Pictures = store
		}
	}

	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		DBPath:             cfg.DBPath,
		JWTSecret:          cfg.JWTSecret,
		JWTTTL:             cfg.JWTTTL,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SentryEnabled:      sentryEnabled,
	}, logger, backends)
	if err != nil {
		return err
	}

	// Start blocks until SIGINT or SIGTERM.
	return srv.Start()
}
