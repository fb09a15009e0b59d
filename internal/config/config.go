// Package config loads runtime settings from the environment.
//
// LOADING ORDER:
// 1. An optional .env file in the working directory (godotenv). Values already
//    present in the real environment win; godotenv never overwrites them.
// 2. The process environment.
// 3. The defaults below.
//
// Load never fails on a missing .env file. It fails only when a value is set
// but can't be parsed, or when Validate rejects the result.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinJWTSecretLength is the shortest accepted signing secret.
const MinJWTSecretLength = 16

// Config is the full application configuration.
type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	Gemini GeminiConfig
	Minio  MinioConfig
	Sentry SentryConfig
}

// GeminiConfig selects how the text-generation client authenticates.
// With APIKey set, requests go to the public Generative Language API.
// Otherwise Project must be set and Application Default Credentials are used
// against Vertex AI.
type GeminiConfig struct {
	APIKey          string
	Project         string
	Location        string
	Model           string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
}

// Enabled reports whether either authentication mode is configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != "" || g.Project != ""
}

// MinioConfig is the object store for profile pictures. Empty Endpoint disables uploads.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (m MinioConfig) Enabled() bool { return m.Endpoint != "" }

type SentryConfig struct {
	DSN         string
	Environment string
}

// Load reads the configuration. envFiles defaults to ".env".
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var errs []error
	cfg := Config{
		Port:               getInt("PORT", 8080, &errs),
		DBPath:             getEnv("DB_PATH", "data/cdc.db"),
		LogLevel:           getLevel("LOG_LEVEL", slog.LevelInfo, &errs),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTTTL:             getDuration("JWT_TTL", 24*time.Hour, &errs),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Gemini: GeminiConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			Project:         os.Getenv("GEMINI_PROJECT"),
			Location:        getEnv("GEMINI_LOCATION", "us-central1"),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL:         os.Getenv("GEMINI_BASE_URL"),
			Temperature:     getFloat("GEMINI_TEMPERATURE", 0.7, &errs),
			MaxOutputTokens: getInt("GEMINI_MAX_OUTPUT_TOKENS", 2048, &errs),
		},
		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "cahier-api"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		},
		Sentry: SentryConfig{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: getEnv("SENTRY_ENVIRONMENT", "development"),
		},
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants that parsing alone can't.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		errs = append(errs, errors.New("GEMINI_MAX_OUTPUT_TOKENS must be positive"))
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errs = append(errs, fmt.Errorf("GEMINI_TEMPERATURE out of range: %v", c.Gemini.Temperature))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s value %q: %w", key, v, err))
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s value %q: %w", key, v, err))
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s value %q: %w", key, v, err))
		return fallback
	}
	return d
}

func getLevel(key string, fallback slog.Level, errs *[]error) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s value %q: %w", key, v, err))
		return fallback
	}
	return lvl
}

// getList splits a comma-separated value, dropping empty items.
func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
