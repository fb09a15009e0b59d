package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/validation"
)

// GenerateService is the free-form prompt endpoint: text in, model text out.
type GenerateService struct {
	gen    TextGenerator // nil when no AI backend is configured
	logger *slog.Logger
}

func NewGenerateService(gen TextGenerator, logger *slog.Logger) *GenerateService {
	return &GenerateService{gen: gen, logger: logger}
}

// Generate sends prompt as is. A backend failure comes back as an
// apperror.ErrUpstream whose message carries the reason.
func (s *GenerateService) Generate(ctx context.Context, prompt string) (string, error) {
	if validation.IsBlankString(prompt) {
		return "", apperror.ValidationFailed("prompt", "prompt is required")
	}
	if s.gen == nil {
		return "", apperror.Unavailable("Text generation is not configured")
	}

	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("text generation failed", slog.String("error", err.Error()))
		return "", apperror.Upstream("Error generating response", err)
	}
	return out, nil
}

// GenerateWithSystem prefixes prompt with a system instruction, separated by
// a blank line. A blank instruction is dropped.
func (s *GenerateService) GenerateWithSystem(ctx context.Context, system, prompt string) (string, error) {
	if validation.IsBlankString(prompt) {
		return "", apperror.ValidationFailed("prompt", "prompt is required")
	}
	if strings.TrimSpace(system) == "" {
		return s.Generate(ctx, prompt)
	}
	return s.Generate(ctx, system+"\n\n"+prompt)
}
