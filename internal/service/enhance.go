package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/cahier-api/internal/model"
	"github.com/sakif/cahier-api/internal/validation"
)

// TextGenerator is one prompt in, one completion out. *gemini.Client satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyRewrite is returned when the generator answers with blank text.
var ErrEmptyRewrite = errors.New("empty rewrite")

const enhanceSystemInstruction = "Tu es un expert en rédaction de documents de spécification et cahiers des charges. " +
	"Ton rôle est d'améliorer et d'enrichir le texte fourni pour le rendre plus professionnel, précis et complet, " +
	"tout en maintenant le sens original. Assure-toi que ta réponse est bien formatée, avec des paragraphes bien " +
	"structurés ou des listes à puces lorsque cela est approprié. Ne change jamais radicalement le contenu ou " +
	"l'intention du texte original."

// EnhanceService rewrites the free-text leaves of a CDC request, one field at
// a time, in schema order.
//
// FAILURE POLICY:
//   - a failed rewrite keeps that field's original text and moves on
//   - a cancelled context or a panic abandons the whole pass and returns the
//     untouched original request
//
// Cover page fields (names, dates) have no enhancement label and are never sent.
type EnhanceService struct {
	gen    TextGenerator // nil when no AI backend is configured
	logger *slog.Logger
}

func NewEnhanceService(gen TextGenerator, logger *slog.Logger) *EnhanceService {
	return &EnhanceService{gen: gen, logger: logger}
}

// Enhance returns a rewritten deep copy of req. req itself is never modified.
func (s *EnhanceService) Enhance(ctx context.Context, req *model.CDCRequest) (out *model.CDCRequest) {
	if req == nil {
		return nil
	}
	if s.gen == nil {
		s.logger.Warn("enhancement skipped: no text generator configured")
		return req
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("enhancement aborted", slog.Any("panic", r))
			out = req
		}
	}()

	enhanced := req.Clone()
	rewritten, failed := 0, 0

	for _, sec := range model.Schema {
		if !sec.Present(&enhanced.Sections) {
			continue
		}
		for _, f := range sec.Fields {
			if !f.Rewritable() {
				continue
			}
			text := f.Get(&enhanced.Sections)
			if validation.IsBlank(text) {
				continue
			}

			if err := ctx.Err(); err != nil {
				s.logger.Warn("enhancement cancelled", slog.String("error", err.Error()))
				return req
			}

			better, err := s.rewrite(ctx, f.Prompt, *text)
			if err != nil {
				if ctx.Err() != nil {
					s.logger.Warn("enhancement cancelled", slog.String("error", ctx.Err().Error()))
					return req
				}
				failed++
				s.logger.Warn("field rewrite failed, keeping original",
					slog.String("field", sec.Key+"."+f.Key),
					slog.String("error", err.Error()),
				)
				continue
			}
			f.Set(&enhanced.Sections, &better)
			rewritten++
		}
	}

	s.logger.Info("cdc enhanced", slog.Int("rewritten", rewritten), slog.Int("failed", failed))
	return enhanced
}

func (s *EnhanceService) rewrite(ctx context.Context, label, text string) (string, error) {
	out, err := s.gen.Generate(ctx, enhancePrompt(label, text))
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyRewrite
	}
	return out, nil
}

func enhancePrompt(label, text string) string {
	user := fmt.Sprintf("Voici un texte à améliorer pour un cahier des charges professionnel :\n\n%s:\n%s\n\n"+
		"Améliore ce texte pour le rendre plus professionnel tout en conservant son essence. "+
		"Réponds uniquement avec le texte amélioré, sans introduction ni conclusion.", label, text)
	return enhanceSystemInstruction + "\n\n" + user
}
