package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// Generator is the part of service.GenerateService the handler needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithSystem(ctx context.Context, system, prompt string) (string, error)
}

type generateRequest struct {
	Prompt            string `json:"prompt"`
	SystemInstruction string `json:"systemInstruction"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// GeminiHandler serves the free-form /api/gemini endpoints. Failures keep the
// {"response": ...} shape but carry a real status code.
type GeminiHandler struct {
	gen    Generator
	logger *slog.Logger
}

func NewGeminiHandler(gen Generator, logger *slog.Logger) *GeminiHandler {
	return &GeminiHandler{gen: gen, logger: logger}
}

// HandleGenerate: POST /api/gemini/generate {"prompt": "..."}
func (h *GeminiHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	out, err := h.gen.Generate(r.Context(), req.Prompt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Response: out})
}

// HandleGenerateWithSystem: POST /api/gemini/generate-with-system
// {"systemInstruction": "...", "prompt": "..."}
func (h *GeminiHandler) HandleGenerateWithSystem(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	out, err := h.gen.GenerateWithSystem(r.Context(), req.SystemInstruction, req.Prompt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Response: out})
}

func (h *GeminiHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		reportInternal(r, h.logger, err)
	}
	writeJSON(w, status, generateResponse{Response: messageFor(err)})
}
