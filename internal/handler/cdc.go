package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/cahier-api/internal/model"
)

// Documents is the part of service.CDCService the handler needs.
type Documents interface {
	Create(ctx context.Context, req *model.CDCRequest) (*model.CDC, error)
	EnhanceAndCreate(ctx context.Context, req *model.CDCRequest) (*model.CDC, error)
	Get(ctx context.Context, id string) (*model.CDC, error)
	List(ctx context.Context) ([]model.CDC, error)
	Search(ctx context.Context, projectName string) ([]model.CDC, error)
	Update(ctx context.Context, id string, req *model.CDCRequest) (*model.CDC, error)
	EnhanceAndUpdate(ctx context.Context, id string, req *model.CDCRequest) (*model.CDC, error)
	Delete(ctx context.Context, id string) error
}

// Failure prefixes. Clients display these as is, so they stay in French.
const (
	prefixCreate         = "Erreur lors de la création du CDC: "
	prefixEnhanceCreate  = "Erreur lors de l'amélioration et la création du CDC: "
	prefixGet            = "CDC non trouvé: "
	prefixUpdate         = "Erreur lors de la mise à jour du CDC: "
	prefixEnhanceUpdate  = "Erreur lors de l'amélioration du CDC: "
	prefixDelete         = "Erreur lors de la suppression du CDC: "
	msgDeleted           = "CDC supprimé avec succès"
	searchProjectNameKey = "nomProjet"
)

// CDCHandler serves /api/cdc. Successes are JSON; failures are plain text.
type CDCHandler struct {
	docs   Documents
	logger *slog.Logger
}

func NewCDCHandler(docs Documents, logger *slog.Logger) *CDCHandler {
	return &CDCHandler{docs: docs, logger: logger}
}

// HandleCreate: POST /api/cdc → 201.
func (h *CDCHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CDCRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, prefixCreate, err)
		return
	}

	cdc, err := h.docs.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, prefixCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, cdc)
}

// HandleEnhanceAndCreate: POST /api/cdc/enhance → 201 with the rewritten document.
func (h *CDCHandler) HandleEnhanceAndCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CDCRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, prefixEnhanceCreate, err)
		return
	}

	cdc, err := h.docs.EnhanceAndCreate(r.Context(), &req)
	if err != nil {
		h.fail(w, r, prefixEnhanceCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, cdc)
}

// HandleList: GET /api/cdc, most recently modified first.
func (h *CDCHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.docs.List(r.Context())
	if err != nil {
		reportInternal(r, h.logger, err)
		writeText(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleSearch: GET /api/cdc/search?nomProjet=...
func (h *CDCHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	list, err := h.docs.Search(r.Context(), r.URL.Query().Get(searchProjectNameKey))
	if err != nil {
		reportInternal(r, h.logger, err)
		writeText(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet: GET /api/cdc/{id}
func (h *CDCHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cdc, err := h.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, prefixGet, err)
		return
	}
	writeJSON(w, http.StatusOK, cdc)
}

// HandleUpdate: PUT /api/cdc/{id}
func (h *CDCHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.CDCRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, prefixUpdate, err)
		return
	}

	cdc, err := h.docs.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		h.fail(w, r, prefixUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, cdc)
}

// HandleEnhanceAndUpdate: PUT /api/cdc/{id}/enhance
func (h *CDCHandler) HandleEnhanceAndUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.CDCRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, prefixEnhanceUpdate, err)
		return
	}

	cdc, err := h.docs.EnhanceAndUpdate(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		h.fail(w, r, prefixEnhanceUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, cdc)
}

// HandleDelete: DELETE /api/cdc/{id} → 200 with a text confirmation.
func (h *CDCHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.docs.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, prefixDelete, err)
		return
	}
	writeText(w, http.StatusOK, msgDeleted)
}

func (h *CDCHandler) fail(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		reportInternal(r, h.logger, err)
	}
	writeText(w, status, prefix+messageFor(err))
}
