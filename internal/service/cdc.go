package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/model"
	"github.com/sakif/cahier-api/internal/repository"
	"github.com/sakif/cahier-api/internal/validation"
)

// Enhancer rewrites the free-text leaves of a request. It never fails: on any
// problem it hands back text it could not improve unchanged.
type Enhancer interface {
	Enhance(ctx context.Context, req *model.CDCRequest) *model.CDCRequest
}

// CDCService validates, maps and persists CDC documents.
//
// MAPPING (request → entity), identical on create and update:
//   - Title always mirrors pageDeGarde.nomProjet.
//   - Type and Version are copied as is, nil included.
//   - Contributors is copied only when present.
//   - A section absent from the request leaves the stored section untouched.
//   - A section present in the request overwrites EVERY leaf, so a leaf
//     omitted inside a present section is cleared. Exceptions come from the
//     schema table: sticky leaves (redacteurs) keep their value when omitted
//     and defaulted leaves (versionDocument) fall back to their default.
//     An omitted versionDocument is therefore stored as "1.0", never null.
//   - A section whose leaves all end up nil is dropped, so the document
//     returned by a write reads the same as a later Get.
type CDCService struct {
	repo     repository.CDCRepository
	enhancer Enhancer
	logger   *slog.Logger
}

func NewCDCService(repo repository.CDCRepository, enhancer Enhancer, logger *slog.Logger) *CDCService {
	return &CDCService{repo: repo, enhancer: enhancer, logger: logger}
}

// Create validates req, maps it onto a new document and stores it.
func (s *CDCService) Create(ctx context.Context, req *model.CDCRequest) (*model.CDC, error) {
	if err := ValidateCDCRequest(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

// EnhanceAndCreate validates req, rewrites its free text and stores the result.
// Validation runs first so an invalid request costs no rewrite calls.
func (s *CDCService) EnhanceAndCreate(ctx context.Context, req *model.CDCRequest) (*model.CDC, error) {
	if err := ValidateCDCRequest(req); err != nil {
		return nil, err
	}
	return s.create(ctx, s.enhancer.Enhance(ctx, req))
}

// Update loads the document, validates req and applies it in place.
func (s *CDCService) Update(ctx context.Context, id string, req *model.CDCRequest) (*model.CDC, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateCDCRequest(req); err != nil {
		return nil, err
	}
	return s.update(ctx, existing, req)
}

// EnhanceAndUpdate is Update with the free text rewritten first. The document
// must exist and req must be valid before any rewrite is attempted.
func (s *CDCService) EnhanceAndUpdate(ctx context.Context, id string, req *model.CDCRequest) (*model.CDC, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateCDCRequest(req); err != nil {
		return nil, err
	}
	return s.update(ctx, existing, s.enhancer.Enhance(ctx, req))
}

func (s *CDCService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("CDC", id)
	}

	exists, err := s.repo.CDCExists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking cdc: %w", err)
	}
	if !exists {
		return apperror.NotFound("CDC", id)
	}

	if err := s.repo.DeleteCDC(ctx, id); err != nil {
		return err
	}
	s.logger.Info("cdc deleted", slog.String("id", id))
	return nil
}

func (s *CDCService) Get(ctx context.Context, id string) (*model.CDC, error) {
	return s.load(ctx, id)
}

func (s *CDCService) List(ctx context.Context) ([]model.CDC, error) {
	list, err := s.repo.ListCDCs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cdc: %w", err)
	}
	return list, nil
}

// Search returns documents whose title contains projectName, ignoring case.
// A blank name returns an empty list, never every document.
func (s *CDCService) Search(ctx context.Context, projectName string) ([]model.CDC, error) {
	if validation.IsBlankString(projectName) {
		return []model.CDC{}, nil
	}
	list, err := s.repo.SearchCDCsByTitle(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("searching cdc: %w", err)
	}
	return list, nil
}

func (s *CDCService) create(ctx context.Context, req *model.CDCRequest) (*model.CDC, error) {
	cdc := &model.CDC{}
	ApplyCDCRequest(cdc, req)
	cdc.Sections.DropEmptySections()

	if err := s.repo.CreateCDC(ctx, cdc); err != nil {
		s.logger.Error("failed to create cdc", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating cdc: %w", err)
	}
	s.logger.Info("cdc created", slog.String("id", cdc.ID), slog.String("title", cdc.Title))
	return cdc, nil
}

func (s *CDCService) update(ctx context.Context, existing *model.CDC, req *model.CDCRequest) (*model.CDC, error) {
	ApplyCDCRequest(existing, req)
	existing.Sections.DropEmptySections()

	if err := s.repo.UpdateCDC(ctx, existing); err != nil {
		s.logger.Error("failed to update cdc",
			slog.String("id", existing.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating cdc: %w", err)
	}
	s.logger.Info("cdc updated", slog.String("id", existing.ID))
	return existing, nil
}

// load fetches a document. An id that isn't a UUID can't exist, so it is
// reported as not found rather than as a bad request.
func (s *CDCService) load(ctx context.Context, id string) (*model.CDC, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("CDC", id)
	}
	return s.repo.GetCDC(ctx, id)
}

// ValidateCDCRequest walks the schema table in order and returns the first
// missing or malformed field.
func ValidateCDCRequest(req *model.CDCRequest) error {
	if req == nil {
		return apperror.ValidationFailed("body", "Le corps de la requête est requis")
	}

	for _, sec := range model.Schema {
		if !sec.Present(&req.Sections) {
			if sec.Required != "" {
				return apperror.ValidationFailed(sec.Key, sec.Required)
			}
			continue
		}
		for _, f := range sec.Fields {
			v := f.Get(&req.Sections)
			if validation.IsBlank(v) {
				if f.Required != "" {
					return apperror.ValidationFailed(sec.Key+"."+f.Key, f.Required)
				}
				continue
			}
			if f.Check != nil && !f.Check(*v) {
				return apperror.ValidationFailed(sec.Key+"."+f.Key, f.Invalid)
			}
		}
	}
	return nil
}

// ApplyCDCRequest maps req onto cdc in place. See CDCService for the rules.
// Every pointer stored in cdc is a fresh copy, so req can be reused.
func ApplyCDCRequest(cdc *model.CDC, req *model.CDCRequest) {
	cdc.Title = req.ProjectName()
	cdc.Type = copyString(req.Type)
	cdc.Version = copyString(req.Version)
	if req.Contributors != nil {
		cdc.Contributors = copyString(req.Contributors)
	}

	for _, sec := range model.Schema {
		if !sec.Present(&req.Sections) {
			continue
		}
		sec.Ensure(&cdc.Sections)
		for _, f := range sec.Fields {
			v := f.Get(&req.Sections)
			if v == nil {
				if f.Sticky {
					continue
				}
				if f.Default != "" {
					d := f.Default
					v = &d
				}
			}
			f.Set(&cdc.Sections, copyString(v))
		}
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
