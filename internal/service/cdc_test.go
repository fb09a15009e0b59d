package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/model"
	sqliteRepo "github.com/sakif/cahier-api/internal/repository/sqlite"
)

func newTestCDCService(repo *fakeCDCRepo, gen TextGenerator) *CDCService {
	logger := discardLogger()
	return NewCDCService(repo, NewEnhanceService(gen, logger), logger)
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "want *apperror.AppError, got %T: %v", err, err)
	return appErr.Message
}

// =========================================================================
// VALIDATION
// =========================================================================

func TestValidateCDCRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.CDCRequest)
		wantMsg string
	}{
		{"valid", func(*model.CDCRequest) {}, ""},
		{"missing cover page", func(r *model.CDCRequest) { r.PageDeGarde = nil },
			"Les informations de la page de garde sont requises"},
		{"blank project name", func(r *model.CDCRequest) { r.PageDeGarde.ProjectName = str("  ") },
			"Le nom du projet est requis"},
		{"missing client", func(r *model.CDCRequest) { r.PageDeGarde.ClientName = nil },
			"Le nom du client est requis"},
		{"missing date", func(r *model.CDCRequest) { r.PageDeGarde.Date = nil },
			"La date du document est requise"},
		{"malformed date", func(r *model.CDCRequest) { r.PageDeGarde.Date = str("14/03/2025") },
			"La date du document est invalide (format attendu AAAA-MM-JJ)"},
		{"impossible date", func(r *model.CDCRequest) { r.PageDeGarde.Date = str("2025-02-30") },
			"La date du document est invalide (format attendu AAAA-MM-JJ)"},
		{"missing authors", func(r *model.CDCRequest) { r.PageDeGarde.Authors = str("") },
			"Au moins un rédacteur est requis"},
		{"missing introduction", func(r *model.CDCRequest) { r.Introduction = nil },
			"Les informations d'introduction sont requises"},
		{"blank scope", func(r *model.CDCRequest) { r.Introduction.ProjectScope = str("\t") },
			"La portée du projet est requise"},
		{"missing objectives", func(r *model.CDCRequest) { r.ObjectifsProjet = nil },
			"Les objectifs du projet sont requis"},
		{"missing non-functional objectives", func(r *model.CDCRequest) { r.ObjectifsProjet.NonFunctional = nil },
			"Les objectifs non fonctionnels sont requis"},
		{"missing needs", func(r *model.CDCRequest) { r.DescriptionBesoin = nil },
			"La description du besoin est requise"},
		{"missing target users", func(r *model.CDCRequest) { r.DescriptionBesoin.TargetUsers = nil },
			"La description des utilisateurs cibles est requise"},
		{"optional sections may be absent", func(r *model.CDCRequest) { r.Budget = nil }, ""},
		{"optional leaves may be blank", func(r *model.CDCRequest) {
			r.Annexes = &model.Annexes{Glossary: str("")}
		}, ""},
		{"version document is optional", func(r *model.CDCRequest) { r.PageDeGarde.DocumentVersion = nil }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := ValidateCDCRequest(req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.wantMsg, messageOf(t, err))
		})
	}
}

func TestValidateCDCRequest_FirstErrorWins(t *testing.T) {
	req := validRequest()
	req.Introduction = nil
	req.PageDeGarde.ClientName = nil

	err := ValidateCDCRequest(req)
	assert.Equal(t, "Le nom du client est requis", messageOf(t, err))
}

func TestValidateCDCRequest_Nil(t *testing.T) {
	assert.ErrorIs(t, ValidateCDCRequest(nil), apperror.ErrValidation)
}

// =========================================================================
// MAPPING
// =========================================================================

func TestApplyCDCRequest_Create(t *testing.T) {
	req := validRequest()
	req.Title = str("ignored")
	req.Contributors = str("Chloé")

	var cdc model.CDC
	ApplyCDCRequest(&cdc, req)

	assert.Equal(t, "Portail RH", cdc.Title)
	assert.Equal(t, "web", *cdc.Type)
	assert.Equal(t, "v1", *cdc.Version)
	assert.Equal(t, "Chloé", *cdc.Contributors)
	assert.Equal(t, "1.0", *cdc.PageDeGarde.DocumentVersion)
	assert.Equal(t, "10k€", *cdc.Budget.CostEstimate)
	assert.Nil(t, cdc.Annexes)

	// The entity must not alias the request.
	*req.Introduction.ProjectContext = "changed"
	assert.Equal(t, "contexte", *cdc.Introduction.ProjectContext)
}

func TestApplyCDCRequest_Update(t *testing.T) {
	var cdc model.CDC
	first := validRequest()
	first.Contributors = str("Chloé")
	first.Annexes = &model.Annexes{Glossary: str("API: interface")}
	ApplyCDCRequest(&cdc, first)

	second := validRequest()
	second.Version = nil
	second.PageDeGarde.Authors = nil
	second.Budget = &model.Budget{}
	second.PageDeGarde.ProjectName = str("Portail RH v2")
	ApplyCDCRequest(&cdc, second)

	assert.Equal(t, "Portail RH v2", cdc.Title)
	assert.Nil(t, cdc.Version, "version is copied even when nil")
	assert.Equal(t, "Chloé", *cdc.Contributors, "contributors kept when omitted")
	assert.Equal(t, "Ana, Bruno", *cdc.PageDeGarde.Authors, "authors kept when omitted")
	assert.Nil(t, cdc.Budget.CostEstimate, "a leaf omitted in a present section is cleared")
	require.NotNil(t, cdc.Annexes, "an absent section is left untouched")
	assert.Equal(t, "API: interface", *cdc.Annexes.Glossary)
}

// =========================================================================
// OPERATIONS
// =========================================================================

func TestCDCService_CreateAndGet(t *testing.T) {
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.NoError(t, uuid.Validate(created.ID))
	assert.Equal(t, "Portail RH", created.Title)
	assert.False(t, created.LastModified.IsZero())

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
}

func TestCDCService_CreateInvalidWritesNothing(t *testing.T) {
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, nil)

	req := validRequest()
	req.PageDeGarde = nil

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, repo.docs)
}

func TestCDCService_Get_NotFound(t *testing.T) {
	svc := newTestCDCService(newFakeCDCRepo(), nil)

	id := uuid.NewString()
	_, err := svc.Get(context.Background(), id)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "CDC not found with id: "+id, messageOf(t, err))

	_, err = svc.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "CDC not found with id: not-a-uuid", messageOf(t, err))
}

func TestCDCService_Update(t *testing.T) {
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.PageDeGarde.ProjectName = str("Renommé")
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renommé", updated.Title)
	assert.True(t, updated.LastModified.After(created.LastModified))
}

func TestCDCService_Update_MissingBeatsInvalid(t *testing.T) {
	svc := newTestCDCService(newFakeCDCRepo(), nil)

	_, err := svc.Update(context.Background(), uuid.NewString(), &model.CDCRequest{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCDCService_Update_Invalid(t *testing.T) {
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Introduction = nil
	_, err = svc.Update(ctx, created.ID, req)
	require.ErrorIs(t, err, apperror.ErrValidation)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.LastModified, stored.LastModified, "nothing written")
}

func TestCDCService_Delete(t *testing.T) {
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "CDC not found with id: "+created.ID, messageOf(t, err))
	assert.Len(t, repo.deleted, 1, "a missing document is never passed to DeleteCDC")
}

func TestCDCService_ListAndSearch(t *testing.T) {
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, nil)
	ctx := context.Background()

	for _, name := range []string{"Portail RH", "Application mobile", "portail client"} {
		req := validRequest()
		req.PageDeGarde.ProjectName = str(name)
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "portail client", all[0].Title, "most recent first")

	found, err := svc.Search(ctx, "PORTAIL")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	for _, blank := range []string{"", "   "} {
		found, err := svc.Search(ctx, blank)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	}
}

func TestCDCService_StoreErrorsAreInternal(t *testing.T) {
	repo := newFakeCDCRepo()
	repo.err = errors.New("disk full")
	svc := newTestCDCService(repo, nil)

	_, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	var appErr *apperror.AppError
	assert.False(t, errors.As(err, &appErr))

	_, err = svc.List(context.Background())
	assert.Error(t, err)
}

// =========================================================================
// ENHANCE + PERSIST
// =========================================================================

func TestCDCService_EnhanceAndCreate(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (string, error) { return "  amélioré  ", nil }}
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, gen)

	req := validRequest()
	created, err := svc.EnhanceAndCreate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "amélioré", *created.Introduction.ProjectContext)
	assert.Equal(t, "amélioré", *created.Budget.CostEstimate)
	assert.Equal(t, "Portail RH", created.Title, "cover page is never rewritten")
	assert.Equal(t, "contexte", *req.Introduction.ProjectContext, "caller's request untouched")
}

func TestCDCService_EnhanceAndCreate_InvalidCostsNoCalls(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (string, error) { return "x", nil }}
	svc := newTestCDCService(newFakeCDCRepo(), gen)

	req := validRequest()
	req.DescriptionBesoin = nil
	_, err := svc.EnhanceAndCreate(context.Background(), req)

	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, gen.calls())
}

func TestCDCService_EnhanceAndUpdate_NotFoundCostsNoCalls(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (string, error) { return "x", nil }}
	svc := newTestCDCService(newFakeCDCRepo(), gen)

	_, err := svc.EnhanceAndUpdate(context.Background(), uuid.NewString(), validRequest())

	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, gen.calls())
}

func TestCDCService_EnhanceAndUpdate(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (string, error) { return "réécrit", nil }}
	repo := newFakeCDCRepo()
	svc := newTestCDCService(repo, gen)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	updated, err := svc.EnhanceAndUpdate(ctx, created.ID, validRequest())
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "réécrit", *updated.DescriptionBesoin.ExpressedNeeds)
}

func TestCDCService_UpdateIsIdempotent(t *testing.T) {
	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := discardLogger()
	svc := NewCDCService(db, NewEnhanceService(nil, logger), logger)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	upd := validRequest()
	upd.PageDeGarde.ProjectName = str("Portail RH v2")
	upd.Contributors = str("Chloé")
	upd.Budget = &model.Budget{}
	upd.Annexes = &model.Annexes{Glossary: str("API: interface")}

	returned, err := svc.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	first, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	// A section emptied by the update reads the same from the write and the store.
	assert.Nil(t, returned.Budget)
	assert.Equal(t, returned.Sections, first.Sections)

	_, err = svc.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	second, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Type, second.Type)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.Contributors, second.Contributors)
	assert.Equal(t, first.Sections, second.Sections)
}
