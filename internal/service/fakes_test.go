package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/model"
)

// =========================================================================
// FAKES
// =========================================================================
//
// In-memory stand-ins for the repositories and the text generator. Each one
// stores copies, so a test can't pass by accident through a shared pointer.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users   map[string]*model.User // keyed by email
	nextID  int
	err     error // returned by every method when set
	updates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.Email]; ok {
		return apperror.Conflict("email", "Email is already in use!")
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, apperror.NotFoundMessage("User not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.Email]; !ok {
		return apperror.NotFound("User", user.ID)
	}
	f.updates++
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

type fakeCDCRepo struct {
	docs    map[string]model.CDC
	clock   time.Time
	err     error
	deleted []string
}

func newFakeCDCRepo() *fakeCDCRepo {
	return &fakeCDCRepo{
		docs:  map[string]model.CDC{},
		clock: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeCDCRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeCDCRepo) CreateCDC(_ context.Context, cdc *model.CDC) error {
	if f.err != nil {
		return f.err
	}
	cdc.ID = uuid.NewString()
	cdc.LastModified = f.tick()
	f.docs[cdc.ID] = cloneCDC(cdc)
	return nil
}

func (f *fakeCDCRepo) GetCDC(_ context.Context, id string) (*model.CDC, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.docs[id]
	if !ok {
		return nil, apperror.NotFound("CDC", id)
	}
	out := cloneCDC(&c)
	return &out, nil
}

func (f *fakeCDCRepo) ListCDCs(_ context.Context) ([]model.CDC, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(model.CDC) bool { return true }), nil
}

func (f *fakeCDCRepo) SearchCDCsByTitle(_ context.Context, fragment string) ([]model.CDC, error) {
	if f.err != nil {
		return nil, f.err
	}
	needle := strings.ToLower(fragment)
	return f.sorted(func(c model.CDC) bool {
		return strings.Contains(strings.ToLower(c.Title), needle)
	}), nil
}

func (f *fakeCDCRepo) UpdateCDC(_ context.Context, cdc *model.CDC) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.docs[cdc.ID]; !ok {
		return apperror.NotFound("CDC", cdc.ID)
	}
	cdc.LastModified = f.tick()
	f.docs[cdc.ID] = cloneCDC(cdc)
	return nil
}

func (f *fakeCDCRepo) DeleteCDC(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCDCRepo) CDCExists(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.docs[id]
	return ok, nil
}

func (f *fakeCDCRepo) sorted(keep func(model.CDC) bool) []model.CDC {
	out := []model.CDC{}
	for _, c := range f.docs {
		if keep(c) {
			out = append(out, cloneCDC(&c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out
}

func cloneCDC(c *model.CDC) model.CDC {
	out := *c
	out.Type = copyString(c.Type)
	out.Version = copyString(c.Version)
	out.Contributors = copyString(c.Contributors)
	out.Sections = c.Sections.Clone()
	return out
}

// fakeGenerator answers every prompt through fn and records what it was sent.
type fakeGenerator struct {
	mu      sync.Mutex
	fn      func(prompt string) (string, error)
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.fn(prompt)
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// fakePictureStore records the last Put.
type fakePictureStore struct {
	object      string
	data        []byte
	contentType string
	err         error
}

func (s *fakePictureStore) Put(_ context.Context, objectName string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.object, s.data, s.contentType = objectName, data, contentType
	return "http://store.test/cahier-api/" + objectName, nil
}

// =========================================================================
// FIXTURES
// =========================================================================

func str(s string) *string { return &s }

// validRequest returns a request that passes validation, with one optional
// section filled in.
func validRequest() *model.CDCRequest {
	return &model.CDCRequest{
		Type:    str("web"),
		Version: str("v1"),
		Sections: model.Sections{
			PageDeGarde: &model.PageDeGarde{
				ProjectName: str("Portail RH"),
				ClientName:  str("ACME"),
				Date:        str("2025-03-14"),
				Authors:     str("Ana, Bruno"),
			},
			Introduction: &model.Introduction{
				ProjectContext:      str("contexte"),
				GlobalObjective:     str("objectif"),
				SponsorPresentation: str("commanditaire"),
				ProjectScope:        str("portée"),
			},
			ObjectifsProjet: &model.ObjectifsProjet{
				Functional:    str("fonctionnels"),
				NonFunctional: str("non fonctionnels"),
			},
			DescriptionBesoin: &model.DescriptionBesoin{
				CurrentProblems: str("problèmes"),
				TargetUsers:     str("utilisateurs"),
				ExpressedNeeds:  str("besoins"),
			},
			Budget: &model.Budget{CostEstimate: str("10k€")},
		},
	}
}
