package model

import "time"

// CDC is a "Cahier des Charges": a project specification document made of
// ten fixed sections.
//
// SECTIONS ARE OWNED BY VALUE:
// Each section is a pointer so "absent" (nil) is distinct from "present with
// empty leaves". Sections have no identity of their own and are never shared
// between documents. Leaves are *string for the same reason: a present
// section with a nil leaf means "store NULL for that column".
//
// Title is not settable by clients; it always mirrors PageDeGarde.ProjectName.
// LastModified is maintained by the store on every write.
type CDC struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         *string   `json:"type"`
	Version      *string   `json:"version"`
	Contributors *string   `json:"contributors"`
	LastModified time.Time `json:"lastModified"`
	Sections
}

// CDCRequest is the inbound body for create, update and enhance.
//
// Title is accepted for compatibility with older clients and ignored.
type CDCRequest struct {
	Title        *string `json:"title,omitempty"`
	Type         *string `json:"type"`
	Version      *string `json:"version"`
	Contributors *string `json:"contributors"`
	Sections
}

// Sections groups the ten document sections. It is embedded in both CDC and
// CDCRequest so the JSON keys sit at the top level of each object.
type Sections struct {
	PageDeGarde           *PageDeGarde           `json:"pageDeGarde"`
	Introduction          *Introduction          `json:"introduction"`
	ObjectifsProjet       *ObjectifsProjet       `json:"objectifsProjet"`
	DescriptionBesoin     *DescriptionBesoin     `json:"descriptionBesoin"`
	PerimetreFonctionnel  *PerimetreFonctionnel  `json:"perimetreFonctionnel"`
	ContraintesTechniques *ContraintesTechniques `json:"contraintesTechniques"`
	PlanningPrevisionnel  *PlanningPrevisionnel  `json:"planningPrevisionnel"`
	Budget                *Budget                `json:"budget"`
	CriteresValidation    *CriteresValidation    `json:"criteresValidation"`
	Annexes               *Annexes               `json:"annexes"`
}

// PageDeGarde is the cover page. Its fields are factual and never rewritten.
type PageDeGarde struct {
	ProjectName     *string `json:"nomProjet"`
	ClientName      *string `json:"nomClient"`
	Date            *string `json:"date"` // YYYY-MM-DD
	DocumentVersion *string `json:"versionDocument"`
	Authors         *string `json:"redacteurs"`
}

type Introduction struct {
	ProjectContext      *string `json:"contexteProjet"`
	GlobalObjective     *string `json:"objectifGlobal"`
	SponsorPresentation *string `json:"presentationCommanditaire"`
	ProjectScope        *string `json:"porteeProjet"`
}

type ObjectifsProjet struct {
	Functional    *string `json:"objectifsFonctionnels"`
	NonFunctional *string `json:"objectifsNonFonctionnels"`
}

type DescriptionBesoin struct {
	CurrentProblems *string `json:"problemesActuels"`
	TargetUsers     *string `json:"utilisateursCibles"`
	ExpressedNeeds  *string `json:"besoinsExprimes"`
}

type PerimetreFonctionnel struct {
	Authentication *string `json:"authentification"`
	Dashboard      *string `json:"tableauBord"`
	UserManagement *string `json:"gestionUtilisateurs"`
	DataManagement *string `json:"gestionDonnees"`
	Notifications  *string `json:"notifications"`
	Other          *string `json:"autresFonctionnalites"`
}

type ContraintesTechniques struct {
	LanguagesFrameworks *string `json:"langagesFrameworks"`
	Database            *string `json:"baseDonnees"`
	Hosting             *string `json:"hebergement"`
	Security            *string `json:"securite"`
	Compatibility       *string `json:"compatibilite"`
}

type PlanningPrevisionnel struct {
	Phases            *string `json:"phasesProjet"`
	KeyDates          *string `json:"datesCles"`
	EstimatedDuration *string `json:"dureeEstimee"`
}

type Budget struct {
	CostEstimate *string `json:"estimationCouts"`
}

type CriteresValidation struct {
	ItemsToVerify *string `json:"elementsVerifier"`
	TestScenarios *string `json:"scenariosTest"`
}

type Annexes struct {
	Glossary          *string `json:"glossaire"`
	ComplementaryDocs *string `json:"documentsComplementaires"`
	UsefulReferences  *string `json:"referencesUtiles"`
}

// ProjectName returns the cover page project name, or "" when absent.
func (s *Sections) ProjectName() string {
	if s.PageDeGarde == nil || s.PageDeGarde.ProjectName == nil {
		return ""
	}
	return *s.PageDeGarde.ProjectName
}

// Clone returns a deep copy of r. Every pointer in the result is fresh, so
// mutating the clone never touches r.
func (r *CDCRequest) Clone() *CDCRequest {
	if r == nil {
		return nil
	}
	return &CDCRequest{
		Title:        cloneString(r.Title),
		Type:         cloneString(r.Type),
		Version:      cloneString(r.Version),
		Contributors: cloneString(r.Contributors),
		Sections:     r.Sections.Clone(),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// String returns a pointer to s. Handy in tests and literals.
func String(s string) *string {
	return &s
}
