package model

import "github.com/sakif/cahier-api/internal/validation"

// SCHEMA TABLE:
// Schema lists every CDC section and leaf exactly once, in declaration order.
// Validation, request→entity mapping, deep cloning, AI enhancement and the
// sqlite column list all iterate this table, so adding a field here is the
// only change needed to carry it end to end.

// SectionSpec describes one section of a CDC.
type SectionSpec struct {
	Key      string // JSON key, e.g. "pageDeGarde"
	Required string // validation message when the section is absent; "" = optional
	Fields   []FieldSpec

	present func(*Sections) bool
	ensure  func(*Sections)
	clear   func(*Sections)
}

// FieldSpec describes one leaf of a section.
type FieldSpec struct {
	Section  string // owning section key
	Key      string // JSON key inside the section
	Column   string // sqlite column
	Required string // validation message when blank; "" = optional
	Invalid  string // validation message when Check fails
	Check    func(string) bool
	Prompt   string // enhancement label; "" = factual, never rewritten
	Default  string // stored when the request leaf is nil
	Sticky   bool   // a nil request leaf keeps the stored value

	slot func(s *Sections, create bool) **string
}

// Present reports whether s carries this section.
func (sec SectionSpec) Present(s *Sections) bool { return sec.present(s) }

// Ensure allocates the section in s if it is missing.
func (sec SectionSpec) Ensure(s *Sections) { sec.ensure(s) }

// Get returns the leaf value, or nil when the leaf or its section is absent.
func (f FieldSpec) Get(s *Sections) *string {
	p := f.slot(s, false)
	if p == nil {
		return nil
	}
	return *p
}

// Set stores v in the leaf, allocating the section if needed.
func (f FieldSpec) Set(s *Sections, v *string) {
	*f.slot(s, true) = v
}

// Addr returns the address of the leaf, allocating the section if needed.
// The sqlite store scans columns straight into these addresses.
func (f FieldSpec) Addr(s *Sections) **string {
	return f.slot(s, true)
}

// Rewritable reports whether enhancement may rewrite this leaf.
func (f FieldSpec) Rewritable() bool { return f.Prompt != "" }

type fieldDef[T any] struct {
	spec FieldSpec
	leaf func(*T) **string
}

type fieldOption func(*FieldSpec)

func required(msg string) fieldOption { return func(f *FieldSpec) { f.Required = msg } }

func prompt(label string) fieldOption { return func(f *FieldSpec) { f.Prompt = label } }

func defaultValue(v string) fieldOption { return func(f *FieldSpec) { f.Default = v } }

func sticky() fieldOption { return func(f *FieldSpec) { f.Sticky = true } }

func check(fn func(string) bool, msg string) fieldOption {
	return func(f *FieldSpec) {
		f.Check = fn
		f.Invalid = msg
	}
}

func leaf[T any](key, column string, get func(*T) **string, opts ...fieldOption) fieldDef[T] {
	f := FieldSpec{Key: key, Column: column}
	for _, opt := range opts {
		opt(&f)
	}
	return fieldDef[T]{spec: f, leaf: get}
}

func section[T any](key, requiredMsg string, ptr func(*Sections) **T, fields ...fieldDef[T]) SectionSpec {
	spec := SectionSpec{
		Key:      key,
		Required: requiredMsg,
		present:  func(s *Sections) bool { return *ptr(s) != nil },
		ensure: func(s *Sections) {
			if p := ptr(s); *p == nil {
				*p = new(T)
			}
		},
		clear: func(s *Sections) { *ptr(s) = nil },
	}

	for _, fd := range fields {
		f := fd.spec
		f.Section = key
		get := fd.leaf
		f.slot = func(s *Sections, create bool) **string {
			p := ptr(s)
			if *p == nil {
				if !create {
					return nil
				}
				*p = new(T)
			}
			return get(*p)
		}
		spec.Fields = append(spec.Fields, f)
	}
	return spec
}

// Schema is the ordered section table.
var Schema = []SectionSpec{
	section("pageDeGarde", "Les informations de la page de garde sont requises",
		func(s *Sections) **PageDeGarde { return &s.PageDeGarde },
		leaf("nomProjet", "nom_projet", func(p *PageDeGarde) **string { return &p.ProjectName },
			required("Le nom du projet est requis")),
		leaf("nomClient", "nom_client", func(p *PageDeGarde) **string { return &p.ClientName },
			required("Le nom du client est requis")),
		leaf("date", "date", func(p *PageDeGarde) **string { return &p.Date },
			required("La date du document est requise"),
			check(validation.IsValidDate, "La date du document est invalide (format attendu AAAA-MM-JJ)")),
		leaf("versionDocument", "version_document", func(p *PageDeGarde) **string { return &p.DocumentVersion },
			defaultValue("1.0")),
		leaf("redacteurs", "redacteur", func(p *PageDeGarde) **string { return &p.Authors },
			required("Au moins un rédacteur est requis"), sticky()),
	),
	section("introduction", "Les informations d'introduction sont requises",
		func(s *Sections) **Introduction { return &s.Introduction },
		leaf("contexteProjet", "contexte_projet", func(i *Introduction) **string { return &i.ProjectContext },
			required("Le contexte du projet est requis"), prompt("Contexte du projet")),
		leaf("objectifGlobal", "objectif_global", func(i *Introduction) **string { return &i.GlobalObjective },
			required("L'objectif global est requis"), prompt("Objectif global du projet")),
		leaf("presentationCommanditaire", "presentation_commanditaire", func(i *Introduction) **string { return &i.SponsorPresentation },
			required("La présentation du commanditaire est requise"), prompt("Présentation du commanditaire")),
		leaf("porteeProjet", "portee_projet", func(i *Introduction) **string { return &i.ProjectScope },
			required("La portée du projet est requise"), prompt("Portée du projet (inclusions/exclusions)")),
	),
	section("objectifsProjet", "Les objectifs du projet sont requis",
		func(s *Sections) **ObjectifsProjet { return &s.ObjectifsProjet },
		leaf("objectifsFonctionnels", "objectifs_fonctionnels", func(o *ObjectifsProjet) **string { return &o.Functional },
			required("Les objectifs fonctionnels sont requis"), prompt("Objectifs fonctionnels du projet")),
		leaf("objectifsNonFonctionnels", "objectifs_non_fonctionnels", func(o *ObjectifsProjet) **string { return &o.NonFunctional },
			required("Les objectifs non fonctionnels sont requis"), prompt("Objectifs non fonctionnels du projet")),
	),
	section("descriptionBesoin", "La description du besoin est requise",
		func(s *Sections) **DescriptionBesoin { return &s.DescriptionBesoin },
		leaf("problemesActuels", "problemes_actuels", func(d *DescriptionBesoin) **string { return &d.CurrentProblems },
			required("La description des problèmes actuels est requise"), prompt("Problèmes actuels ou opportunités")),
		leaf("utilisateursCibles", "utilisateurs_cibles", func(d *DescriptionBesoin) **string { return &d.TargetUsers },
			required("La description des utilisateurs cibles est requise"), prompt("Utilisateurs cibles (profils types/personas)")),
		leaf("besoinsExprimes", "besoins_exprimes", func(d *DescriptionBesoin) **string { return &d.ExpressedNeeds },
			required("La description des besoins exprimés est requise"), prompt("Besoins exprimés par le client")),
	),
	section("perimetreFonctionnel", "",
		func(s *Sections) **PerimetreFonctionnel { return &s.PerimetreFonctionnel },
		leaf("authentification", "authentification", func(p *PerimetreFonctionnel) **string { return &p.Authentication },
			prompt("Fonctionnalités d'authentification/inscription")),
		leaf("tableauBord", "tableau_bord", func(p *PerimetreFonctionnel) **string { return &p.Dashboard },
			prompt("Fonctionnalités du tableau de bord")),
		leaf("gestionUtilisateurs", "gestion_utilisateurs", func(p *PerimetreFonctionnel) **string { return &p.UserManagement },
			prompt("Fonctionnalités de gestion des utilisateurs")),
		leaf("gestionDonnees", "gestion_donnees", func(p *PerimetreFonctionnel) **string { return &p.DataManagement },
			prompt("Fonctionnalités de gestion des données")),
		leaf("notifications", "notifications", func(p *PerimetreFonctionnel) **string { return &p.Notifications },
			prompt("Fonctionnalités de notifications")),
		leaf("autresFonctionnalites", "autres_fonctionnalites", func(p *PerimetreFonctionnel) **string { return &p.Other },
			prompt("Autres fonctionnalités")),
	),
	section("contraintesTechniques", "",
		func(s *Sections) **ContraintesTechniques { return &s.ContraintesTechniques },
		leaf("langagesFrameworks", "langages_frameworks", func(c *ContraintesTechniques) **string { return &c.LanguagesFrameworks },
			prompt("Langages et frameworks techniques")),
		leaf("baseDonnees", "base_donnees", func(c *ContraintesTechniques) **string { return &c.Database },
			prompt("Contraintes de base de données")),
		leaf("hebergement", "hebergement", func(c *ContraintesTechniques) **string { return &c.Hosting },
			prompt("Exigences d'hébergement")),
		leaf("securite", "securite", func(c *ContraintesTechniques) **string { return &c.Security },
			prompt("Contraintes de sécurité")),
		leaf("compatibilite", "compatibilite", func(c *ContraintesTechniques) **string { return &c.Compatibility },
			prompt("Exigences de compatibilité")),
	),
	section("planningPrevisionnel", "",
		func(s *Sections) **PlanningPrevisionnel { return &s.PlanningPrevisionnel },
		leaf("phasesProjet", "phases_projet", func(p *PlanningPrevisionnel) **string { return &p.Phases },
			prompt("Phases du projet")),
		leaf("datesCles", "dates_cles", func(p *PlanningPrevisionnel) **string { return &p.KeyDates },
			prompt("Dates clés et livrables")),
		leaf("dureeEstimee", "duree_estimee", func(p *PlanningPrevisionnel) **string { return &p.EstimatedDuration },
			prompt("Durée estimée du projet")),
	),
	section("budget", "",
		func(s *Sections) **Budget { return &s.Budget },
		leaf("estimationCouts", "estimation_couts", func(b *Budget) **string { return &b.CostEstimate },
			prompt("Estimation des coûts")),
	),
	section("criteresValidation", "",
		func(s *Sections) **CriteresValidation { return &s.CriteresValidation },
		leaf("elementsVerifier", "elements_verifier", func(c *CriteresValidation) **string { return &c.ItemsToVerify },
			prompt("Éléments à vérifier pour accepter le projet")),
		leaf("scenariosTest", "scenarios_test", func(c *CriteresValidation) **string { return &c.TestScenarios },
			prompt("Scénarios de test et critères d'acceptation")),
	),
	section("annexes", "",
		func(s *Sections) **Annexes { return &s.Annexes },
		leaf("glossaire", "glossaire", func(a *Annexes) **string { return &a.Glossary },
			prompt("Glossaire de termes techniques")),
		leaf("documentsComplementaires", "documents_complementaires", func(a *Annexes) **string { return &a.ComplementaryDocs },
			prompt("Documents complémentaires")),
		leaf("referencesUtiles", "references_utiles", func(a *Annexes) **string { return &a.UsefulReferences },
			prompt("Références utiles")),
	),
}

// SchemaFields returns every leaf of every section, in table order.
func SchemaFields() []FieldSpec {
	var out []FieldSpec
	for _, sec := range Schema {
		out = append(out, sec.Fields...)
	}
	return out
}

// Clone returns a deep copy of s.
func (s Sections) Clone() Sections {
	var out Sections
	for _, sec := range Schema {
		if !sec.Present(&s) {
			continue
		}
		sec.Ensure(&out)
		for _, f := range sec.Fields {
			f.Set(&out, cloneString(f.Get(&s)))
		}
	}
	return out
}

// DropEmptySections sets every section whose leaves are all nil back to nil.
// Sections are stored flattened, so a section that was never written loads
// as a row of NULLs.
func (s *Sections) DropEmptySections() {
	for _, sec := range Schema {
		if !sec.Present(s) {
			continue
		}
		empty := true
		for _, f := range sec.Fields {
			if f.Get(s) != nil {
				empty = false
				break
			}
		}
		if empty {
			sec.clear(s)
		}
	}
}
