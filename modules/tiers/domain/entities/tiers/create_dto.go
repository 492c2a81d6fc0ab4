package tiers

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/iota-facility/pkg/constants"
	"github.com/iota-uz/iota-facility/pkg/serrors"
)

// PhysicalPersonFields is the physical person part of a direct-entry payload:
// identity, project, accommodation wish and formula.
type PhysicalPersonFields struct {
	BuildingID       int64  `json:"batiment_id" validate:"required,gt=0"`
	Civility         string `json:"civilite" validate:"max=16"`
	Surname          string `json:"nom" validate:"required,max=255"`
	FirstName        string `json:"prenom" validate:"required,max=255"`
	BirthName        string `json:"nom_naissance" validate:"max=255"`
	BirthDate        string `json:"date_naissance" validate:"omitempty,datetime=2006-01-02"`
	Email            string `json:"email" validate:"omitempty,max=255,email"`
	Phone            string `json:"telephone" validate:"max=32"`
	Address          string `json:"adresse"`
	PostalCode       string `json:"code_postal" validate:"max=16"`
	City             string `json:"ville" validate:"max=255"`
	StudyLevelID     *int64 `json:"niveau_etude_id" validate:"omitempty,gt=0"`
	PriorSituationID *int64 `json:"situation_anterieure_id" validate:"omitempty,gt=0"`
	PrescriberID     *int64 `json:"prescripteur_id" validate:"omitempty,gt=0"`
	FirstContactDate string `json:"premier_contact_date" validate:"omitempty,datetime=2006-01-02"`
	FirstContactTime string `json:"premier_contact_heure" validate:"omitempty,len=5"`

	Activity           string `json:"activite" validate:"required"`
	Headcount          *int   `json:"effectif_prevu" validate:"omitempty,gte=0,lte=2147483647"`
	ProjectLegalFormID *int64 `json:"forme_juridique_envisagee_id" validate:"omitempty,gt=0"`
	ProjectStartDate   string `json:"date_debut_activite" validate:"omitempty,datetime=2006-01-02"`

	WishFormulaID *int64           `json:"formule_souhaitee_id" validate:"omitempty,gt=0"`
	WishSurface   *decimal.Decimal `json:"surface_souhaitee"`
	WishEntryDate string           `json:"date_entree_souhaitee" validate:"omitempty,datetime=2006-01-02"`

	FormulaID        int64  `json:"formule_id" validate:"required,gt=0"`
	FormulaStartDate string `json:"date_debut_formule" validate:"required,datetime=2006-01-02"`
	FormulaEndDate   string `json:"date_fin_formule" validate:"omitempty,datetime=2006-01-02"`
}

// LegalEntityFields is the legal entity part of a direct-entry payload.
type LegalEntityFields struct {
	BuildingID   int64  `json:"batiment_id" validate:"required,gt=0"`
	Name         string `json:"raison_sociale" validate:"required,max=255"`
	LegalFormID  *int64 `json:"forme_juridique_id" validate:"omitempty,gt=0"`
	SectorID     *int64 `json:"secteur_activite_id" validate:"omitempty,gt=0"`
	Siret        string `json:"siret" validate:"max=14"`
	Email        string `json:"email" validate:"omitempty,max=255,email"`
	Phone        string `json:"telephone" validate:"max=32"`
	Address      string `json:"adresse"`
	PostalCode   string `json:"code_postal" validate:"max=16"`
	City         string `json:"ville" validate:"max=255"`
	CreationDate string `json:"date_creation" validate:"omitempty,datetime=2006-01-02"`

	FormulaID        int64  `json:"formule_id" validate:"required,gt=0"`
	FormulaStartDate string `json:"date_debut_formule" validate:"required,datetime=2006-01-02"`
	FormulaEndDate   string `json:"date_fin_formule" validate:"omitempty,datetime=2006-01-02"`
}

type RelationDTO struct {
	PhysicalPersonID int64  `json:"tiepp_id" validate:"required,gt=0"`
	RelationTypeID   *int64 `json:"rel_typ_id" validate:"omitempty,gt=0"`
	StartDate        string `json:"relation_date_debut" validate:"omitempty,datetime=2006-01-02"`
	EndDate          string `json:"relation_date_fin" validate:"omitempty,datetime=2006-01-02"`
}

type CreatePhysicalPersonDTO struct {
	PhysicalPersonFields
}

type CreateLegalEntityDTO struct {
	LegalEntityFields
	Relations []RelationDTO `json:"relations" validate:"dive"`
}

// LinkedLegalEntityFields carries the relation between the two roots of a
// combined creation.
type LinkedLegalEntityFields struct {
	LegalEntityFields
	RelationTypeID    *int64 `json:"rel_typ_id" validate:"omitempty,gt=0"`
	RelationStartDate string `json:"relation_date_debut" validate:"omitempty,datetime=2006-01-02"`
	RelationEndDate   string `json:"relation_date_fin" validate:"omitempty,datetime=2006-01-02"`
}

type CreatePhysicalPersonWithEntityDTO struct {
	LegalEntity    LinkedLegalEntityFields `json:"pm"`
	PhysicalPerson PhysicalPersonFields    `json:"pp"`
}

func (f *PhysicalPersonFields) Normalize() {
	f.Civility = strings.TrimSpace(f.Civility)
	f.Surname = strings.TrimSpace(f.Surname)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.BirthName = strings.TrimSpace(f.BirthName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.City = strings.TrimSpace(f.City)
	f.FirstContactTime = strings.TrimSpace(f.FirstContactTime)
	f.Activity = strings.TrimSpace(f.Activity)
}

func (f *LegalEntityFields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Siret = strings.TrimSpace(f.Siret)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.City = strings.TrimSpace(f.City)
}

func (d *CreatePhysicalPersonDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	return validate(d)
}

func (d *CreateLegalEntityDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	return validate(d)
}

func (d *CreatePhysicalPersonWithEntityDTO) Ok() (serrors.ValidationErrors, bool) {
	d.LegalEntity.Normalize()
	d.PhysicalPerson.Normalize()
	return validate(d)
}

func validate(v any) (serrors.ValidationErrors, bool) {
	if err := constants.Validate.Struct(v); err != nil {
		return serrors.ProcessValidatorErrors(err), false
	}
	return serrors.ValidationErrors{}, true
}

// ToEntity maps the payload onto the root record. Dates were validated by Ok.
func (f *PhysicalPersonFields) ToEntity() PhysicalPerson {
	return PhysicalPerson{
		BuildingID:       f.BuildingID,
		Civility:         f.Civility,
		Surname:          f.Surname,
		FirstName:        f.FirstName,
		BirthName:        f.BirthName,
		BirthDate:        optionalDate(f.BirthDate),
		Email:            f.Email,
		Phone:            f.Phone,
		Address:          f.Address,
		PostalCode:       f.PostalCode,
		City:             f.City,
		StudyLevelID:     f.StudyLevelID,
		PriorSituationID: f.PriorSituationID,
		PrescriberID:     f.PrescriberID,
		FirstContactDate: optionalDate(f.FirstContactDate),
		FirstContactTime: f.FirstContactTime,
	}
}

// Dependents returns the project, wish and formula owned by personID.
func (f *PhysicalPersonFields) Dependents(personID int64) Dependents {
	wish := AccommodationWish{
		PhysicalPersonID: personID,
		FormulaID:        f.WishFormulaID,
		EntryDate:        optionalDate(f.WishEntryDate),
	}
	if f.WishSurface != nil {
		wish.Surface = decimal.NewNullDecimal(*f.WishSurface)
	}
	return Dependents{
		Projects: []Project{{
			PhysicalPersonID: personID,
			Activity:         f.Activity,
			Headcount:        f.Headcount,
			LegalFormID:      f.ProjectLegalFormID,
			StartDate:        optionalDate(f.ProjectStartDate),
		}},
		Wishes: []AccommodationWish{wish},
		PersonFormulas: []FormulaAssignment{{
			OwnerID:   personID,
			FormulaID: f.FormulaID,
			StartDate: requiredDate(f.FormulaStartDate),
			EndDate:   optionalDate(f.FormulaEndDate),
		}},
	}
}

func (f *LegalEntityFields) ToEntity() LegalEntity {
	return LegalEntity{
		BuildingID:   f.BuildingID,
		Name:         f.Name,
		LegalFormID:  f.LegalFormID,
		SectorID:     f.SectorID,
		Siret:        f.Siret,
		Email:        f.Email,
		Phone:        f.Phone,
		Address:      f.Address,
		PostalCode:   f.PostalCode,
		City:         f.City,
		CreationDate: optionalDate(f.CreationDate),
	}
}

func (f *LegalEntityFields) Formula(entityID int64) FormulaAssignment {
	return FormulaAssignment{
		OwnerID:   entityID,
		FormulaID: f.FormulaID,
		StartDate: requiredDate(f.FormulaStartDate),
		EndDate:   optionalDate(f.FormulaEndDate),
	}
}

func (d *CreateLegalEntityDTO) Dependents(entityID int64) Dependents {
	relations := make([]Relation, 0, len(d.Relations))
	for _, r := range d.Relations {
		relations = append(relations, Relation{
			LegalEntityID:    entityID,
			PhysicalPersonID: r.PhysicalPersonID,
			RelationTypeID:   r.RelationTypeID,
			StartDate:        optionalDate(r.StartDate),
			EndDate:          optionalDate(r.EndDate),
		})
	}
	return Dependents{
		Relations:      relations,
		EntityFormulas: []FormulaAssignment{d.Formula(entityID)},
	}
}

// Dependents returns the single fan-out of a combined creation: relation,
// both formulas, project and wish.
func (d *CreatePhysicalPersonWithEntityDTO) Dependents(personID, entityID int64) Dependents {
	deps := d.PhysicalPerson.Dependents(personID)
	deps.EntityFormulas = []FormulaAssignment{d.LegalEntity.Formula(entityID)}
	deps.Relations = []Relation{{
		LegalEntityID:    entityID,
		PhysicalPersonID: personID,
		RelationTypeID:   d.LegalEntity.RelationTypeID,
		StartDate:        optionalDate(d.LegalEntity.RelationStartDate),
		EndDate:          optionalDate(d.LegalEntity.RelationEndDate),
	}}
	return deps
}

func optionalDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(constants.DateFormat, v)
	if err != nil {
		return nil
	}
	return &t
}

func requiredDate(v string) time.Time {
	t, _ := time.Parse(constants.DateFormat, v)
	return t
}
