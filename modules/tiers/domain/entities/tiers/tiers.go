package tiers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPhysicalPerson Kind = "pp"
	KindLegalEntity    Kind = "pm"
)

// PersonKey is the natural key a physical person is deduplicated on within a tenant.
type PersonKey struct {
	FirstName string
	Surname   string
}

func NewPersonKey(firstName, surname string) PersonKey {
	return PersonKey{FirstName: strings.TrimSpace(firstName), Surname: strings.TrimSpace(surname)}
}

func (k PersonKey) String() string {
	return strings.TrimSpace(k.FirstName + " " + k.Surname)
}

type PhysicalPerson struct {
	ID               int64
	TenantID         uuid.UUID
	BuildingID       int64
	Civility         string
	Surname          string
	FirstName        string
	BirthName        string
	BirthDate        *time.Time
	Email            string
	Phone            string
	Address          string
	PostalCode       string
	City             string
	StudyLevelID     *int64
	PriorSituationID *int64
	PrescriberID     *int64
	FirstContactDate *time.Time
	// HH:MM, empty when unknown.
	FirstContactTime string
	CreatedBy        *uint
	CreatedAt        time.Time
}

func (p PhysicalPerson) Key() PersonKey {
	return NewPersonKey(p.FirstName, p.Surname)
}

type LegalEntity struct {
	ID           int64
	TenantID     uuid.UUID
	BuildingID   int64
	Name         string
	LegalFormID  *int64
	SectorID     *int64
	Siret        string
	Email        string
	Phone        string
	Address      string
	PostalCode   string
	City         string
	CreationDate *time.Time
	CreatedBy    *uint
	CreatedAt    time.Time
}

func (e LegalEntity) Key() string {
	return strings.TrimSpace(e.Name)
}

type Project struct {
	PhysicalPersonID int64
	Activity         string
	Headcount        *int
	LegalFormID      *int64
	StartDate        *time.Time
}

type AccommodationWish struct {
	PhysicalPersonID int64
	FormulaID        *int64
	Surface          decimal.NullDecimal
	EntryDate        *time.Time
}

// FormulaAssignment links an owner (physical person or legal entity) to a
// service formula. OwnerID refers to tiers_pp or tiers_pm depending on the
// slice of Dependents it is stored in.
type FormulaAssignment struct {
	OwnerID   int64
	FormulaID int64
	StartDate time.Time
	EndDate   *time.Time
}

type Relation struct {
	LegalEntityID    int64
	PhysicalPersonID int64
	RelationTypeID   *int64
	StartDate        *time.Time
	EndDate          *time.Time
}

// Dependents is every record created alongside one or more roots in a single fan-out.
type Dependents struct {
	Projects       []Project
	Wishes         []AccommodationWish
	PersonFormulas []FormulaAssignment
	EntityFormulas []FormulaAssignment
	Relations      []Relation
}

func (d Dependents) Len() int {
	return len(d.Projects) + len(d.Wishes) + len(d.PersonFormulas) + len(d.EntityFormulas) + len(d.Relations)
}
