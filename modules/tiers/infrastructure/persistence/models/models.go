package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type PhysicalPerson struct {
	ID                    int64
	TenantID              uuid.UUID
	BatimentID            int64
	Civilite              pgtype.Text
	Nom                   string
	Prenom                string
	NomNaissance          pgtype.Text
	DateNaissance         pgtype.Date
	Email                 pgtype.Text
	Telephone             pgtype.Text
	Adresse               pgtype.Text
	CodePostal            pgtype.Text
	Ville                 pgtype.Text
	NiveauEtudeID         pgtype.Int8
	SituationAnterieureID pgtype.Int8
	PrescripteurID        pgtype.Int8
	PremierContactDate    pgtype.Date
	PremierContactHeure   pgtype.Text
	CreatedBy             pgtype.Int8
	CreatedAt             time.Time
}

type LegalEntity struct {
	ID                int64
	TenantID          uuid.UUID
	BatimentID        int64
	RaisonSociale     string
	FormeJuridiqueID  pgtype.Int8
	SecteurActiviteID pgtype.Int8
	Siret             pgtype.Text
	Email             pgtype.Text
	Telephone         pgtype.Text
	Adresse           pgtype.Text
	CodePostal        pgtype.Text
	Ville             pgtype.Text
	DateCreation      pgtype.Date
	CreatedBy         pgtype.Int8
	CreatedAt         time.Time
}

type Project struct {
	TenantID         uuid.UUID
	TiersPPID        int64
	Activite         string
	EffectifPrevu    pgtype.Int4
	FormeJuridiqueID pgtype.Int8
	DateDebut        pgtype.Date
}

type AccommodationWish struct {
	TenantID   uuid.UUID
	TiersPPID  int64
	FormuleID  pgtype.Int8
	Surface    decimal.NullDecimal
	DateEntree pgtype.Date
}

type FormulaAssignment struct {
	TenantID  uuid.UUID
	OwnerID   int64
	FormuleID int64
	DateDebut pgtype.Date
	DateFin   pgtype.Date
}

type Relation struct {
	TenantID          uuid.UUID
	TiersPMID         int64
	TiersPPID         int64
	RelTypID          pgtype.Int8
	RelationDateDebut pgtype.Date
	RelationDateFin   pgtype.Date
}

type LookupRow struct {
	ID  int64
	Nom string
}
