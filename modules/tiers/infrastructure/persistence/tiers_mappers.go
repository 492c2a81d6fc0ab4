package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/lookup"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/persistence/models"
)

func toDBPhysicalPerson(tenantID uuid.UUID, p tiers.PhysicalPerson) models.PhysicalPerson {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return models.PhysicalPerson{
		ID:                    p.ID,
		TenantID:              tenantID,
		BatimentID:            p.BuildingID,
		Civilite:              pgText(p.Civility),
		Nom:                   p.Surname,
		Prenom:                p.FirstName,
		NomNaissance:          pgText(p.BirthName),
		DateNaissance:         pgDate(p.BirthDate),
		Email:                 pgText(p.Email),
		Telephone:             pgText(p.Phone),
		Adresse:               pgText(p.Address),
		CodePostal:            pgText(p.PostalCode),
		Ville:                 pgText(p.City),
		NiveauEtudeID:         pgInt8(p.StudyLevelID),
		SituationAnterieureID: pgInt8(p.PriorSituationID),
		PrescripteurID:        pgInt8(p.PrescriberID),
		PremierContactDate:    pgDate(p.FirstContactDate),
		PremierContactHeure:   pgText(p.FirstContactTime),
		CreatedBy:             pgActor(p.CreatedBy),
		CreatedAt:             createdAt,
	}
}

func toDBLegalEntity(tenantID uuid.UUID, e tiers.LegalEntity) models.LegalEntity {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return models.LegalEntity{
		ID:                e.ID,
		TenantID:          tenantID,
		BatimentID:        e.BuildingID,
		RaisonSociale:     e.Name,
		FormeJuridiqueID:  pgInt8(e.LegalFormID),
		SecteurActiviteID: pgInt8(e.SectorID),
		Siret:             pgText(e.Siret),
		Email:             pgText(e.Email),
		Telephone:         pgText(e.Phone),
		Adresse:           pgText(e.Address),
		CodePostal:        pgText(e.PostalCode),
		Ville:             pgText(e.City),
		DateCreation:      pgDate(e.CreationDate),
		CreatedBy:         pgActor(e.CreatedBy),
		CreatedAt:         createdAt,
	}
}

func toDBProject(tenantID uuid.UUID, p tiers.Project) models.Project {
	var headcount pgtype.Int4
	if p.Headcount != nil {
		headcount = pgtype.Int4{Int32: int32(*p.Headcount), Valid: true}
	}
	return models.Project{
		TenantID:         tenantID,
		TiersPPID:        p.PhysicalPersonID,
		Activite:         p.Activity,
		EffectifPrevu:    headcount,
		FormeJuridiqueID: pgInt8(p.LegalFormID),
		DateDebut:        pgDate(p.StartDate),
	}
}

func toDBAccommodationWish(tenantID uuid.UUID, w tiers.AccommodationWish) models.AccommodationWish {
	return models.AccommodationWish{
		TenantID:   tenantID,
		TiersPPID:  w.PhysicalPersonID,
		FormuleID:  pgInt8(w.FormulaID),
		Surface:    w.Surface,
		DateEntree: pgDate(w.EntryDate),
	}
}

func toDBFormulaAssignment(tenantID uuid.UUID, f tiers.FormulaAssignment) models.FormulaAssignment {
	return models.FormulaAssignment{
		TenantID:  tenantID,
		OwnerID:   f.OwnerID,
		FormuleID: f.FormulaID,
		DateDebut: pgDate(&f.StartDate),
		DateFin:   pgDate(f.EndDate),
	}
}

func toDBRelation(tenantID uuid.UUID, r tiers.Relation) models.Relation {
	return models.Relation{
		TenantID:          tenantID,
		TiersPMID:         r.LegalEntityID,
		TiersPPID:         r.PhysicalPersonID,
		RelTypID:          pgInt8(r.RelationTypeID),
		RelationDateDebut: pgDate(r.StartDate),
		RelationDateFin:   pgDate(r.EndDate),
	}
}

func toDomainLookupRows(rows []models.LookupRow) []lookup.Row {
	out := make([]lookup.Row, len(rows))
	for i, r := range rows {
		out[i] = lookup.Row{ID: r.ID, Name: r.Nom}
	}
	return out
}

func pgText(v string) pgtype.Text {
	return pgtype.Text{String: v, Valid: v != ""}
}

func pgDate(t *time.Time) pgtype.Date {
	if t == nil || t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func pgInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func pgActor(v *uint) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: int64(*v), Valid: true}
}
