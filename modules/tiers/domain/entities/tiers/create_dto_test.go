package tiers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validPhysicalPersonJSON() string {
	return `{
		"batiment_id": 1,
		"civilite": "M.",
		"nom": " Dupont ",
		"prenom": "Jean",
		"email": "jean.dupont@example.com",
		"date_naissance": "1990-04-12",
		"premier_contact_heure": "09:30",
		"activite": "Boulangerie",
		"effectif_prevu": 3,
		"surface_souhaitee": "42.5",
		"date_entree_souhaitee": "2024-09-01",
		"formule_id": 4,
		"date_debut_formule": "2024-09-01"
	}`
}

func TestCreatePhysicalPersonDTO_Ok(t *testing.T) {
	var dto CreatePhysicalPersonDTO
	require.NoError(t, json.Unmarshal([]byte(validPhysicalPersonJSON()), &dto))

	errs, ok := dto.Ok()
	require.True(t, ok, errs)
	require.Equal(t, "Dupont", dto.Surname)

	p := dto.ToEntity()
	require.Equal(t, NewPersonKey("Jean", "Dupont"), p.Key())
	require.Equal(t, time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC), *p.BirthDate)
	require.Nil(t, p.FirstContactDate)

	deps := dto.Dependents(42)
	require.Len(t, deps.Projects, 1)
	require.Len(t, deps.Wishes, 1)
	require.Len(t, deps.PersonFormulas, 1)
	require.Empty(t, deps.Relations)
	require.Equal(t, 3, deps.Len())
	require.Equal(t, int64(42), deps.Projects[0].PhysicalPersonID)
	require.Equal(t, int64(42), deps.Wishes[0].PhysicalPersonID)
	require.Equal(t, int64(42), deps.PersonFormulas[0].OwnerID)
	require.True(t, deps.Wishes[0].Surface.Valid)
	require.True(t, decimal.RequireFromString("42.5").Equal(deps.Wishes[0].Surface.Decimal))
	require.Nil(t, deps.PersonFormulas[0].EndDate)
}

func TestCreatePhysicalPersonDTO_Invalid(t *testing.T) {
	dto := CreatePhysicalPersonDTO{PhysicalPersonFields{
		BuildingID:       1,
		Surname:          "   ",
		FirstName:        "Jean",
		Email:            "not-an-email",
		FirstContactTime: "9h30",
		Activity:         "Conseil",
		FormulaID:        2,
		FormulaStartDate: "01/09/2024",
	}}

	errs, ok := dto.Ok()
	require.False(t, ok)
	require.Contains(t, errs, "nom")
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "premier_contact_heure")
	require.Contains(t, errs, "date_debut_formule")
	require.NotContains(t, errs, "prenom")
}

func TestCreateDTO_RejectsValuesTheSchemaCannotHold(t *testing.T) {
	huge := 3_000_000_000
	pp := CreatePhysicalPersonDTO{PhysicalPersonFields{
		BuildingID:       1,
		Surname:          "Dupont",
		FirstName:        "Jean",
		Phone:            "+33 1 23 45 67 89 poste 1234567890",
		Activity:         "Conseil",
		Headcount:        &huge,
		FormulaID:        2,
		FormulaStartDate: "2024-09-01",
	}}
	errs, ok := pp.Ok()
	require.False(t, ok)
	require.Contains(t, errs, "effectif_prevu")
	require.Contains(t, errs, "telephone")

	pm := CreateLegalEntityDTO{LegalEntityFields: LegalEntityFields{
		BuildingID:       1,
		Name:             "ACME",
		Siret:            "123 456 789 00012",
		FormulaID:        2,
		FormulaStartDate: "2024-09-01",
	}}
	errs, ok = pm.Ok()
	require.False(t, ok)
	require.Contains(t, errs, "siret")
}

func TestReferences_NameTheCarryingField(t *testing.T) {
	level := int64(6)
	rel := int64(8)

	pp := CreatePhysicalPersonDTO{PhysicalPersonFields{BuildingID: 1, StudyLevelID: &level, FormulaID: 4}}
	require.Equal(t, []Reference{
		{Field: "batiment_id", Table: RefBuildings, ID: 1},
		{Field: "niveau_etude_id", Table: RefStudyLevels, ID: 6},
		{Field: "formule_id", Table: RefFormulas, ID: 4},
	}, pp.References())

	pm := CreateLegalEntityDTO{
		LegalEntityFields: LegalEntityFields{BuildingID: 2, FormulaID: 5},
		Relations:         []RelationDTO{{PhysicalPersonID: 9, RelationTypeID: &rel}},
	}
	require.Equal(t, []Reference{
		{Field: "batiment_id", Table: RefBuildings, ID: 2},
		{Field: "formule_id", Table: RefFormulas, ID: 5},
		{Field: "relations[0].tiepp_id", Table: RefPhysicalPersons, ID: 9},
		{Field: "relations[0].rel_typ_id", Table: RefRelationTypes, ID: 8},
	}, pm.References())

	var both CreatePhysicalPersonWithEntityDTO
	both.PhysicalPerson = PhysicalPersonFields{BuildingID: 1, FormulaID: 4}
	both.LegalEntity.LegalEntityFields = LegalEntityFields{BuildingID: 1, FormulaID: 5}
	both.LegalEntity.RelationTypeID = &rel
	fields := make([]string, 0)
	for _, r := range both.References() {
		fields = append(fields, r.Field)
	}
	require.Equal(t, []string{"pp.batiment_id", "pp.formule_id", "pm.batiment_id", "pm.formule_id", "pm.rel_typ_id"}, fields)
}

func TestCreateLegalEntityDTO_Relations(t *testing.T) {
	var dto CreateLegalEntityDTO
	require.NoError(t, json.Unmarshal([]byte(`{
		"batiment_id": 2,
		"raison_sociale": "ACME SARL",
		"formule_id": 5,
		"date_debut_formule": "2024-01-15",
		"date_fin_formule": "2025-01-14",
		"relations": [
			{"tiepp_id": 10, "rel_typ_id": 1, "relation_date_debut": "2024-01-15"},
			{"tiepp_id": 11}
		]
	}`), &dto))

	errs, ok := dto.Ok()
	require.True(t, ok, errs)

	deps := dto.Dependents(7)
	require.Len(t, deps.Relations, 2)
	require.Equal(t, int64(7), deps.Relations[0].LegalEntityID)
	require.Equal(t, int64(10), deps.Relations[0].PhysicalPersonID)
	require.Equal(t, int64(11), deps.Relations[1].PhysicalPersonID)
	require.Nil(t, deps.Relations[1].RelationTypeID)
	require.Len(t, deps.EntityFormulas, 1)
	require.Equal(t, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), *deps.EntityFormulas[0].EndDate)

	dto.Relations = append(dto.Relations, RelationDTO{})
	errs, ok = dto.Ok()
	require.False(t, ok)
	require.Contains(t, errs, "relations[2].tiepp_id")
}

func TestCreatePhysicalPersonWithEntityDTO_Dependents(t *testing.T) {
	var dto CreatePhysicalPersonWithEntityDTO
	require.NoError(t, json.Unmarshal([]byte(`{
		"pm": {
			"batiment_id": 2,
			"raison_sociale": "ACME SARL",
			"formule_id": 5,
			"date_debut_formule": "2024-01-15",
			"rel_typ_id": 3,
			"relation_date_debut": "2024-01-15"
		},
		"pp": `+validPhysicalPersonJSON()+`
	}`), &dto))

	errs, ok := dto.Ok()
	require.True(t, ok, errs)

	deps := dto.Dependents(42, 7)
	require.Equal(t, 5, deps.Len())
	require.Equal(t, Relation{
		LegalEntityID:    7,
		PhysicalPersonID: 42,
		RelationTypeID:   dto.LegalEntity.RelationTypeID,
		StartDate:        deps.Relations[0].StartDate,
	}, deps.Relations[0])
	require.Equal(t, int64(7), deps.EntityFormulas[0].OwnerID)
	require.Equal(t, int64(42), deps.PersonFormulas[0].OwnerID)

	dto.LegalEntity.Name = ""
	errs, ok = dto.Ok()
	require.False(t, ok)
	require.Contains(t, errs, "pm.raison_sociale")
}

func TestDuplicateError(t *testing.T) {
	err := NewPhysicalPersonDuplicate(NewPersonKey("Jean", "Dupont"))
	require.ErrorIs(t, err, ErrPhysicalPersonExists)
	require.NotErrorIs(t, err, ErrLegalEntityExists)
	require.Contains(t, err.Error(), "Jean Dupont")

	pmErr := NewLegalEntityDuplicate("ACME SARL")
	require.ErrorIs(t, pmErr, ErrLegalEntityExists)
	require.Contains(t, pmErr.Error(), "ACME SARL")
}
