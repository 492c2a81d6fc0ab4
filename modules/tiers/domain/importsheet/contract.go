package importsheet

// ContractVersion identifies the worksheet and header names below. Renaming
// any of them breaks files already in users' hands and needs a version bump.
const ContractVersion = 1

const (
	SheetPhysicalPersons = "INFOS PERSONNES PHYSIQUES"
	SheetProjects        = "PROJETS PERSONNES PHYSIQUES"
	SheetLegalEntities   = "INFOS PERSONNES MORALES"
	SheetRelations       = "RELATIONS PP PM"
)

// SheetOrder is the processing order: later sheets consume ids produced by earlier ones.
var SheetOrder = []string{
	SheetPhysicalPersons,
	SheetProjects,
	SheetLegalEntities,
	SheetRelations,
}

const (
	ColBuilding         = "BATIMENT"
	ColSurname          = "NOM"
	ColFirstName        = "PRENOM"
	ColEmail            = "E-MAIL"
	ColFormula          = "FORMULE"
	ColFormulaStart     = "DATE DEBUT FORMULE"
	ColFormulaEnd       = "DATE FIN FORMULE"
	ColLocalID          = "IDENTIFIANT TIERS"
	ColCivility         = "CIVILITE"
	ColBirthName        = "NOM DE NAISSANCE"
	ColBirthDate        = "DATE DE NAISSANCE"
	ColPhone            = "TELEPHONE"
	ColAddress          = "ADRESSE"
	ColPostalCode       = "CODE POSTAL"
	ColCity             = "VILLE"
	ColStudyLevel       = "NIVEAU D'ETUDES"
	ColPriorSituation   = "SITUATION ANTERIEURE"
	ColPrescriber       = "PRESCRIPTEUR"
	ColFirstContactDate = "DATE PREMIER CONTACT"
	ColFirstContactTime = "HEURE PREMIER CONTACT"

	ColActivity         = "ACTIVITE"
	ColHeadcount        = "EFFECTIF PREVU"
	ColPlannedLegalForm = "FORME JURIDIQUE ENVISAGEE"
	ColActivityStart    = "DATE DEBUT ACTIVITE"

	ColCompanyName  = "RAISON SOCIALE"
	ColLegalForm    = "FORME JURIDIQUE"
	ColSector       = "SECTEUR D'ACTIVITE"
	ColSiret        = "SIRET"
	ColCreationDate = "DATE DE CREATION"

	ColPersonID          = "IDENTIFIANT PP"
	ColEntityID          = "IDENTIFIANT PM"
	ColRelationType      = "TYPE DE RELATION"
	ColRelationStartDate = "DATE DEBUT RELATION"
	ColRelationEndDate   = "DATE FIN RELATION"
)

// RequiredColumns must all be present in a recognized sheet's header row.
var RequiredColumns = map[string][]string{
	SheetPhysicalPersons: {ColBuilding, ColSurname, ColFirstName, ColEmail, ColFormula, ColFormulaStart, ColLocalID},
	SheetProjects:        {ColLocalID, ColActivity},
	SheetLegalEntities:   {ColBuilding, ColCompanyName, ColFormula, ColFormulaStart, ColLocalID},
	SheetRelations:       {ColPersonID, ColEntityID},
}

var OptionalColumns = map[string][]string{
	SheetPhysicalPersons: {
		ColCivility, ColBirthName, ColBirthDate, ColPhone, ColAddress, ColPostalCode, ColCity,
		ColStudyLevel, ColPriorSituation, ColPrescriber, ColFormulaEnd, ColFirstContactDate, ColFirstContactTime,
	},
	SheetProjects: {ColHeadcount, ColPlannedLegalForm, ColActivityStart},
	SheetLegalEntities: {
		ColLegalForm, ColSector, ColSiret, ColEmail, ColPhone, ColAddress, ColPostalCode, ColCity,
		ColCreationDate, ColFormulaEnd,
	},
	SheetRelations: {ColRelationType, ColRelationStartDate, ColRelationEndDate},
}

// TimeOfDayLength is the exact length of an HH:MM cell.
const TimeOfDayLength = 5

const DateLayout = "2006-01-02"

// HeaderRow is the spreadsheet row number of the header; data starts right after.
const HeaderRow = 1

// ColumnWidths is the maximum length, in characters, of free-text cells
// stored in bounded columns. Columns absent here are unbounded.
var ColumnWidths = map[string]map[string]int{
	SheetPhysicalPersons: {
		ColCivility:   16,
		ColSurname:    255,
		ColFirstName:  255,
		ColBirthName:  255,
		ColEmail:      255,
		ColPhone:      32,
		ColPostalCode: 16,
		ColCity:       255,
	},
	SheetLegalEntities: {
		ColCompanyName: 255,
		ColSiret:       14,
		ColEmail:       255,
		ColPhone:       32,
		ColPostalCode:  16,
		ColCity:        255,
	},
}
