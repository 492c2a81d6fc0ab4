package importsheet

import (
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/lookup"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
)

type PhysicalPersonRecord struct {
	Row     int
	LocalID int64
	Person  tiers.PhysicalPerson
	Formula tiers.FormulaAssignment
}

type LegalEntityRecord struct {
	Row     int
	LocalID int64
	Entity  tiers.LegalEntity
	Formula tiers.FormulaAssignment
}

// Mapper turns worksheet rows into insertion records. It is built per import
// run from the run's lookup tables and identity links.
type Mapper struct {
	lookups lookup.Tables
	links   *IdentityLinks
}

func NewMapper(lookups lookup.Tables, links *IdentityLinks) *Mapper {
	return &Mapper{lookups: lookups, links: links}
}

func (m *Mapper) PhysicalPerson(row Row) (PhysicalPersonRecord, error) {
	c := m.cells(row)
	rec := PhysicalPersonRecord{
		Row:     row.Number,
		LocalID: c.localID(ColLocalID),
		Person: tiers.PhysicalPerson{
			BuildingID:       c.requiredRef(lookup.Buildings, ColBuilding),
			Surname:          c.required(ColSurname),
			FirstName:        c.required(ColFirstName),
			Email:            c.required(ColEmail),
			Civility:         c.optional(ColCivility),
			BirthName:        c.optional(ColBirthName),
			BirthDate:        c.optionalDate(ColBirthDate),
			Phone:            c.optional(ColPhone),
			Address:          c.optional(ColAddress),
			PostalCode:       c.optional(ColPostalCode),
			City:             c.optional(ColCity),
			StudyLevelID:     c.optionalRef(lookup.StudyLevels, ColStudyLevel),
			PriorSituationID: c.optionalRef(lookup.PriorSituations, ColPriorSituation),
			PrescriberID:     c.optionalRef(lookup.Prescribers, ColPrescriber),
			FirstContactDate: c.optionalDate(ColFirstContactDate),
			FirstContactTime: c.timeOfDay(ColFirstContactTime),
		},
		Formula: tiers.FormulaAssignment{
			FormulaID: c.requiredRef(lookup.Formulas, ColFormula),
			StartDate: c.requiredDate(ColFormulaStart),
			EndDate:   c.optionalDate(ColFormulaEnd),
		},
	}
	if c.err != nil {
		return PhysicalPersonRecord{}, c.err
	}
	return rec, nil
}

func (m *Mapper) Project(row Row) (tiers.Project, error) {
	c := m.cells(row)
	p := tiers.Project{
		PhysicalPersonID: c.link(Persons, ColLocalID),
		Activity:         c.required(ColActivity),
		Headcount:        c.optionalInt(ColHeadcount),
		LegalFormID:      c.optionalRef(lookup.LegalForms, ColPlannedLegalForm),
		StartDate:        c.optionalDate(ColActivityStart),
	}
	if c.err != nil {
		return tiers.Project{}, c.err
	}
	return p, nil
}

func (m *Mapper) LegalEntity(row Row) (LegalEntityRecord, error) {
	c := m.cells(row)
	rec := LegalEntityRecord{
		Row:     row.Number,
		LocalID: c.localID(ColLocalID),
		Entity: tiers.LegalEntity{
			BuildingID:   c.requiredRef(lookup.Buildings, ColBuilding),
			Name:         c.required(ColCompanyName),
			LegalFormID:  c.optionalRef(lookup.LegalForms, ColLegalForm),
			SectorID:     c.optionalRef(lookup.Sectors, ColSector),
			Siret:        c.optional(ColSiret),
			Email:        c.optional(ColEmail),
			Phone:        c.optional(ColPhone),
			Address:      c.optional(ColAddress),
			PostalCode:   c.optional(ColPostalCode),
			City:         c.optional(ColCity),
			CreationDate: c.optionalDate(ColCreationDate),
		},
		Formula: tiers.FormulaAssignment{
			FormulaID: c.requiredRef(lookup.Formulas, ColFormula),
			StartDate: c.requiredDate(ColFormulaStart),
			EndDate:   c.optionalDate(ColFormulaEnd),
		},
	}
	if c.err != nil {
		return LegalEntityRecord{}, c.err
	}
	return rec, nil
}

func (m *Mapper) Relation(row Row) (tiers.Relation, error) {
	c := m.cells(row)
	r := tiers.Relation{
		PhysicalPersonID: c.link(Persons, ColPersonID),
		LegalEntityID:    c.link(Entities, ColEntityID),
		RelationTypeID:   c.optionalRef(lookup.RelationTypes, ColRelationType),
		StartDate:        c.optionalDate(ColRelationStartDate),
		EndDate:          c.optionalDate(ColRelationEndDate),
	}
	if c.err != nil {
		return tiers.Relation{}, c.err
	}
	return r, nil
}

// MapSheet checks the header then maps every non-blank row, stopping at the
// first failing one.
func MapSheet[T any](sheet Sheet, fn func(Row) (T, error)) ([]T, error) {
	if missing := sheet.MissingColumns(); len(missing) > 0 {
		return nil, &RowError{Sheet: sheet.Name, Row: HeaderRow, Field: missing[0], Reason: ReasonMissingColumn}
	}
	rows := sheet.DataRows()
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CheckRowLimit rejects a sheet carrying more than limit data rows.
func CheckRowLimit(sheet Sheet, limit int) error {
	if limit <= 0 {
		return nil
	}
	rows := sheet.DataRows()
	if len(rows) <= limit {
		return nil
	}
	return &RowError{
		Sheet:  sheet.Name,
		Row:    rows[limit].Number,
		Reason: ReasonTooManyRows,
		Value:  strconv.Itoa(limit),
	}
}

func (m *Mapper) cells(row Row) *cells {
	return &cells{row: row, lookups: m.lookups, links: m.links}
}

// cells reads typed values from a row and keeps the first failure.
type cells struct {
	row     Row
	lookups lookup.Tables
	links   *IdentityLinks
	err     *RowError
}

func (c *cells) fail(col string, reason Reason, value string) {
	if c.err != nil {
		return
	}
	c.err = &RowError{Sheet: c.row.Sheet, Row: c.row.Number, Field: col, Reason: reason, Value: value}
}

func (c *cells) optional(col string) string {
	return c.fit(col, c.row.Get(col))
}

func (c *cells) required(col string) string {
	v := c.row.Get(col)
	if v == "" {
		c.fail(col, ReasonRequired, "")
	}
	return c.fit(col, v)
}

// fit fails the row when v is longer than the column it is stored in.
func (c *cells) fit(col, v string) string {
	if limit, ok := ColumnWidths[c.row.Sheet][col]; ok && utf8.RuneCountInString(v) > limit {
		c.fail(col, ReasonTooLong, v)
	}
	return v
}

func (c *cells) requiredRef(table lookup.Table, col string) int64 {
	name := c.required(col)
	if name == "" {
		return 0
	}
	id, ok := c.lookups.Resolve(table, name)
	if !ok {
		c.fail(col, ReasonUnresolved, name)
	}
	return id
}

// optionalRef treats a name that does not resolve like an empty cell.
func (c *cells) optionalRef(table lookup.Table, col string) *int64 {
	id, ok := c.lookups.Resolve(table, c.row.Get(col))
	if !ok {
		return nil
	}
	return &id
}

func (c *cells) requiredDate(col string) time.Time {
	raw := c.required(col)
	if raw == "" {
		return time.Time{}
	}
	t, ok := ParseDateCell(raw)
	if !ok {
		c.fail(col, ReasonInvalidDate, raw)
	}
	return t
}

func (c *cells) optionalDate(col string) *time.Time {
	raw := c.row.Get(col)
	if raw == "" {
		return nil
	}
	t, ok := ParseDateCell(raw)
	if !ok {
		c.fail(col, ReasonInvalidDate, raw)
		return nil
	}
	return &t
}

// timeOfDay checks the literal length only, not that the value is a valid clock time.
func (c *cells) timeOfDay(col string) string {
	raw := c.row.Get(col)
	if raw != "" && utf8.RuneCountInString(raw) != TimeOfDayLength {
		c.fail(col, ReasonInvalidTime, raw)
	}
	return raw
}

func (c *cells) optionalInt(col string) *int {
	raw := c.row.Get(col)
	if raw == "" {
		return nil
	}
	n, ok := parseWhole(raw)
	if !ok {
		c.fail(col, ReasonInvalidNumber, raw)
		return nil
	}
	v := int(n)
	return &v
}

// localID returns 0 for an empty cell: the row is imported but cannot be referenced.
func (c *cells) localID(col string) int64 {
	raw := c.row.Get(col)
	if raw == "" {
		return 0
	}
	n, ok := parseWhole(raw)
	if !ok {
		c.fail(col, ReasonInvalidNumber, raw)
	}
	return n
}

func (c *cells) link(ns Namespace, col string) int64 {
	raw := c.row.Get(col)
	local := c.localID(col)
	if c.err != nil {
		return 0
	}
	id, ok := c.links.Resolve(ns, local)
	if !ok {
		if raw == "" {
			c.fail(col, ReasonRequired, "")
		} else {
			c.fail(col, ReasonUnknownLocalID, raw)
		}
	}
	return id
}

// parseWhole accepts "7" as well as the "7.0" some spreadsheet writers emit.
// Values must fit the INT columns they are stored in.
func parseWhole(raw string) (int64, bool) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, n >= 0 && n <= math.MaxInt32
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int64(f), true
}
