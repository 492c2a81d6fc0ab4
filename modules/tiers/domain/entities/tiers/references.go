package tiers

import (
	"fmt"
	"strings"

	"github.com/iota-uz/iota-facility/pkg/serrors"
)

// RefTable is a tenant-scoped table a direct-entry payload may point into.
type RefTable string

const (
	RefBuildings       RefTable = "batiments"
	RefLegalForms      RefTable = "formes_juridiques"
	RefPrescribers     RefTable = "prescripteurs"
	RefPriorSituations RefTable = "situations_anterieures"
	RefRelationTypes   RefTable = "types_relations"
	RefStudyLevels     RefTable = "niveaux_etudes"
	RefSectors         RefTable = "secteurs_activite"
	RefFormulas        RefTable = "formules"
	RefPhysicalPersons RefTable = "tiers_pp"
)

// Reference is a caller-supplied id, named by the payload field that carried it.
type Reference struct {
	Field string
	Table RefTable
	ID    int64
}

var ErrUnknownReference = serrors.NewError(
	"TIERS_UNKNOWN_REFERENCE", "referenced record not found in tenant", "Tiers.Errors.UnknownReference",
)

// UnknownReferenceError lists the references that do not exist in the
// caller's tenant.
type UnknownReferenceError struct {
	Refs []Reference
}

func (e *UnknownReferenceError) Error() string {
	parts := make([]string, len(e.Refs))
	for i, r := range e.Refs {
		parts[i] = fmt.Sprintf("%s=%d", r.Field, r.ID)
	}
	return "Référence inconnue : " + strings.Join(parts, ", ")
}

func (e *UnknownReferenceError) Unwrap() error { return ErrUnknownReference }

type refCollector struct {
	prefix string
	refs   []Reference
}

func (c *refCollector) add(field string, table RefTable, id int64) {
	if id <= 0 {
		return
	}
	c.refs = append(c.refs, Reference{Field: c.prefix + field, Table: table, ID: id})
}

func (c *refCollector) addOptional(field string, table RefTable, id *int64) {
	if id != nil {
		c.add(field, table, *id)
	}
}

func (f *PhysicalPersonFields) collect(c *refCollector) {
	c.add("batiment_id", RefBuildings, f.BuildingID)
	c.addOptional("niveau_etude_id", RefStudyLevels, f.StudyLevelID)
	c.addOptional("situation_anterieure_id", RefPriorSituations, f.PriorSituationID)
	c.addOptional("prescripteur_id", RefPrescribers, f.PrescriberID)
	c.addOptional("forme_juridique_envisagee_id", RefLegalForms, f.ProjectLegalFormID)
	c.addOptional("formule_souhaitee_id", RefFormulas, f.WishFormulaID)
	c.add("formule_id", RefFormulas, f.FormulaID)
}

func (f *LegalEntityFields) collect(c *refCollector) {
	c.add("batiment_id", RefBuildings, f.BuildingID)
	c.addOptional("forme_juridique_id", RefLegalForms, f.LegalFormID)
	c.addOptional("secteur_activite_id", RefSectors, f.SectorID)
	c.add("formule_id", RefFormulas, f.FormulaID)
}

func (d *CreatePhysicalPersonDTO) References() []Reference {
	c := &refCollector{}
	d.collect(c)
	return c.refs
}

func (d *CreateLegalEntityDTO) References() []Reference {
	c := &refCollector{}
	d.collect(c)
	for i, r := range d.Relations {
		c.prefix = fmt.Sprintf("relations[%d].", i)
		c.add("tiepp_id", RefPhysicalPersons, r.PhysicalPersonID)
		c.addOptional("rel_typ_id", RefRelationTypes, r.RelationTypeID)
	}
	return c.refs
}

func (d *CreatePhysicalPersonWithEntityDTO) References() []Reference {
	c := &refCollector{prefix: "pp."}
	d.PhysicalPerson.collect(c)
	c.prefix = "pm."
	d.LegalEntity.collect(c)
	c.addOptional("rel_typ_id", RefRelationTypes, d.LegalEntity.RelationTypeID)
	return c.refs
}
