package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/persistence/models"
	"github.com/iota-uz/iota-facility/pkg/composables"
	"github.com/iota-uz/iota-facility/pkg/repo"
)

const (
	physicalPersonExistsQuery = `SELECT EXISTS (
		SELECT 1 FROM tiers_pp WHERE tenant_id = $1 AND prenom = $2 AND nom = $3
	)`

	legalEntityExistsQuery = `SELECT EXISTS (
		SELECT 1 FROM tiers_pm WHERE tenant_id = $1 AND raison_sociale = $2
	)`

	// Pairs are matched as exact (prenom, nom) tuples, never as a cross
	// product of the two name lists.
	findExistingPhysicalPersonsQuery = `
		SELECT DISTINCT prenom, nom FROM tiers_pp
		WHERE tenant_id = $1
		  AND (prenom, nom) IN (SELECT * FROM unnest($2::text[], $3::text[]))`

	findExistingLegalEntitiesQuery = `
		SELECT DISTINCT raison_sociale FROM tiers_pm
		WHERE tenant_id = $1 AND raison_sociale = ANY($2::text[])`

	// %[1]s is the id column, %[2]s the table; both come from refColumns.
	selectTenantRefsQuery = `SELECT %[1]s FROM %[2]s WHERE tenant_id = $1 AND %[1]s = ANY($2::bigint[])`

	insertPhysicalPersonQuery = `INSERT INTO tiers_pp (
		tenant_id, batiment_id, civilite, nom, prenom, nom_naissance, date_naissance,
		email, telephone, adresse, code_postal, ville, niveau_etude_id,
		situation_anterieure_id, prescripteur_id, premier_contact_date,
		premier_contact_heure, created_by, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING tiepp_id`

	insertLegalEntityQuery = `INSERT INTO tiers_pm (
		tenant_id, batiment_id, raison_sociale, forme_juridique_id, secteur_activite_id,
		siret, email, telephone, adresse, code_postal, ville, date_creation,
		created_by, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING tiepm_id`

	insertProjectQuery = `INSERT INTO projets (
		tenant_id, tiepp_id, activite, effectif_prevu, forme_juridique_id, date_debut
	) VALUES ($1, $2, $3, $4, $5, $6)`

	insertAccommodationWishQuery = `INSERT INTO souhaits_hebergement (
		tenant_id, tiepp_id, formule_id, surface, date_entree
	) VALUES ($1, $2, $3, $4, $5)`

	insertPersonFormulaQuery = `INSERT INTO formules_pp (
		tenant_id, tiepp_id, formule_id, date_debut, date_fin
	) VALUES ($1, $2, $3, $4, $5)`

	insertEntityFormulaQuery = `INSERT INTO formules_pm (
		tenant_id, tiepm_id, formule_id, date_debut, date_fin
	) VALUES ($1, $2, $3, $4, $5)`

	insertRelationQuery = `INSERT INTO relations_pp_pm (
		tenant_id, tiepm_id, tiepp_id, rel_typ_id, relation_date_debut, relation_date_fin
	) VALUES ($1, $2, $3, $4, $5, $6)`
)

var ErrUnknownRefTable = errors.New("unknown reference table")

// refColumns whitelists the tables a reference may point into, with their id column.
var refColumns = map[tiers.RefTable]string{
	tiers.RefBuildings:       "id",
	tiers.RefLegalForms:      "id",
	tiers.RefPrescribers:     "id",
	tiers.RefPriorSituations: "id",
	tiers.RefRelationTypes:   "id",
	tiers.RefStudyLevels:     "id",
	tiers.RefSectors:         "id",
	tiers.RefFormulas:        "id",
	tiers.RefPhysicalPersons: "tiepp_id",
}

type TiersRepository struct{}

func NewTiersRepository() tiers.Repository {
	return &TiersRepository{}
}

func (r *TiersRepository) ExistsPhysicalPerson(ctx context.Context, key tiers.PersonKey) (bool, error) {
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, physicalPersonExistsQuery, tenantID, key.FirstName, key.Surname).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check physical person")
	}
	return exists, nil
}

func (r *TiersRepository) ExistsLegalEntity(ctx context.Context, name string) (bool, error) {
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, legalEntityExistsQuery, tenantID, name).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check legal entity")
	}
	return exists, nil
}

func (r *TiersRepository) FindExistingPhysicalPersons(ctx context.Context, keys []tiers.PersonKey) ([]tiers.PersonKey, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return nil, err
	}
	firstNames := make([]string, len(keys))
	surnames := make([]string, len(keys))
	for i, k := range keys {
		firstNames[i] = k.FirstName
		surnames[i] = k.Surname
	}

	rows, err := tx.Query(ctx, findExistingPhysicalPersonsQuery, tenantID, firstNames, surnames)
	if err != nil {
		return nil, errors.Wrap(err, "find existing physical persons")
	}
	defer rows.Close()

	var out []tiers.PersonKey
	for rows.Next() {
		var k tiers.PersonKey
		if err := rows.Scan(&k.FirstName, &k.Surname); err != nil {
			return nil, errors.Wrap(err, "scan physical person key")
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *TiersRepository) FindExistingLegalEntities(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, findExistingLegalEntitiesQuery, tenantID, names)
	if err != nil {
		return nil, errors.Wrap(err, "find existing legal entities")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan legal entity name")
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// MissingReferences checks every referenced table in one batch. Foreign keys
// only compare ids, so this is what keeps a payload from pointing into
// another tenant's rows.
func (r *TiersRepository) MissingReferences(ctx context.Context, refs []tiers.Reference) ([]tiers.Reference, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	var tables []tiers.RefTable
	ids := map[tiers.RefTable][]int64{}
	for _, ref := range refs {
		if _, ok := refColumns[ref.Table]; !ok {
			return nil, errors.Wrapf(ErrUnknownRefTable, "%q", string(ref.Table))
		}
		if _, seen := ids[ref.Table]; !seen {
			tables = append(tables, ref.Table)
		}
		ids[ref.Table] = append(ids[ref.Table], ref.ID)
	}

	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return nil, err
	}
	batch := &pgx.Batch{}
	for _, t := range tables {
		q := fmt.Sprintf(selectTenantRefsQuery, refColumns[t], pgx.Identifier{string(t)}.Sanitize())
		batch.Queue(q, tenantID, ids[t])
	}

	br := tx.SendBatch(ctx, batch)
	found := make(map[tiers.RefTable]map[int64]struct{}, len(tables))
	for _, t := range tables {
		got, err := readIDs(br)
		if err != nil {
			_ = br.Close()
			return nil, errors.Wrapf(err, "check %s references", t)
		}
		found[t] = got
	}
	if err := br.Close(); err != nil {
		return nil, errors.Wrap(err, "check references")
	}

	var missing []tiers.Reference
	for _, ref := range refs {
		if _, ok := found[ref.Table][ref.ID]; !ok {
			missing = append(missing, ref)
		}
	}
	return missing, nil
}

func readIDs(br pgx.BatchResults) (map[int64]struct{}, error) {
	rows, err := br.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]struct{}{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (r *TiersRepository) CreatePhysicalPerson(ctx context.Context, p tiers.PhysicalPerson) (int64, error) {
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, insertPhysicalPersonQuery, physicalPersonArgs(toDBPhysicalPerson(tenantID, p))...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert physical person")
	}
	return id, nil
}

func (r *TiersRepository) CreateLegalEntity(ctx context.Context, e tiers.LegalEntity) (int64, error) {
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, insertLegalEntityQuery, legalEntityArgs(toDBLegalEntity(tenantID, e))...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert legal entity")
	}
	return id, nil
}

func (r *TiersRepository) CreatePhysicalPersons(ctx context.Context, ps []tiers.PhysicalPerson) ([]int64, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return nil, err
	}
	batch := &pgx.Batch{}
	for _, p := range ps {
		batch.Queue(insertPhysicalPersonQuery, physicalPersonArgs(toDBPhysicalPerson(tenantID, p))...)
	}
	ids, err := collectIDs(ctx, tx, batch)
	if err != nil {
		return nil, errors.Wrap(err, "insert physical persons")
	}
	return ids, nil
}

func (r *TiersRepository) CreateLegalEntities(ctx context.Context, es []tiers.LegalEntity) ([]int64, error) {
	if len(es) == 0 {
		return nil, nil
	}
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return nil, err
	}
	batch := &pgx.Batch{}
	for _, e := range es {
		batch.Queue(insertLegalEntityQuery, legalEntityArgs(toDBLegalEntity(tenantID, e))...)
	}
	ids, err := collectIDs(ctx, tx, batch)
	if err != nil {
		return nil, errors.Wrap(err, "insert legal entities")
	}
	return ids, nil
}

// CreateDependents queues every dependent insert into one batch: they are all
// sent before any result is awaited, then drained in order. The first failure
// is returned and the caller's transaction must be rolled back.
func (r *TiersRepository) CreateDependents(ctx context.Context, d tiers.Dependents) error {
	if d.Len() == 0 {
		return nil
	}
	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, p := range d.Projects {
		m := toDBProject(tenantID, p)
		batch.Queue(insertProjectQuery, m.TenantID, m.TiersPPID, m.Activite, m.EffectifPrevu, m.FormeJuridiqueID, m.DateDebut)
	}
	for _, w := range d.Wishes {
		m := toDBAccommodationWish(tenantID, w)
		batch.Queue(insertAccommodationWishQuery, m.TenantID, m.TiersPPID, m.FormuleID, m.Surface, m.DateEntree)
	}
	for _, f := range d.PersonFormulas {
		m := toDBFormulaAssignment(tenantID, f)
		batch.Queue(insertPersonFormulaQuery, m.TenantID, m.OwnerID, m.FormuleID, m.DateDebut, m.DateFin)
	}
	for _, f := range d.EntityFormulas {
		m := toDBFormulaAssignment(tenantID, f)
		batch.Queue(insertEntityFormulaQuery, m.TenantID, m.OwnerID, m.FormuleID, m.DateDebut, m.DateFin)
	}
	for _, rel := range d.Relations {
		m := toDBRelation(tenantID, rel)
		batch.Queue(insertRelationQuery, m.TenantID, m.TiersPMID, m.TiersPPID, m.RelTypID, m.RelationDateDebut, m.RelationDateFin)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return errors.Wrapf(err, "insert dependent %d/%d", i+1, batch.Len())
		}
	}
	return br.Close()
}

func collectIDs(ctx context.Context, tx repo.Tx, batch *pgx.Batch) ([]int64, error) {
	br := tx.SendBatch(ctx, batch)
	ids := make([]int64, batch.Len())
	for i := range ids {
		if err := br.QueryRow().Scan(&ids[i]); err != nil {
			_ = br.Close()
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
	}
	if err := br.Close(); err != nil {
		return nil, err
	}
	return ids, nil
}

func physicalPersonArgs(m models.PhysicalPerson) []any {
	return []any{
		m.TenantID, m.BatimentID, m.Civilite, m.Nom, m.Prenom, m.NomNaissance, m.DateNaissance,
		m.Email, m.Telephone, m.Adresse, m.CodePostal, m.Ville, m.NiveauEtudeID,
		m.SituationAnterieureID, m.PrescripteurID, m.PremierContactDate,
		m.PremierContactHeure, m.CreatedBy, m.CreatedAt,
	}
}

func legalEntityArgs(m models.LegalEntity) []any {
	return []any{
		m.TenantID, m.BatimentID, m.RaisonSociale, m.FormeJuridiqueID, m.SecteurActiviteID,
		m.Siret, m.Email, m.Telephone, m.Adresse, m.CodePostal, m.Ville, m.DateCreation,
		m.CreatedBy, m.CreatedAt,
	}
}

func txAndTenant(ctx context.Context) (repo.Tx, uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, uuid.Nil, errors.Wrap(err, "tenant scope")
	}
	return tx, tenantID, nil
}
