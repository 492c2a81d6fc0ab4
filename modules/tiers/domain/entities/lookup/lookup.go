package lookup

import (
	"context"
	"strings"
)

// Table is a tenant-scoped reference table resolved by display name.
type Table string

const (
	Buildings       Table = "batiments"
	LegalForms      Table = "formes_juridiques"
	Prescribers     Table = "prescripteurs"
	PriorSituations Table = "situations_anterieures"
	RelationTypes   Table = "types_relations"
	StudyLevels     Table = "niveaux_etudes"
	Sectors         Table = "secteurs_activite"
	Formulas        Table = "formules"
)

// AllTables lists every table an import resolves names against.
var AllTables = []Table{
	Buildings,
	LegalForms,
	Prescribers,
	PriorSituations,
	RelationTypes,
	StudyLevels,
	Sectors,
	Formulas,
}

func (t Table) Valid() bool {
	for _, known := range AllTables {
		if t == known {
			return true
		}
	}
	return false
}

type Row struct {
	ID   int64
	Name string
}

// Index maps a trimmed display name to its id.
type Index map[string]int64

// BuildIndex folds rows into an Index. When two rows share a name the first
// one wins; blank names are skipped.
func BuildIndex(rows []Row) Index {
	idx := make(Index, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		if _, taken := idx[name]; taken {
			continue
		}
		idx[name] = r.ID
	}
	return idx
}

func (i Index) Resolve(name string) (int64, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	id, ok := i[name]
	return id, ok
}

// Tables holds one Index per reference table for the duration of an import.
type Tables map[Table]Index

func (t Tables) Resolve(table Table, name string) (int64, bool) {
	idx, ok := t[table]
	if !ok {
		return 0, false
	}
	return idx.Resolve(name)
}

type Repository interface {
	// Load reads every requested table for the tenant in ctx, ordered by id.
	Load(ctx context.Context, tables ...Table) (Tables, error)
}
