package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/lookup"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/persistence/models"
)

const selectLookupQuery = `SELECT id, nom FROM %s WHERE tenant_id = $1 ORDER BY id`

var ErrUnknownLookupTable = errors.New("unknown lookup table")

type LookupRepository struct{}

func NewLookupRepository() lookup.Repository {
	return &LookupRepository{}
}

// Load reads all requested tables in a single batch round trip.
func (r *LookupRepository) Load(ctx context.Context, tables ...lookup.Table) (lookup.Tables, error) {
	if len(tables) == 0 {
		tables = lookup.AllTables
	}
	for _, t := range tables {
		if !t.Valid() {
			return nil, errors.Wrapf(ErrUnknownLookupTable, "%q", string(t))
		}
	}

	tx, tenantID, err := txAndTenant(ctx)
	if err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, t := range tables {
		batch.Queue(fmt.Sprintf(selectLookupQuery, pgx.Identifier{string(t)}.Sanitize()), tenantID)
	}

	br := tx.SendBatch(ctx, batch)
	out := make(lookup.Tables, len(tables))
	for _, t := range tables {
		rows, err := readLookupRows(br)
		if err != nil {
			_ = br.Close()
			return nil, errors.Wrapf(err, "load %s", t)
		}
		out[t] = lookup.BuildIndex(toDomainLookupRows(rows))
	}
	if err := br.Close(); err != nil {
		return nil, errors.Wrap(err, "load lookups")
	}
	return out, nil
}

func readLookupRows(br pgx.BatchResults) ([]models.LookupRow, error) {
	rows, err := br.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LookupRow
	for rows.Next() {
		var row models.LookupRow
		if err := rows.Scan(&row.ID, &row.Nom); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
