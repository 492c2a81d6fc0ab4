package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/lookup"
)

func TestLookupRepository_Load_BatchesEveryTable(t *testing.T) {
	tenantID := uuid.New()
	results := okBatch()
	results.rows = [][][]any{
		{{int64(1), "Pépinière Nord"}, {int64(2), "Pépinière Sud"}},
		{{int64(7), "Coworking"}, {int64(8), " Coworking "}},
	}
	tx := &stubTx{
		sendBatchFunc: func(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
			require.Equal(t, 2, b.Len())
			require.Contains(t, b.QueuedQueries[0].SQL, `FROM "batiments"`)
			require.Contains(t, b.QueuedQueries[1].SQL, `FROM "formules"`)
			require.Equal(t, []any{tenantID}, b.QueuedQueries[0].Arguments)
			return results
		},
	}

	tables, err := NewLookupRepository().Load(tenantCtx(tenantID, tx), lookup.Buildings, lookup.Formulas)
	require.NoError(t, err)
	require.True(t, results.closed)

	id, ok := tables.Resolve(lookup.Buildings, "Pépinière Sud")
	require.True(t, ok)
	require.Equal(t, int64(2), id)

	id, ok = tables.Resolve(lookup.Formulas, "Coworking")
	require.True(t, ok)
	require.Equal(t, int64(7), id)
}

func TestLookupRepository_Load_DefaultsToAllTables(t *testing.T) {
	var queued int
	tx := &stubTx{
		sendBatchFunc: func(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
			queued = b.Len()
			return okBatch()
		},
	}

	tables, err := NewLookupRepository().Load(tenantCtx(uuid.New(), tx))
	require.NoError(t, err)
	require.Equal(t, len(lookup.AllTables), queued)
	require.Len(t, tables, len(lookup.AllTables))
}

func TestLookupRepository_Load_RejectsUnknownTable(t *testing.T) {
	_, err := NewLookupRepository().Load(tenantCtx(uuid.New(), &stubTx{}), lookup.Table("users; DROP TABLE x"))
	require.ErrorIs(t, err, ErrUnknownLookupTable)
}

func TestLookupRepository_Load_PropagatesQueryError(t *testing.T) {
	results := okBatch()
	results.failAt = 1
	tx := &stubTx{
		sendBatchFunc: func(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return results },
	}

	_, err := NewLookupRepository().Load(tenantCtx(uuid.New(), tx), lookup.Buildings, lookup.Sectors)
	require.Error(t, err)
	require.Contains(t, err.Error(), "load secteurs_activite")
	require.True(t, results.closed)
}
