package composables

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/iota-facility/pkg/constants"
)

// InTenantTx joins the transaction already carried by ctx, or opens a new one
// scoped to the tenant. A new transaction is committed only when fn returns nil.
func InTenantTx(ctx context.Context, fn func(context.Context) error) error {
	if existing, ok := ctx.Value(constants.TxKey).(pgx.Tx); ok && existing != nil {
		if err := ApplyTenantRLS(ctx, existing); err != nil {
			return err
		}
		return fn(ctx)
	}

	pool, err := UsePool(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	return runInTx(ctx, tx, fn)
}
