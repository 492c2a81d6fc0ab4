package services

import (
	"context"

	"github.com/iota-uz/iota-facility/pkg/composables"
)

// TxRunner runs fn inside one tenant-scoped transaction and commits only when
// fn returns nil.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

type Option func(*options)

type options struct {
	inTx TxRunner
}

func WithTxRunner(r TxRunner) Option {
	return func(o *options) { o.inTx = r }
}

func buildOptions(opts []Option) options {
	o := options{inTx: composables.InTenantTx}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func actorID(ctx context.Context) *uint {
	id, err := composables.UseUserID(ctx)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}
