package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-facility/pkg/constants"
)

var (
	ErrNoTenantID = errors.New("no tenant id found in context")
	ErrNoUserID   = errors.New("no user id found in context")
)

// WithTenantID scopes ctx to the tenant (owning company) resolved by the auth layer.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return tenantID, nil
}

// WithUserID attaches the verified actor id supplied by the auth layer.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, constants.UserIDKey, userID)
}

func UseUserID(ctx context.Context) (uint, error) {
	userID, ok := ctx.Value(constants.UserIDKey).(uint)
	if !ok {
		return 0, ErrNoUserID
	}
	return userID, nil
}
