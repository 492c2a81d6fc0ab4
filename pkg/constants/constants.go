package constants

import (
	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/iota-facility/pkg/serrors"
)

type ContextKey string

const (
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	TenantIDKey  ContextKey = "tenantID"
	UserIDKey    ContextKey = "userID"
	LoggerKey    ContextKey = "logger"
)

const DateFormat = "2006-01-02"

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(serrors.JSONTagName)
	return v
}
