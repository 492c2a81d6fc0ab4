package serrors

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestBaseError(t *testing.T) {
	err := NewError("TIERS_PP_EXISTS", "physical person already exists", "Tiers.Errors.PhysicalPersonExists")
	require.Equal(t, "TIERS_PP_EXISTS: physical person already exists", err.Error())
	require.Equal(t, "TIERS_PP_EXISTS", err.Code())

	var base Base
	require.True(t, errors.As(err, &base))
	require.Equal(t, "Tiers.Errors.PhysicalPersonExists", base.LocaleKey())
}

func TestProcessValidatorErrors(t *testing.T) {
	type inner struct {
		Nom string `json:"nom" validate:"required"`
	}
	type Embedded struct {
		Ville string `json:"ville" validate:"required"`
	}
	type payload struct {
		Embedded
		Email string `json:"email" validate:"omitempty,email"`
		Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
		PP    inner  `json:"pp"`
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(JSONTagName)

	errs := ProcessValidatorErrors(v.Struct(payload{Email: "nope", Date: "12/03/2024"}))
	require.Equal(t, "adresse e-mail invalide", errs["email"])
	require.Contains(t, errs["date"], "2006-01-02")
	require.Equal(t, "champ obligatoire", errs["pp.nom"])
	require.Equal(t, "champ obligatoire", errs["ville"])

	require.Equal(t, ValidationErrors{"_": "boom"}, ProcessValidatorErrors(errors.New("boom")))
}
