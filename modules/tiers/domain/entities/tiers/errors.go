package tiers

import (
	"fmt"

	"github.com/iota-uz/iota-facility/pkg/serrors"
)

var (
	ErrPhysicalPersonExists = serrors.NewError(
		"TIERS_PP_EXISTS", "physical person already exists", "Tiers.Errors.PhysicalPersonExists",
	)
	ErrLegalEntityExists = serrors.NewError(
		"TIERS_PM_EXISTS", "legal entity already exists", "Tiers.Errors.LegalEntityExists",
	)
)

// DuplicateError reports a creation refused because the natural key is
// already taken in the tenant.
type DuplicateError struct {
	Kind Kind
	Name string
}

func NewPhysicalPersonDuplicate(key PersonKey) *DuplicateError {
	return &DuplicateError{Kind: KindPhysicalPerson, Name: key.String()}
}

func NewLegalEntityDuplicate(name string) *DuplicateError {
	return &DuplicateError{Kind: KindLegalEntity, Name: name}
}

func (e *DuplicateError) Error() string {
	if e.Kind == KindLegalEntity {
		return fmt.Sprintf("Ce tiers existe déjà : la personne morale %q est déjà enregistrée", e.Name)
	}
	return fmt.Sprintf("Ce tiers existe déjà : la personne physique %q est déjà enregistrée", e.Name)
}

func (e *DuplicateError) Unwrap() error {
	if e.Kind == KindLegalEntity {
		return ErrLegalEntityExists
	}
	return ErrPhysicalPersonExists
}
