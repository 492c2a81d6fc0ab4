package serrors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a JSON field path to a human readable reason.
type ValidationErrors map[string]string

// ProcessValidatorErrors flattens validator output, keyed by the json field
// path relative to the validated struct (e.g. "pp.nom").
func ProcessValidatorErrors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{"_": err.Error()}
	}
	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe.Namespace())] = reason(fe)
	}
	return out
}

// fieldPath drops the root struct name and embedded Go struct names, which
// never appear in the json payload.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i == 0 || part == "" || unicode.IsUpper([]rune(part)[0]) {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, ".")
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return "champ obligatoire"
	case "email":
		return "adresse e-mail invalide"
	case "datetime":
		return fmt.Sprintf("date invalide, format attendu %s", fe.Param())
	case "len":
		return fmt.Sprintf("longueur attendue %s", fe.Param())
	case "gt", "gte", "min":
		return fmt.Sprintf("valeur minimale %s", fe.Param())
	default:
		return fmt.Sprintf("valeur invalide (%s)", fe.Tag())
	}
}

// JSONTagName makes validator report json field names instead of Go names.
func JSONTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
