package importsheet

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorPrefix starts every user-facing import failure message.
const ErrorPrefix = "Erreur:"

type Reason string

const (
	ReasonRequired       Reason = "champ obligatoire manquant"
	ReasonUnresolved     Reason = "valeur inconnue dans les tables de référence"
	ReasonInvalidDate    Reason = "date invalide"
	ReasonInvalidTime    Reason = "heure invalide, format attendu HH:MM"
	ReasonInvalidNumber  Reason = "nombre invalide"
	ReasonUnknownLocalID Reason = "identifiant inconnu dans la feuille de référence"
	ReasonMissingColumn  Reason = "colonne obligatoire absente"
	ReasonTooManyRows    Reason = "nombre maximal de lignes dépassé"
	ReasonTooLong        Reason = "valeur trop longue"
	ReasonDuplicateID    Reason = "identifiant déjà utilisé dans la feuille"
)

// RowError is a validation failure tied to one worksheet row. Value carries
// the offending cell content when it helps the user fix the file.
type RowError struct {
	Sheet  string
	Row    int
	Field  string
	Reason Reason
	Value  string
}

func (e *RowError) Error() string {
	msg := fmt.Sprintf("%s feuille %q, ligne %d, colonne %q : %s", ErrorPrefix, e.Sheet, e.Row, e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (%q)", e.Value)
	}
	return msg
}

// DuplicateRowsError lists every row of a sheet whose natural key already
// exists in the tenant.
type DuplicateRowsError struct {
	Sheet string
	Rows  []int
	Names []string
}

func (e *DuplicateRowsError) Error() string {
	rows := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf(
		"%s feuille %q, tiers déjà existants aux lignes %s : %s",
		ErrorPrefix, e.Sheet, strings.Join(rows, ", "), strings.Join(e.Names, ", "),
	)
}

// FileError reports an upload that cannot be read as a workbook.
type FileError struct {
	Cause error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s fichier illisible : %v", ErrorPrefix, e.Cause)
}

func (e *FileError) Unwrap() error { return e.Cause }
