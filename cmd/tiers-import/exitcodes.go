package main

import (
	"errors"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// classifyImportError maps an import failure onto the exit code a caller
// script can branch on. Content problems are the operator's to fix.
func classifyImportError(err error) error {
	if err == nil {
		return nil
	}
	var (
		dup     *tiers.DuplicateError
		dupRows *importsheet.DuplicateRowsError
		rowErr  *importsheet.RowError
		fileErr *importsheet.FileError
	)
	switch {
	case errors.As(err, &dup), errors.As(err, &dupRows), errors.As(err, &rowErr), errors.As(err, &fileErr):
		return withCode(exitValidation, err)
	default:
		return withCode(exitDB, err)
	}
}
