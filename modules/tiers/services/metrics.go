package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
)

var (
	tiersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tiers",
		Name:      "created_total",
		Help:      "Total number of tiers roots committed broken down by kind (pp, pm).",
	}, []string{"kind"})

	tiersImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tiers",
		Name:      "import_total",
		Help:      "Total number of spreadsheet imports broken down by outcome.",
	}, []string{"outcome"})
)

const (
	outcomeApplied    = "applied"
	outcomeDryRun     = "dry_run"
	outcomeValidation = "validation"
	outcomeDuplicate  = "duplicate"
	outcomeError      = "error"
)

func recordCreated(kind tiers.Kind, n int) {
	if n <= 0 {
		return
	}
	tiersCreated.WithLabelValues(string(kind)).Add(float64(n))
}

func recordImport(err error, dryRun bool) {
	tiersImports.WithLabelValues(importOutcome(err, dryRun)).Inc()
}

func importOutcome(err error, dryRun bool) string {
	var (
		rowErr  *importsheet.RowError
		fileErr *importsheet.FileError
		dupErr  *importsheet.DuplicateRowsError
	)
	switch {
	case err == nil && dryRun:
		return outcomeDryRun
	case err == nil:
		return outcomeApplied
	case errors.As(err, &dupErr):
		return outcomeDuplicate
	case errors.As(err, &rowErr), errors.As(err, &fileErr):
		return outcomeValidation
	default:
		return outcomeError
	}
}
