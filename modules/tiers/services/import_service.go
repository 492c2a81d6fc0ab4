package services

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/lookup"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
	"github.com/iota-uz/iota-facility/pkg/composables"
	"github.com/iota-uz/iota-facility/pkg/eventbus"
)

// WorkbookReader parses an uploaded file into the sheets the import knows.
type WorkbookReader func(r io.Reader) (importsheet.Workbook, error)

type ImportOptions struct {
	// DryRun performs every check and insert, then rolls back.
	DryRun bool
	// MaxRowsPerSheet caps data rows per sheet; zero means unlimited.
	MaxRowsPerSheet int
}

var errDryRun = errors.New("dry run rollback")

// ImportService ingests a multi-sheet workbook in one transaction: either
// every row of every sheet is persisted or nothing is.
type ImportService struct {
	repo      tiers.Repository
	lookups   lookup.Repository
	read      WorkbookReader
	publisher eventbus.EventBus
	inTx      TxRunner
}

func NewImportService(
	repo tiers.Repository,
	lookups lookup.Repository,
	read WorkbookReader,
	publisher eventbus.EventBus,
	opts ...Option,
) *ImportService {
	o := buildOptions(opts)
	return &ImportService{
		repo:      repo,
		lookups:   lookups,
		read:      read,
		publisher: publisher,
		inTx:      o.inTx,
	}
}

// ImportFile parses r before any database work and imports the result.
func (s *ImportService) ImportFile(ctx context.Context, r io.Reader, opts ImportOptions) (importsheet.Summary, error) {
	wb, err := s.read(r)
	if err != nil {
		recordImport(err, opts.DryRun)
		return importsheet.Summary{}, err
	}
	return s.Import(ctx, wb, opts)
}

func (s *ImportService) Import(ctx context.Context, wb importsheet.Workbook, opts ImportOptions) (importsheet.Summary, error) {
	var summary importsheet.Summary
	err := s.inTx(ctx, func(txCtx context.Context) error {
		var err error
		if summary, err = s.run(txCtx, wb, opts); err != nil {
			return err
		}
		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		err = nil
	}
	recordImport(err, opts.DryRun)
	if err != nil {
		return importsheet.Summary{}, err
	}

	summary.DryRun = opts.DryRun
	if !opts.DryRun {
		recordCreated(tiers.KindPhysicalPerson, summary.PhysicalPersons)
		recordCreated(tiers.KindLegalEntity, summary.LegalEntities)
		s.publishImported(ctx, summary)
	}
	composables.UseLogger(ctx).WithFields(logrus.Fields{
		"pp":       summary.PhysicalPersons,
		"projects": summary.Projects,
		"pm":       summary.LegalEntities,
		"rel":      summary.Relations,
		"dry_run":  summary.DryRun,
	}).Info("tiers import finished")
	return summary, nil
}

// run processes the sheets in contract order; later sheets resolve local
// identifiers recorded by earlier ones.
func (s *ImportService) run(ctx context.Context, wb importsheet.Workbook, opts ImportOptions) (importsheet.Summary, error) {
	var summary importsheet.Summary

	tables, err := s.lookups.Load(ctx, lookup.AllTables...)
	if err != nil {
		return summary, err
	}
	links := importsheet.NewIdentityLinks()
	mapper := importsheet.NewMapper(tables, links)
	actor := actorID(ctx)

	for _, name := range importsheet.SheetOrder {
		sheet, ok := wb.Sheet(name)
		if !ok {
			continue
		}
		if err := importsheet.CheckRowLimit(sheet, opts.MaxRowsPerSheet); err != nil {
			return summary, err
		}

		var n int
		switch name {
		case importsheet.SheetPhysicalPersons:
			n, err = s.importPhysicalPersons(ctx, sheet, mapper, links, actor)
			summary.PhysicalPersons = n
		case importsheet.SheetProjects:
			n, err = s.importProjects(ctx, sheet, mapper)
			summary.Projects = n
		case importsheet.SheetLegalEntities:
			n, err = s.importLegalEntities(ctx, sheet, mapper, links, actor)
			summary.LegalEntities = n
		case importsheet.SheetRelations:
			n, err = s.importRelations(ctx, sheet, mapper)
			summary.Relations = n
		}
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (s *ImportService) importPhysicalPersons(
	ctx context.Context,
	sheet importsheet.Sheet,
	mapper *importsheet.Mapper,
	links *importsheet.IdentityLinks,
	actor *uint,
) (int, error) {
	records, err := importsheet.MapSheet(sheet, mapper.PhysicalPerson)
	if err != nil || len(records) == 0 {
		return 0, err
	}
	if err := importsheet.CheckLocalIDs(sheet.Name, records, importsheet.PhysicalPersonRecord.LocalRef); err != nil {
		return 0, err
	}

	keys := make([]tiers.PersonKey, 0, len(records))
	seen := make(map[tiers.PersonKey]struct{}, len(records))
	for _, rec := range records {
		k := rec.Person.Key()
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	existing, err := s.repo.FindExistingPhysicalPersons(ctx, keys)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		taken := make(map[tiers.PersonKey]struct{}, len(existing))
		for _, k := range existing {
			taken[k] = struct{}{}
		}
		dup := &importsheet.DuplicateRowsError{Sheet: sheet.Name}
		named := map[tiers.PersonKey]struct{}{}
		for _, rec := range records {
			k := rec.Person.Key()
			if _, ok := taken[k]; !ok {
				continue
			}
			dup.Rows = append(dup.Rows, rec.Row)
			if _, ok := named[k]; !ok {
				named[k] = struct{}{}
				dup.Names = append(dup.Names, k.String())
			}
		}
		return 0, dup
	}

	people := make([]tiers.PhysicalPerson, len(records))
	for i, rec := range records {
		people[i] = rec.Person
		people[i].CreatedBy = actor
	}
	ids, err := s.repo.CreatePhysicalPersons(ctx, people)
	if err != nil {
		return 0, err
	}

	deps := tiers.Dependents{PersonFormulas: make([]tiers.FormulaAssignment, len(records))}
	for i, rec := range records {
		links.Record(importsheet.Persons, rec.LocalID, ids[i])
		deps.PersonFormulas[i] = rec.Formula
		deps.PersonFormulas[i].OwnerID = ids[i]
	}
	if err := s.repo.CreateDependents(ctx, deps); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *ImportService) importProjects(ctx context.Context, sheet importsheet.Sheet, mapper *importsheet.Mapper) (int, error) {
	projects, err := importsheet.MapSheet(sheet, mapper.Project)
	if err != nil || len(projects) == 0 {
		return 0, err
	}
	if err := s.repo.CreateDependents(ctx, tiers.Dependents{Projects: projects}); err != nil {
		return 0, err
	}
	return len(projects), nil
}

func (s *ImportService) importLegalEntities(
	ctx context.Context,
	sheet importsheet.Sheet,
	mapper *importsheet.Mapper,
	links *importsheet.IdentityLinks,
	actor *uint,
) (int, error) {
	records, err := importsheet.MapSheet(sheet, mapper.LegalEntity)
	if err != nil || len(records) == 0 {
		return 0, err
	}
	if err := importsheet.CheckLocalIDs(sheet.Name, records, importsheet.LegalEntityRecord.LocalRef); err != nil {
		return 0, err
	}

	names := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		n := rec.Entity.Key()
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	existing, err := s.repo.FindExistingLegalEntities(ctx, names)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		taken := make(map[string]struct{}, len(existing))
		for _, n := range existing {
			taken[n] = struct{}{}
		}
		dup := &importsheet.DuplicateRowsError{Sheet: sheet.Name}
		named := map[string]struct{}{}
		for _, rec := range records {
			n := rec.Entity.Key()
			if _, ok := taken[n]; !ok {
				continue
			}
			dup.Rows = append(dup.Rows, rec.Row)
			if _, ok := named[n]; !ok {
				named[n] = struct{}{}
				dup.Names = append(dup.Names, n)
			}
		}
		return 0, dup
	}

	entities := make([]tiers.LegalEntity, len(records))
	for i, rec := range records {
		entities[i] = rec.Entity
		entities[i].CreatedBy = actor
	}
	ids, err := s.repo.CreateLegalEntities(ctx, entities)
	if err != nil {
		return 0, err
	}

	deps := tiers.Dependents{EntityFormulas: make([]tiers.FormulaAssignment, len(records))}
	for i, rec := range records {
		links.Record(importsheet.Entities, rec.LocalID, ids[i])
		deps.EntityFormulas[i] = rec.Formula
		deps.EntityFormulas[i].OwnerID = ids[i]
	}
	if err := s.repo.CreateDependents(ctx, deps); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *ImportService) importRelations(ctx context.Context, sheet importsheet.Sheet, mapper *importsheet.Mapper) (int, error) {
	relations, err := importsheet.MapSheet(sheet, mapper.Relation)
	if err != nil || len(relations) == 0 {
		return 0, err
	}
	if err := s.repo.CreateDependents(ctx, tiers.Dependents{Relations: relations}); err != nil {
		return 0, err
	}
	return len(relations), nil
}

func (s *ImportService) publishImported(ctx context.Context, summary importsheet.Summary) {
	if s.publisher == nil {
		return
	}
	tenantID, _ := composables.UseTenantID(ctx)
	s.publisher.Publish(&importsheet.ImportedEvent{
		TenantID: tenantID,
		ActorID:  actorID(ctx),
		Summary:  summary,
	})
}
