package services

import (
	"context"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/pkg/composables"
	"github.com/iota-uz/iota-facility/pkg/eventbus"
)

// TiersService creates tiers from direct-entry payloads. Each call runs the
// duplicate check, the root inserts and the dependent fan-out in a single
// transaction.
type TiersService struct {
	repo      tiers.Repository
	publisher eventbus.EventBus
	inTx      TxRunner
}

func NewTiersService(repo tiers.Repository, publisher eventbus.EventBus, opts ...Option) *TiersService {
	o := buildOptions(opts)
	return &TiersService{repo: repo, publisher: publisher, inTx: o.inTx}
}

// CreatePhysicalPerson inserts the person with its project, accommodation
// wish and formula. A person with the same first name and surname in the
// tenant yields a *tiers.DuplicateError.
func (s *TiersService) CreatePhysicalPerson(ctx context.Context, dto *tiers.CreatePhysicalPersonDTO) (int64, error) {
	person := dto.ToEntity()
	person.CreatedBy = actorID(ctx)

	var id int64
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureNewPhysicalPerson(txCtx, person.Key()); err != nil {
			return err
		}
		if err := s.ensureReferences(txCtx, dto.References()); err != nil {
			return err
		}
		var err error
		if id, err = s.repo.CreatePhysicalPerson(txCtx, person); err != nil {
			return err
		}
		return s.repo.CreateDependents(txCtx, dto.Dependents(id))
	})
	if err != nil {
		return 0, err
	}

	recordCreated(tiers.KindPhysicalPerson, 1)
	s.publishCreated(ctx, tiers.KindPhysicalPerson, id, person.Key().String(), person.CreatedBy)
	return id, nil
}

// CreateLegalEntity inserts the entity with its formula and its relations to
// existing physical persons.
func (s *TiersService) CreateLegalEntity(ctx context.Context, dto *tiers.CreateLegalEntityDTO) (int64, error) {
	entity := dto.ToEntity()
	entity.CreatedBy = actorID(ctx)

	var id int64
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureNewLegalEntity(txCtx, entity.Key()); err != nil {
			return err
		}
		if err := s.ensureReferences(txCtx, dto.References()); err != nil {
			return err
		}
		var err error
		if id, err = s.repo.CreateLegalEntity(txCtx, entity); err != nil {
			return err
		}
		return s.repo.CreateDependents(txCtx, dto.Dependents(id))
	})
	if err != nil {
		return 0, err
	}

	recordCreated(tiers.KindLegalEntity, 1)
	s.publishCreated(ctx, tiers.KindLegalEntity, id, entity.Key(), entity.CreatedBy)
	return id, nil
}

type CreatedPair struct {
	PhysicalPersonID int64
	LegalEntityID    int64
}

// CreatePhysicalPersonWithEntity creates a person and an entity linked by a
// relation. The entity is checked for duplicates first.
func (s *TiersService) CreatePhysicalPersonWithEntity(ctx context.Context, dto *tiers.CreatePhysicalPersonWithEntityDTO) (CreatedPair, error) {
	actor := actorID(ctx)
	person := dto.PhysicalPerson.ToEntity()
	person.CreatedBy = actor
	entity := dto.LegalEntity.ToEntity()
	entity.CreatedBy = actor

	var pair CreatedPair
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureNewLegalEntity(txCtx, entity.Key()); err != nil {
			return err
		}
		if err := s.ensureNewPhysicalPerson(txCtx, person.Key()); err != nil {
			return err
		}
		if err := s.ensureReferences(txCtx, dto.References()); err != nil {
			return err
		}
		var err error
		if pair.PhysicalPersonID, err = s.repo.CreatePhysicalPerson(txCtx, person); err != nil {
			return err
		}
		if pair.LegalEntityID, err = s.repo.CreateLegalEntity(txCtx, entity); err != nil {
			return err
		}
		return s.repo.CreateDependents(txCtx, dto.Dependents(pair.PhysicalPersonID, pair.LegalEntityID))
	})
	if err != nil {
		return CreatedPair{}, err
	}

	recordCreated(tiers.KindPhysicalPerson, 1)
	recordCreated(tiers.KindLegalEntity, 1)
	s.publishCreated(ctx, tiers.KindPhysicalPerson, pair.PhysicalPersonID, person.Key().String(), actor)
	s.publishCreated(ctx, tiers.KindLegalEntity, pair.LegalEntityID, entity.Key(), actor)
	return pair, nil
}

func (s *TiersService) ensureNewPhysicalPerson(ctx context.Context, key tiers.PersonKey) error {
	exists, err := s.repo.ExistsPhysicalPerson(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return tiers.NewPhysicalPersonDuplicate(key)
	}
	return nil
}

func (s *TiersService) ensureNewLegalEntity(ctx context.Context, name string) error {
	exists, err := s.repo.ExistsLegalEntity(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return tiers.NewLegalEntityDuplicate(name)
	}
	return nil
}

// ensureReferences rejects ids that do not belong to the tenant in ctx.
func (s *TiersService) ensureReferences(ctx context.Context, refs []tiers.Reference) error {
	missing, err := s.repo.MissingReferences(ctx, refs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &tiers.UnknownReferenceError{Refs: missing}
	}
	return nil
}

func (s *TiersService) publishCreated(ctx context.Context, kind tiers.Kind, id int64, name string, actor *uint) {
	if s.publisher == nil {
		return
	}
	tenantID, _ := composables.UseTenantID(ctx)
	s.publisher.Publish(&tiers.CreatedEvent{
		TenantID: tenantID,
		ActorID:  actor,
		Kind:     kind,
		ID:       id,
		Name:     name,
	})
}
