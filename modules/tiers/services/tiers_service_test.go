package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/tierstest"
	"github.com/iota-uz/iota-facility/pkg/composables"
	"github.com/iota-uz/iota-facility/pkg/eventbus"
)

func actorCtx(tenantID uuid.UUID) context.Context {
	return composables.WithUserID(composables.WithTenantID(context.Background(), tenantID), 12)
}

func personDTO(firstName, surname string) *tiers.CreatePhysicalPersonDTO {
	dto := &tiers.CreatePhysicalPersonDTO{}
	dto.BuildingID = 1
	dto.FirstName = firstName
	dto.Surname = surname
	dto.Email = "contact@example.com"
	dto.Activity = "Boulangerie"
	dto.FormulaID = 4
	dto.FormulaStartDate = "2024-09-01"
	return dto
}

func entityFields(name string) tiers.LegalEntityFields {
	return tiers.LegalEntityFields{
		BuildingID:       1,
		Name:             name,
		FormulaID:        5,
		FormulaStartDate: "2024-09-01",
	}
}

func TestTiersService_CreatePhysicalPerson(t *testing.T) {
	store := tierstest.NewStore()
	store.NextID = 41
	bus := eventbus.NewEventPublisher(nil)
	var events []*tiers.CreatedEvent
	bus.Subscribe(func(e *tiers.CreatedEvent) { events = append(events, e) })

	tenantID := uuid.New()
	svc := NewTiersService(store, bus, WithTxRunner(store.RunTx))

	id, err := svc.CreatePhysicalPerson(actorCtx(tenantID), personDTO("Jean", "Dupont"))
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.Equal(t, 1, store.Commits)

	require.Len(t, store.Committed.Persons, 1)
	require.Equal(t, uint(12), *store.Committed.Persons[0].CreatedBy)

	deps := store.Committed.Deps
	require.Len(t, deps.Projects, 1)
	require.Len(t, deps.Wishes, 1)
	require.Len(t, deps.PersonFormulas, 1)
	require.Equal(t, id, deps.Projects[0].PhysicalPersonID)
	require.Equal(t, id, deps.Wishes[0].PhysicalPersonID)
	require.Equal(t, id, deps.PersonFormulas[0].OwnerID)

	require.Len(t, events, 1)
	require.Equal(t, tenantID, events[0].TenantID)
	require.Equal(t, tiers.KindPhysicalPerson, events[0].Kind)
	require.Equal(t, id, events[0].ID)
}

func TestTiersService_CreatePhysicalPerson_DuplicateIsStable(t *testing.T) {
	store := tierstest.NewStore()
	store.Committed.Persons = []tiers.PhysicalPerson{{ID: 1, FirstName: "Jean", Surname: "Dupont"}}
	bus := eventbus.NewEventPublisher(nil)
	published := 0
	bus.Subscribe(func(e *tiers.CreatedEvent) { published++ })
	svc := NewTiersService(store, bus, WithTxRunner(store.RunTx))

	for i := 0; i < 2; i++ {
		_, err := svc.CreatePhysicalPerson(actorCtx(uuid.New()), personDTO("Jean", "Dupont"))
		require.ErrorIs(t, err, tiers.ErrPhysicalPersonExists)

		var dup *tiers.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, tiers.KindPhysicalPerson, dup.Kind)
	}

	require.Equal(t, 2, store.Rollbacks)
	require.Len(t, store.Committed.Persons, 1)
	require.Zero(t, store.Committed.Deps.Len())
	require.Zero(t, published)
}

func TestTiersService_CreatePhysicalPerson_FanOutFailureRollsBackRoot(t *testing.T) {
	store := tierstest.NewStore()
	store.FailDependents = errors.New("formules_pp: violates foreign key")
	svc := NewTiersService(store, nil, WithTxRunner(store.RunTx))

	_, err := svc.CreatePhysicalPerson(actorCtx(uuid.New()), personDTO("Marie", "Curie"))
	require.ErrorIs(t, err, store.FailDependents)
	require.Empty(t, store.Committed.Persons)
	require.Equal(t, 1, store.Rollbacks)
}

func TestTiersService_CreateLegalEntity_WithRelations(t *testing.T) {
	store := tierstest.NewStore()
	store.NextID = 99
	svc := NewTiersService(store, nil, WithTxRunner(store.RunTx))

	dto := &tiers.CreateLegalEntityDTO{
		LegalEntityFields: entityFields("ACME"),
		Relations: []tiers.RelationDTO{
			{PhysicalPersonID: 3},
			{PhysicalPersonID: 4},
		},
	}
	id, err := svc.CreateLegalEntity(actorCtx(uuid.New()), dto)
	require.NoError(t, err)
	require.Equal(t, int64(100), id)

	deps := store.Committed.Deps
	require.Len(t, deps.Relations, 2)
	require.Equal(t, id, deps.Relations[0].LegalEntityID)
	require.Equal(t, int64(4), deps.Relations[1].PhysicalPersonID)
	require.Len(t, deps.EntityFormulas, 1)
	require.Equal(t, id, deps.EntityFormulas[0].OwnerID)
}

func TestTiersService_CreateLegalEntity_RejectsOtherTenantsPerson(t *testing.T) {
	store := tierstest.NewStore()
	store.MarkForeign(tiers.RefPhysicalPersons, 4)
	svc := NewTiersService(store, nil, WithTxRunner(store.RunTx))

	dto := &tiers.CreateLegalEntityDTO{
		LegalEntityFields: entityFields("ACME"),
		Relations: []tiers.RelationDTO{
			{PhysicalPersonID: 3},
			{PhysicalPersonID: 4},
		},
	}
	_, err := svc.CreateLegalEntity(actorCtx(uuid.New()), dto)
	require.ErrorIs(t, err, tiers.ErrUnknownReference)

	var unknown *tiers.UnknownReferenceError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, []tiers.Reference{
		{Field: "relations[1].tiepp_id", Table: tiers.RefPhysicalPersons, ID: 4},
	}, unknown.Refs)
	require.Empty(t, store.Committed.Entities)
	require.Empty(t, store.Committed.Deps.Relations)
	require.Equal(t, 1, store.Rollbacks)
}

func TestTiersService_CreatePhysicalPerson_RejectsOtherTenantsBuilding(t *testing.T) {
	store := tierstest.NewStore()
	store.MarkForeign(tiers.RefBuildings, 1)
	svc := NewTiersService(store, nil, WithTxRunner(store.RunTx))

	_, err := svc.CreatePhysicalPerson(actorCtx(uuid.New()), personDTO("Jean", "Dupont"))
	require.ErrorIs(t, err, tiers.ErrUnknownReference)
	require.Empty(t, store.Committed.Persons)
}

func TestTiersService_CreateLegalEntity_Duplicate(t *testing.T) {
	store := tierstest.NewStore()
	store.Committed.Entities = []tiers.LegalEntity{{ID: 1, Name: "ACME"}}
	svc := NewTiersService(store, nil, WithTxRunner(store.RunTx))

	_, err := svc.CreateLegalEntity(actorCtx(uuid.New()), &tiers.CreateLegalEntityDTO{LegalEntityFields: entityFields("ACME")})
	require.ErrorIs(t, err, tiers.ErrLegalEntityExists)
	require.Len(t, store.Committed.Entities, 1)
}

func TestTiersService_CreatePhysicalPersonWithEntity(t *testing.T) {
	store := tierstest.NewStore()
	svc := NewTiersService(store, nil, WithTxRunner(store.RunTx))

	rel := int64(8)
	dto := &tiers.CreatePhysicalPersonWithEntityDTO{}
	dto.PhysicalPerson = personDTO("Jean", "Dupont").PhysicalPersonFields
	dto.LegalEntity.LegalEntityFields = entityFields("ACME")
	dto.LegalEntity.RelationTypeID = &rel

	pair, err := svc.CreatePhysicalPersonWithEntity(actorCtx(uuid.New()), dto)
	require.NoError(t, err)
	require.NotZero(t, pair.PhysicalPersonID)
	require.NotZero(t, pair.LegalEntityID)

	deps := store.Committed.Deps
	require.Len(t, deps.Relations, 1)
	require.Equal(t, pair.PhysicalPersonID, deps.Relations[0].PhysicalPersonID)
	require.Equal(t, pair.LegalEntityID, deps.Relations[0].LegalEntityID)
	require.Equal(t, &rel, deps.Relations[0].RelationTypeID)
	require.Len(t, deps.PersonFormulas, 1)
	require.Len(t, deps.EntityFormulas, 1)
	require.Len(t, deps.Projects, 1)
	require.Len(t, deps.Wishes, 1)
}

func TestTiersService_CreatePhysicalPersonWithEntity_ChecksEntityFirst(t *testing.T) {
	store := tierstest.NewStore()
	store.Committed.Persons = []tiers.PhysicalPerson{{ID: 1, FirstName: "Jean", Surname: "Dupont"}}
	store.Committed.Entities = []tiers.LegalEntity{{ID: 2, Name: "ACME"}}
	svc := NewTiersService(store, nil, WithTxRunner(store.RunTx))

	dto := &tiers.CreatePhysicalPersonWithEntityDTO{}
	dto.PhysicalPerson = personDTO("Jean", "Dupont").PhysicalPersonFields
	dto.LegalEntity.LegalEntityFields = entityFields("ACME")

	_, err := svc.CreatePhysicalPersonWithEntity(actorCtx(uuid.New()), dto)
	require.ErrorIs(t, err, tiers.ErrLegalEntityExists)

	store.Committed.Entities = nil
	_, err = svc.CreatePhysicalPersonWithEntity(actorCtx(uuid.New()), dto)
	require.ErrorIs(t, err, tiers.ErrPhysicalPersonExists)
	require.Empty(t, store.Committed.Entities)
}
