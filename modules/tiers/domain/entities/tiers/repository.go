package tiers

import "context"

// Repository persists tiers and their dependents. Every method runs on the
// transaction carried by ctx and is scoped to the tenant in ctx.
type Repository interface {
	ExistsPhysicalPerson(ctx context.Context, key PersonKey) (bool, error)
	ExistsLegalEntity(ctx context.Context, name string) (bool, error)
	// FindExistingPhysicalPersons returns the subset of keys already persisted.
	FindExistingPhysicalPersons(ctx context.Context, keys []PersonKey) ([]PersonKey, error)
	// FindExistingLegalEntities returns the subset of names already persisted.
	FindExistingLegalEntities(ctx context.Context, names []string) ([]string, error)
	// MissingReferences returns the references whose id does not exist in the tenant.
	MissingReferences(ctx context.Context, refs []Reference) ([]Reference, error)

	CreatePhysicalPerson(ctx context.Context, p PhysicalPerson) (int64, error)
	CreateLegalEntity(ctx context.Context, e LegalEntity) (int64, error)
	// CreatePhysicalPersons inserts every root in one round trip and returns
	// the generated ids in input order.
	CreatePhysicalPersons(ctx context.Context, ps []PhysicalPerson) ([]int64, error)
	CreateLegalEntities(ctx context.Context, es []LegalEntity) ([]int64, error)
	CreateDependents(ctx context.Context, d Dependents) error
}
