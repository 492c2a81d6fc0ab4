package tiers

import "github.com/google/uuid"

// CreatedEvent is published once the transaction that created the tiers has committed.
type CreatedEvent struct {
	TenantID uuid.UUID
	ActorID  *uint
	Kind     Kind
	ID       int64
	Name     string
}
