package importsheet

import "github.com/google/uuid"

// ImportedEvent is published after an applied import has committed.
type ImportedEvent struct {
	TenantID uuid.UUID
	ActorID  *uint
	Summary  Summary
}
