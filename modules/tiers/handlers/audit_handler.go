package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
	"github.com/iota-uz/iota-facility/pkg/application"
)

// AuditHandler writes committed tiers creations and imports to the
// application log.
type AuditHandler struct {
	logger *logrus.Logger
}

func RegisterAuditHandlers(app application.Application) *AuditHandler {
	h := &AuditHandler{logger: app.Logger()}
	app.EventPublisher().Subscribe(h.onCreated)
	app.EventPublisher().Subscribe(h.onImported)
	return h
}

func (h *AuditHandler) onCreated(e *tiers.CreatedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id": e.TenantID,
		"actor_id":  actor(e.ActorID),
		"kind":      e.Kind,
		"tiers_id":  e.ID,
		"name":      e.Name,
	}).Info("tiers created")
}

func (h *AuditHandler) onImported(e *importsheet.ImportedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id": e.TenantID,
		"actor_id":  actor(e.ActorID),
		"pp":        e.Summary.PhysicalPersons,
		"projects":  e.Summary.Projects,
		"pm":        e.Summary.LegalEntities,
		"relations": e.Summary.Relations,
	}).Info("tiers import committed")
}

func actor(id *uint) any {
	if id == nil {
		return nil
	}
	return *id
}
