package handlers

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
	"github.com/iota-uz/iota-facility/pkg/application"
)

func TestAuditHandlers_LogCommittedEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	app := application.New(&application.ApplicationOptions{Logger: logger})
	RegisterAuditHandlers(app)
	require.Equal(t, 2, app.EventPublisher().SubscribersCount())

	actorID := uint(12)
	app.EventPublisher().Publish(&tiers.CreatedEvent{
		TenantID: uuid.New(),
		ActorID:  &actorID,
		Kind:     tiers.KindLegalEntity,
		ID:       7,
		Name:     "ACME",
	})
	app.EventPublisher().Publish(&importsheet.ImportedEvent{
		Summary: importsheet.Summary{PhysicalPersons: 3},
	})

	out := buf.String()
	require.Contains(t, out, `"msg":"tiers created"`)
	require.Contains(t, out, `"name":"ACME"`)
	require.Contains(t, out, `"actor_id":12`)
	require.Contains(t, out, `"msg":"tiers import committed"`)
	require.Contains(t, out, `"pp":3`)
}
