package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-facility/pkg/application"
	"github.com/iota-uz/iota-facility/pkg/configuration"
	"github.com/iota-uz/iota-facility/pkg/httpapi"
	"github.com/iota-uz/iota-facility/pkg/logging"
)

func TestDefault_UnknownRouteIsJSON404(t *testing.T) {
	logger := logging.ConsoleLogger(logrus.PanicLevel)
	app := application.New(&application.ApplicationOptions{Logger: logger})
	conf := &configuration.Configuration{
		CorsOrigins:     "http://localhost:3000",
		RequestIDHeader: "X-Request-ID",
		RealIPHeader:    "X-Real-IP",
	}

	srv, err := Default(&DefaultOptions{Logger: logger, Configuration: conf, Application: app})
	require.NoError(t, err)
	require.NotEmpty(t, app.Middleware())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "NOT_FOUND", body.Code)
}
