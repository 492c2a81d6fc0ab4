package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/iota-facility/pkg/application"
)

const DefaultPath = "/debug/prometheus"

// PrometheusController exposes the gathered metrics on a single GET route.
// Guard, when set, wraps the handler (see middleware.OpsGuard).
type PrometheusController struct {
	path     string
	gatherer prometheus.Gatherer
	guard    mux.MiddlewareFunc
}

type Option func(*PrometheusController)

func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *PrometheusController) { c.gatherer = g }
}

func WithGuard(guard mux.MiddlewareFunc) Option {
	return func(c *PrometheusController) { c.guard = guard }
}

func NewPrometheusController(path string, opts ...Option) application.Controller {
	if path == "" {
		path = DefaultPath
	}
	c := &PrometheusController{path: path, gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	var h http.Handler = promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
	if c.guard != nil {
		h = c.guard(h)
	}
	r.Handle(c.path, h).Methods(http.MethodGet)
}
