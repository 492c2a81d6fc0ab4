package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/iota-facility/pkg/application"
	"github.com/iota-uz/iota-facility/pkg/configuration"
	"github.com/iota-uz/iota-facility/pkg/constants"
	"github.com/iota-uz/iota-facility/pkg/httpapi"
	"github.com/iota-uz/iota-facility/pkg/middleware"
	"github.com/iota-uz/iota-facility/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	loggerOptions := middleware.DefaultLoggerOptions()
	loggerOptions.RequestIDHeader = conf.RequestIDHeader
	loggerOptions.RealIPHeader = conf.RealIPHeader

	// WithLogger opens the root span, so it must stay first.
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, loggerOptions),

		middleware.TracedMiddleware("database"),
		middleware.Provide(constants.PoolKey, app.DB()),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CorsOriginList()...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
				RealIPHeader:      conf.RealIPHeader,
			}),
		)
	}

	app.RegisterMiddleware(middlewares...)

	serverInstance := server.NewHTTPServer(app, NotFound(), MethodNotAllowed())
	if conf.ShutdownTimeout > 0 {
		serverInstance.ShutdownTimeout = conf.ShutdownTimeout
	}
	return serverInstance, nil
}

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found", nil)
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
}
