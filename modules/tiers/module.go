package tiers

import (
	"embed"

	"github.com/iota-uz/iota-facility/modules/tiers/handlers"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/persistence"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/spreadsheet"
	"github.com/iota-uz/iota-facility/modules/tiers/presentation/controllers"
	"github.com/iota-uz/iota-facility/modules/tiers/services"
	"github.com/iota-uz/iota-facility/pkg/application"
	"github.com/iota-uz/iota-facility/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

type ModuleOptions struct {
	// Conf defaults to configuration.Use().
	Conf *configuration.Configuration
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	conf := m.options.Conf
	if conf == nil {
		conf = configuration.Use()
	}

	app.Migrations().RegisterSchema(&migrationFiles)

	tiersRepo := persistence.NewTiersRepository()
	app.RegisterServices(
		services.NewTiersService(tiersRepo, app.EventPublisher()),
		services.NewImportService(
			tiersRepo,
			persistence.NewLookupRepository(),
			spreadsheet.ReadWorkbook,
			app.EventPublisher(),
		),
	)
	app.RegisterControllers(
		controllers.NewTiersAPIController(app, controllers.APIOptions{
			MaxUploadSize:   conf.MaxUploadSize,
			MaxUploadMemory: conf.MaxUploadMemory,
			MaxRowsPerSheet: conf.TiersImport.MaxRowsPerSheet,
			RequestIDHeader: conf.RequestIDHeader,
			TenantIDHeader:  conf.TenantIDHeader,
			UserIDHeader:    conf.UserIDHeader,
		}),
	)
	handlers.RegisterAuditHandlers(app)
	return nil
}

func (m *Module) Name() string {
	return "tiers"
}
