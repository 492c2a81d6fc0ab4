package modules

import (
	"github.com/iota-uz/iota-facility/modules/tiers"
	"github.com/iota-uz/iota-facility/pkg/application"
)

var BuiltInModules = []application.Module{
	tiers.NewModule(nil),
}

func Load(app application.Application, modules ...application.Module) error {
	for _, module := range modules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
