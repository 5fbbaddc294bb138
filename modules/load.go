package modules

import (
	"github.com/bookline/console/modules/assignments"
	"github.com/bookline/console/modules/catalog"
	"github.com/bookline/console/pkg/application"
)

// BuiltInModules in registration order: catalog first, since the
// assignments engine resolves inherited defaults through it.
var BuiltInModules = []application.Module{
	catalog.NewModule(),
	assignments.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	for _, module := range mods {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
