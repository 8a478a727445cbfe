package tenant

import (
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
	),
)
