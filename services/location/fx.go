package location

import (
	"go.uber.org/fx"
)

var Module = fx.Module("location.service",
	fx.Provide(
		NewRepository,
	),
)
