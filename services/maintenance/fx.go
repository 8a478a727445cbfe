package maintenance

import (
	"go.uber.org/fx"
)

var Module = fx.Module("maintenance.service",
	fx.Provide(
		NewRangeRepository,
		NewOperationRepository,
	),
)
