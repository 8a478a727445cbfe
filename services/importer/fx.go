package importer

import (
	"go.uber.org/fx"
)

var Module = fx.Module("importer.service",
	fx.Provide(
		NewJobRepository,
		NewObjectStore,
		NewRunner,
		NewScheduler,
		NewService,
		NewTask,
		NewHandler,
	),
	fx.Invoke(
		RegisterTaskHandlers,
		StartScheduler,
	),
)
