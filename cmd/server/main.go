package main

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"maintainops/pkg/config"
	"maintainops/pkg/db"
	"maintainops/pkg/gen"
	"maintainops/pkg/health"
	"maintainops/pkg/logger"
	pkgminio "maintainops/pkg/minio"
	pkgredis "maintainops/pkg/redis"
	"maintainops/pkg/server"
	"maintainops/pkg/task"
	"maintainops/services/importer"
	"maintainops/services/location"
	"maintainops/services/machine"
	"maintainops/services/maintenance"
	"maintainops/services/tenant"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		pkgredis.Module,
		pkgminio.Client,
		gen.Module,
		task.Client,
		task.Server,
		health.Module,

		tenant.Module,
		location.Module,
		machine.Module,
		maintenance.Module,
		importer.Module,

		fx.Provide(importer.ProvideRouter),
		server.Module,

		fx.Invoke(migrate),
	)

	app.Run()
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&tenant.Tenant{},
		&location.Location{},
		&machine.MachineModel{},
		&machine.Machine{},
		&maintenance.MaintenanceRange{},
		&maintenance.Operation{},
		&importer.ImportJob{},
	)
}
