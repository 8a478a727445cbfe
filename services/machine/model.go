package machine

import (
	"time"

	"gorm.io/datatypes"
)

// MachineModel is a catalog entry describing a machine type.
type MachineModel struct {
	ID           string         `gorm:"column:id;primaryKey"`
	TenantID     string         `gorm:"column:tenant_id;index;not null"`
	Name         string         `gorm:"column:name;not null"`
	Manufacturer string         `gorm:"column:manufacturer;not null"`
	Brand        string         `gorm:"column:brand;not null"`
	Year         float64        `gorm:"column:year"`
	Properties   datatypes.JSON `gorm:"column:properties"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

// Machine is a physical unit of a MachineModel installed at a Location.
type Machine struct {
	ID         string         `gorm:"column:id;primaryKey"`
	TenantID   string         `gorm:"column:tenant_id;index;not null"`
	ModelID    string         `gorm:"column:model_id;index;not null"`
	LocationID string         `gorm:"column:location_id;index;not null"`
	Name       string         `gorm:"column:name"`
	Properties datatypes.JSON `gorm:"column:properties"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}
