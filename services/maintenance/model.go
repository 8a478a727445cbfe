package maintenance

import (
	"time"

	"gorm.io/datatypes"
)

type RangeType string

var (
	Preventive RangeType = "preventive"
	Corrective RangeType = "corrective"
)

func (t RangeType) Valid() bool {
	switch t {
	case Preventive, Corrective:
		return true
	default:
		return false
	}
}

type OperationType string

var (
	Text     OperationType = "text"
	Date     OperationType = "date"
	Time     OperationType = "time"
	Datetime OperationType = "datetime"
	Boolean  OperationType = "boolean"
	Number   OperationType = "number"
)

func (t OperationType) Valid() bool {
	switch t {
	case Text, Date, Time, Datetime, Boolean, Number:
		return true
	default:
		return false
	}
}

// MaintenanceRange is a recurring maintenance plan applied to machines.
type MaintenanceRange struct {
	ID          string         `gorm:"column:id;primaryKey"`
	TenantID    string         `gorm:"column:tenant_id;index;not null"`
	Name        string         `gorm:"column:name;not null"`
	Description string         `gorm:"column:description;not null"`
	Type        RangeType      `gorm:"column:type;not null"`
	Frequency   string         `gorm:"column:frequency"`
	DaysOfWeek  datatypes.JSON `gorm:"column:days_of_week"`
	StartDate   string         `gorm:"column:start_date"`
	StartTime   string         `gorm:"column:start_time"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

// Operation is a single checklist step collected during a work order.
type Operation struct {
	ID          string        `gorm:"column:id;primaryKey"`
	TenantID    string        `gorm:"column:tenant_id;index;not null"`
	Name        string        `gorm:"column:name;not null"`
	Description string        `gorm:"column:description;not null"`
	Type        OperationType `gorm:"column:type;not null"`
	CreatedAt   time.Time     `gorm:"column:created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at"`
}
