package location

import (
	"time"
)

// Location is a node in a tenant's site tree. Path is the slash-joined chain
// of ancestor names ending in this node's name; machine imports resolve
// locations by exact Path match.
type Location struct {
	ID          string    `gorm:"column:id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id;index;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Icon        string    `gorm:"column:icon"`
	ParentID    *string   `gorm:"column:parent_id;index"`
	Path        string    `gorm:"column:path;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// BuildPath returns the materialized path for a location under parentPath.
func BuildPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}
