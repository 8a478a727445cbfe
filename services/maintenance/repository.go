package maintenance

import (
	"context"

	"gorm.io/gorm"
)

// RangeRepository describes database operations available for maintenance ranges.
type RangeRepository interface {
	Create(ctx context.Context, mr *MaintenanceRange) error
	List(ctx context.Context, tenantID string) ([]MaintenanceRange, error)
}

// OperationRepository describes database operations available for operations.
type OperationRepository interface {
	Create(ctx context.Context, op *Operation) error
	List(ctx context.Context, tenantID string) ([]Operation, error)
}

type gormRangeRepository struct {
	db *gorm.DB
}

// NewRangeRepository returns a gorm backed RangeRepository implementation.
func NewRangeRepository(db *gorm.DB) RangeRepository {
	return &gormRangeRepository{db: db}
}

func (r *gormRangeRepository) Create(ctx context.Context, mr *MaintenanceRange) error {
	return r.db.WithContext(ctx).Create(mr).Error
}

func (r *gormRangeRepository) List(ctx context.Context, tenantID string) ([]MaintenanceRange, error) {
	var ranges []MaintenanceRange
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&ranges).Error
	if err != nil {
		return nil, err
	}
	return ranges, nil
}

type gormOperationRepository struct {
	db *gorm.DB
}

// NewOperationRepository returns a gorm backed OperationRepository implementation.
func NewOperationRepository(db *gorm.DB) OperationRepository {
	return &gormOperationRepository{db: db}
}

func (r *gormOperationRepository) Create(ctx context.Context, op *Operation) error {
	return r.db.WithContext(ctx).Create(op).Error
}

func (r *gormOperationRepository) List(ctx context.Context, tenantID string) ([]Operation, error) {
	var ops []Operation
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&ops).Error
	if err != nil {
		return nil, err
	}
	return ops, nil
}
