package machine

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ModelRepository describes database operations available for machine models.
type ModelRepository interface {
	Create(ctx context.Context, model *MachineModel) error
	GetByName(ctx context.Context, tenantID, name string) (*MachineModel, error)
	List(ctx context.Context, tenantID string) ([]MachineModel, error)
}

// Repository describes database operations available for machines.
type Repository interface {
	Create(ctx context.Context, machine *Machine) error
	List(ctx context.Context, tenantID string) ([]Machine, error)
}

type gormModelRepository struct {
	db *gorm.DB
}

// NewModelRepository returns a gorm backed ModelRepository implementation.
func NewModelRepository(db *gorm.DB) ModelRepository {
	return &gormModelRepository{db: db}
}

func (r *gormModelRepository) Create(ctx context.Context, model *MachineModel) error {
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *gormModelRepository) GetByName(ctx context.Context, tenantID, name string) (*MachineModel, error) {
	var m MachineModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormModelRepository) List(ctx context.Context, tenantID string) ([]MachineModel, error) {
	var models []MachineModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return models, nil
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, machine *Machine) error {
	return r.db.WithContext(ctx).Create(machine).Error
}

func (r *gormRepository) List(ctx context.Context, tenantID string) ([]Machine, error) {
	var machines []Machine
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&machines).Error
	if err != nil {
		return nil, err
	}
	return machines, nil
}
