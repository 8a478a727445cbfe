package location

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository describes database operations available for locations.
type Repository interface {
	Create(ctx context.Context, loc *Location) error
	GetByName(ctx context.Context, tenantID, name string) (*Location, error)
	GetByPath(ctx context.Context, tenantID, path string) (*Location, error)
	List(ctx context.Context, tenantID string) ([]Location, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, loc *Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *gormRepository) GetByName(ctx context.Context, tenantID, name string) (*Location, error) {
	var loc Location
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&loc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *gormRepository) GetByPath(ctx context.Context, tenantID, path string) (*Location, error) {
	var loc Location
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND path = ?", tenantID, path).
		First(&loc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *gormRepository) List(ctx context.Context, tenantID string) ([]Location, error) {
	var locs []Location
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("path ASC").
		Find(&locs).Error
	if err != nil {
		return nil, err
	}
	return locs, nil
}
