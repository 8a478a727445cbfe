package importer

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JobRepository describes database operations available for import jobs.
type JobRepository interface {
	Create(ctx context.Context, job *ImportJob) error
	GetByID(ctx context.Context, tenantID, id string) (*ImportJob, error)
	List(ctx context.Context, tenantID string) ([]ImportJob, error)

	// OldestPending returns up to limit pending jobs across all tenants,
	// oldest first.
	OldestPending(ctx context.Context, limit int) ([]ImportJob, error)

	// Claim transitions a job from pending to processing. It reports false
	// when the job is no longer pending, which means another scheduler pass
	// claimed it first.
	Claim(ctx context.Context, id string) (bool, error)

	SetTotalRows(ctx context.Context, id string, total int) error
	Checkpoint(ctx context.Context, id string, processed, success, failed int, rowErrors []RowError) error
	Finish(ctx context.Context, id string, status JobStatus, processed, success, failed int, rowErrors []RowError) error

	// ResetStale moves processing jobs whose last update is older than cutoff
	// back to pending. An empty tenantID scopes the sweep to all tenants.
	ResetStale(ctx context.Context, tenantID string, cutoff time.Time) (int64, error)
}

type gormJobRepository struct {
	db *gorm.DB
}

// NewJobRepository returns a gorm backed JobRepository implementation.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &gormJobRepository{db: db}
}

func (r *gormJobRepository) Create(ctx context.Context, job *ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *gormJobRepository) GetByID(ctx context.Context, tenantID, id string) (*ImportJob, error) {
	var job ImportJob
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *gormJobRepository) List(ctx context.Context, tenantID string) ([]ImportJob, error) {
	var jobs []ImportJob
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *gormJobRepository) OldestPending(ctx context.Context, limit int) ([]ImportJob, error) {
	var jobs []ImportJob
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *gormJobRepository) Claim(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ImportJob{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":     StatusProcessing,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormJobRepository) SetTotalRows(ctx context.Context, id string, total int) error {
	return r.db.WithContext(ctx).
		Model(&ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_rows": total,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *gormJobRepository) Checkpoint(ctx context.Context, id string, processed, success, failed int, rowErrors []RowError) error {
	return r.db.WithContext(ctx).
		Model(&ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed_rows": processed,
			"success_rows":   success,
			"error_rows":     failed,
			"errors":         marshalRowErrors(rowErrors),
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *gormJobRepository) Finish(ctx context.Context, id string, status JobStatus, processed, success, failed int, rowErrors []RowError) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"processed_rows": processed,
			"success_rows":   success,
			"error_rows":     failed,
			"errors":         marshalRowErrors(rowErrors),
			"updated_at":     now,
			"completed_at":   now,
		}).Error
}

func (r *gormJobRepository) ResetStale(ctx context.Context, tenantID string, cutoff time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&ImportJob{}).
		Where("status = ? AND updated_at < ?", StatusProcessing, cutoff)
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	res := query.Updates(map[string]any{
		"status":     StatusPending,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
