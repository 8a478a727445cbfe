package importer

import (
	"context"
	"fmt"

	"maintainops/pkg/config"
	"maintainops/services/location"
	"maintainops/services/machine"
	"maintainops/services/maintenance"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Runner executes one import job end to end: claim, fetch, parse, validate
// and persist row by row, checkpoint, finalize. Rows are independent units of
// work: a failed row never stops the ones after it.
type Runner struct {
	jobs       JobRepository
	store      ObjectStore
	validator  *validator
	locations  location.Repository
	models     machine.ModelRepository
	machines   machine.Repository
	ranges     maintenance.RangeRepository
	operations maintenance.OperationRepository
	logger     *zap.Logger

	checkpointEvery int
}

type RunnerParams struct {
	fx.In

	Jobs       JobRepository
	Store      ObjectStore
	Locations  location.Repository
	Models     machine.ModelRepository
	Machines   machine.Repository
	Ranges     maintenance.RangeRepository
	Operations maintenance.OperationRepository
	Node       *snowflake.Node
	Config     *config.Config `optional:"true"`
	Logger     *zap.Logger
}

const defaultCheckpointEvery = 10

func NewRunner(p RunnerParams) *Runner {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	checkpointEvery := defaultCheckpointEvery
	if p.Config != nil && p.Config.Import.CheckpointInterval > 0 {
		checkpointEvery = p.Config.Import.CheckpointInterval
	}
	return &Runner{
		jobs:            p.Jobs,
		store:           p.Store,
		validator:       newValidator(p.Locations, p.Models, p.Node),
		locations:       p.Locations,
		models:          p.Models,
		machines:        p.Machines,
		ranges:          p.Ranges,
		operations:      p.Operations,
		logger:          logger,
		checkpointEvery: checkpointEvery,
	}
}

// Process runs one job. It reports (false, nil) when the job was no longer
// pending, meaning a concurrent scheduler pass claimed it first.
func (r *Runner) Process(ctx context.Context, job *ImportJob) (bool, error) {
	claimed, err := r.jobs.Claim(ctx, job.ID)
	if err != nil {
		return false, fmt.Errorf("claim job %s: %w", job.ID, err)
	}
	if !claimed {
		r.logger.Info("job already claimed, skipping",
			zap.String("job_id", job.ID),
			zap.String("tenant_id", job.TenantID),
		)
		return false, nil
	}

	zapLog := r.logger.With(
		zap.String("job_id", job.ID),
		zap.String("tenant_id", job.TenantID),
		zap.String("type", string(job.Type)),
	)
	zapLog.Info("processing import job", zap.String("file", job.FileName))

	data, err := r.store.Get(ctx, job.FileKey)
	if err != nil {
		zapLog.Error("failed to fetch import file", zap.Error(err))
		return true, r.fail(ctx, job.ID, err)
	}

	format, ok := FormatFromFileName(job.FileName)
	if !ok {
		err := fmt.Errorf("unsupported file extension on %q", job.FileName)
		zapLog.Error("failed to determine file format", zap.Error(err))
		return true, r.fail(ctx, job.ID, err)
	}

	rows, err := Parse(data, format)
	if err != nil {
		zapLog.Error("failed to parse import file", zap.Error(err))
		return true, r.fail(ctx, job.ID, err)
	}

	if err := r.jobs.SetTotalRows(ctx, job.ID, len(rows)); err != nil {
		zapLog.Error("failed to record total rows", zap.Error(err))
		return true, r.fail(ctx, job.ID, err)
	}

	var (
		processed int
		success   int
		failed    int
		rowErrors []RowError
	)

	for i, row := range rows {
		rowNum := i + 1

		rowErr, err := r.processRow(ctx, job, row, rowNum)
		if err != nil {
			// Infrastructure failure, not attributable to this row: abort
			// the remaining rows and fail the job.
			zapLog.Error("import aborted", zap.Int("row", rowNum), zap.Error(err))
			if ferr := r.jobs.Finish(ctx, job.ID, StatusFailed, processed, success, failed, rowErrors); ferr != nil {
				zapLog.Error("failed to finalize job", zap.Error(ferr))
			}
			return true, err
		}

		processed++
		if rowErr != nil {
			failed++
			rowErrors = append(rowErrors, *rowErr)
		} else {
			success++
		}

		if processed%r.checkpointEvery == 0 {
			if err := r.jobs.Checkpoint(ctx, job.ID, processed, success, failed, rowErrors); err != nil {
				zapLog.Error("failed to checkpoint job", zap.Error(err))
				if ferr := r.jobs.Finish(ctx, job.ID, StatusFailed, processed, success, failed, rowErrors); ferr != nil {
					zapLog.Error("failed to finalize job", zap.Error(ferr))
				}
				return true, err
			}
		}
	}

	if err := r.jobs.Finish(ctx, job.ID, StatusCompleted, processed, success, failed, rowErrors); err != nil {
		zapLog.Error("failed to finalize job", zap.Error(err))
		return true, err
	}

	zapLog.Info("import job completed",
		zap.Int("processed", processed),
		zap.Int("success", success),
		zap.Int("errors", failed),
	)
	return true, nil
}

// processRow validates one row and inserts the resulting record. A RowError
// return means the row was skipped; an error return means the job must fail.
func (r *Runner) processRow(ctx context.Context, job *ImportJob, row Row, rowNum int) (*RowError, error) {
	switch job.Type {
	case KindLocations:
		rec, rowErr, err := r.validator.buildLocation(ctx, job.TenantID, row, rowNum)
		if err != nil || rowErr != nil {
			return rowErr, err
		}
		return r.insert(rowNum, r.locations.Create(ctx, rec))

	case KindMachineModels:
		rec, rowErr, err := r.validator.buildMachineModel(ctx, job.TenantID, row, rowNum)
		if err != nil || rowErr != nil {
			return rowErr, err
		}
		return r.insert(rowNum, r.models.Create(ctx, rec))

	case KindMachines:
		rec, rowErr, err := r.validator.buildMachine(ctx, job.TenantID, row, rowNum)
		if err != nil || rowErr != nil {
			return rowErr, err
		}
		return r.insert(rowNum, r.machines.Create(ctx, rec))

	case KindMaintenanceRanges:
		rec, rowErr, err := r.validator.buildMaintenanceRange(ctx, job.TenantID, row, rowNum)
		if err != nil || rowErr != nil {
			return rowErr, err
		}
		return r.insert(rowNum, r.ranges.Create(ctx, rec))

	case KindOperations:
		rec, rowErr, err := r.validator.buildOperation(ctx, job.TenantID, row, rowNum)
		if err != nil || rowErr != nil {
			return rowErr, err
		}
		return r.insert(rowNum, r.operations.Create(ctx, rec))

	default:
		return nil, fmt.Errorf("unknown import type %q", job.Type)
	}
}

// insert maps a row-attributable persistence failure to a RowError so the
// batch keeps going.
func (r *Runner) insert(rowNum int, err error) (*RowError, error) {
	if err == nil {
		return nil, nil
	}
	return rowError(rowNum, "record", "", "failed to create record: "+err.Error()), nil
}

func (r *Runner) fail(ctx context.Context, jobID string, cause error) error {
	if err := r.jobs.Finish(ctx, jobID, StatusFailed, 0, 0, 0, nil); err != nil {
		r.logger.Error("failed to mark job failed", zap.String("job_id", jobID), zap.Error(err))
	}
	return cause
}
