package importer

import (
	"context"
	"time"

	"maintainops/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler selects bounded batches of pending jobs across all tenants and
// hands them to the runner one at a time. Selection is round-robin across
// tenants so a single tenant with a deep queue cannot starve the others.
type Scheduler struct {
	jobs   JobRepository
	runner *Runner
	logger *zap.Logger

	batchCap   int
	poolSize   int
	staleAfter time.Duration
	now        func() time.Time
}

type SchedulerParams struct {
	fx.In

	Jobs   JobRepository
	Runner *Runner
	Config *config.Config
	Logger *zap.Logger
}

func NewScheduler(p SchedulerParams) *Scheduler {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	batchCap := p.Config.Import.BatchCap
	if batchCap <= 0 {
		batchCap = 5
	}
	poolSize := p.Config.Import.PendingPoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	staleAfter := p.Config.Import.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}

	return &Scheduler{
		jobs:       p.Jobs,
		runner:     p.Runner,
		logger:     logger,
		batchCap:   batchCap,
		poolSize:   poolSize,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// BatchReport lists the outcome of one scheduling pass.
type BatchReport struct {
	Processed []string          `json:"processed"`
	Skipped   []string          `json:"skipped"`
	Failed    map[string]string `json:"failed"`
}

// RunBatch performs one fairness-bounded pass: load the oldest pending jobs,
// pick round-robin across tenants up to the batch cap, process sequentially.
// A failing job never aborts the rest of the batch.
func (s *Scheduler) RunBatch(ctx context.Context) (BatchReport, error) {
	report := BatchReport{
		Processed: []string{},
		Skipped:   []string{},
		Failed:    map[string]string{},
	}

	pool, err := s.jobs.OldestPending(ctx, s.poolSize)
	if err != nil {
		return report, err
	}
	if len(pool) == 0 {
		return report, nil
	}

	batch := fairSelect(pool, s.batchCap)
	s.logger.Info("dispatching import batch",
		zap.Int("pending_pool", len(pool)),
		zap.Int("batch", len(batch)),
	)

	for i := range batch {
		job := batch[i]

		claimed, err := s.runner.Process(ctx, &job)
		switch {
		case !claimed && err == nil:
			report.Skipped = append(report.Skipped, job.ID)
		case err != nil:
			report.Failed[job.ID] = err.Error()
		default:
			report.Processed = append(report.Processed, job.ID)
		}
	}

	return report, nil
}

// fairSelect groups jobs by tenant preserving FIFO order within each tenant,
// then takes one job per tenant per round until cap is reached. Tenant rounds
// follow the order tenants first appear in the pool, so the tenant with the
// oldest job still goes first.
func fairSelect(pool []ImportJob, limit int) []ImportJob {
	queues := make(map[string][]ImportJob)
	order := make([]string, 0)
	for _, job := range pool {
		if _, ok := queues[job.TenantID]; !ok {
			order = append(order, job.TenantID)
		}
		queues[job.TenantID] = append(queues[job.TenantID], job)
	}

	selected := make([]ImportJob, 0, limit)
	for len(selected) < limit {
		advanced := false
		for _, tenantID := range order {
			queue := queues[tenantID]
			if len(queue) == 0 {
				continue
			}
			selected = append(selected, queue[0])
			queues[tenantID] = queue[1:]
			advanced = true
			if len(selected) == limit {
				break
			}
		}
		if !advanced {
			break
		}
	}

	return selected
}

// RecoverStale resets processing jobs with no update inside the staleness
// window back to pending. An empty tenantID sweeps all tenants.
func (s *Scheduler) RecoverStale(ctx context.Context, tenantID string) (int64, error) {
	cutoff := s.now().UTC().Add(-s.staleAfter)
	reset, err := s.jobs.ResetStale(ctx, tenantID, cutoff)
	if err != nil {
		return 0, err
	}
	if reset > 0 {
		s.logger.Warn("recovered stuck import jobs",
			zap.Int64("reset", reset),
			zap.String("tenant_id", tenantID),
			zap.Duration("stale_after", s.staleAfter),
		)
	}
	return reset, nil
}

// StartScheduler runs the periodic dispatch loop over the fx lifecycle. Each
// tick enqueues one dispatch task and, on its own cadence, one recovery
// sweep, so triggering stays decoupled from processing.
func StartScheduler(lc fx.Lifecycle, cfg *config.Config, t *Task) {
	dispatchEvery := cfg.Import.DispatchInterval
	if dispatchEvery <= 0 {
		dispatchEvery = time.Minute
	}
	recoverEvery := cfg.Import.RecoverInterval
	if recoverEvery <= 0 {
		recoverEvery = 5 * time.Minute
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go run(loopCtx, dispatchEvery, recoverEvery, t)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}

func run(ctx context.Context, dispatchEvery, recoverEvery time.Duration, t *Task) {
	zap.L().Info("[Scheduler] started import dispatch loop",
		zap.Duration("dispatch_every", dispatchEvery),
		zap.Duration("recover_every", recoverEvery),
	)

	dispatch := time.NewTicker(dispatchEvery)
	defer dispatch.Stop()
	sweep := time.NewTicker(recoverEvery)
	defer sweep.Stop()

	for {
		select {
		case <-dispatch.C:
			if err := t.EnqueueDispatch(ctx); err != nil {
				zap.L().Error("[Scheduler] failed enqueue dispatch task", zap.Error(err))
			}
		case <-sweep.C:
			if err := t.EnqueueRecover(ctx); err != nil {
				zap.L().Error("[Scheduler] failed enqueue recover task", zap.Error(err))
			}
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}
