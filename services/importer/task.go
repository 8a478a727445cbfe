package importer

import (
	"context"

	"maintainops/pkg/task"
	"maintainops/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Task bridges the import scheduler to the asynq queue: the dispatch loop
// enqueues, the worker side runs the scheduling pass.
type Task struct {
	scheduler *Scheduler
	enqueuer  task.Enqueuer
}

type TaskParams struct {
	fx.In

	Scheduler *Scheduler
	Enqueuer  task.Enqueuer
}

func NewTask(p TaskParams) *Task {
	return &Task{
		scheduler: p.Scheduler,
		enqueuer:  p.Enqueuer,
	}
}

func (t *Task) EnqueueDispatch(ctx context.Context) error {
	_, err := t.enqueuer.Enqueue(ctx, asynq.NewTask(taskname.ImportDispatch, nil))
	return err
}

func (t *Task) EnqueueRecover(ctx context.Context) error {
	_, err := t.enqueuer.Enqueue(ctx, asynq.NewTask(taskname.ImportRecover, nil))
	return err
}

func (t *Task) HandleDispatchTask(ctx context.Context, _ *asynq.Task) error {
	report, err := t.scheduler.RunBatch(ctx)
	if err != nil {
		zap.L().Error("import dispatch pass failed", zap.Error(err))
		return err
	}

	zap.L().Info("import dispatch pass finished",
		zap.Strings("processed", report.Processed),
		zap.Strings("skipped", report.Skipped),
		zap.Int("failed", len(report.Failed)),
	)
	for jobID, msg := range report.Failed {
		zap.L().Error("import job failed",
			zap.String("job_id", jobID),
			zap.String("cause", msg),
		)
	}
	return nil
}

func (t *Task) HandleRecoverTask(ctx context.Context, _ *asynq.Task) error {
	_, err := t.scheduler.RecoverStale(ctx, "")
	if err != nil {
		zap.L().Error("stuck job sweep failed", zap.Error(err))
	}
	return err
}

// RegisterTaskHandlers wires import tasks onto the asynq mux.
func RegisterTaskHandlers(mux *asynq.ServeMux, t *Task) {
	mux.HandleFunc(taskname.ImportDispatch, t.HandleDispatchTask)
	mux.HandleFunc(taskname.ImportRecover, t.HandleRecoverTask)
}
