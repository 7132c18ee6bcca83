package app

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/transport"
)

// StartExportWorkers launches background workers to process export tasks concurrently.
// If too many workers are configured, the number is automatically limited based on available CPU cores.
// The returned group finishes once the context is canceled and every in-flight
// task has completed.
func (app *App) StartExportWorkers(ctx context.Context) *errgroup.Group {
	numWorkers := app.Config.Export.Workers
	if numWorkers <= 0 {
		numWorkers = 4
	}

	maxWorkers := runtime.NumCPU() * 2
	if numWorkers > maxWorkers {
		numWorkers = maxWorkers
	}

	slog.InfoContext(ctx, "order_csv_exporter.worker.starting", "count", numWorkers)

	g := new(errgroup.Group)
	for i := 0; i < numWorkers; i++ {
		workerID := i + 1
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
					task, err := app.Cache.PopExportTask()
					if err != nil {
						time.Sleep(time.Second)
						continue
					}
					app.handleExportTask(ctx, workerID, task)
				}
			}
		})
	}
	return g
}

func (app *App) handleExportTask(ctx context.Context, workerID int, task model.ExportTask) {
	_ = app.Cache.SetTaskStatus(task.TaskID, model.TaskStatusProcessing)
	_ = app.Cache.SetScheduleStatus(task.ScheduleKey, model.TaskStatusProcessing)

	tr, err := transport.New(task.Transport)
	if err != nil {
		app.finishTask(task, model.TaskStatusFailed)
		slog.ErrorContext(ctx, "order_csv_exporter.worker.bad_transport",
			"workerID", workerID,
			"taskID", task.TaskID,
			"error", err)
		return
	}

	result, err := app.Orchestrator.Run(ctx, ExportJob{
		ScheduleKey:      task.ScheduleKey,
		Filter:           task.Filter,
		Format:           task.Format,
		FilenameTemplate: task.FilenameTemplate,
		Transport:        tr,
		MarkPolicy:       task.MarkPolicy,
		UnexportedOnly:   task.UnexportedOnly,
	})
	if err != nil {
		var rejected *apperr.ConcurrentRunRejected
		if apperr.As(err, &rejected) {
			// Another run for the same schedule is already in flight; this
			// task is dropped, not retried. The schedule status stays with
			// the run that holds the lock.
			_ = app.Cache.SetTaskStatus(task.TaskID, model.TaskStatusFailed)
			slog.WarnContext(ctx, "order_csv_exporter.worker.concurrent_run_rejected",
				"workerID", workerID,
				"taskID", task.TaskID,
				"scheduleKey", rejected.ScheduleKey)
			return
		}

		app.finishTask(task, model.TaskStatusFailed)
		slog.ErrorContext(ctx, "order_csv_exporter.worker.task_failed",
			"workerID", workerID,
			"taskID", task.TaskID,
			"error", err)
		return
	}

	app.finishTask(task, model.TaskStatusDone)
	slog.InfoContext(ctx, "order_csv_exporter.worker.task_done",
		"workerID", workerID,
		"taskID", task.TaskID,
		"attempted", result.Attempted,
		"bytes", result.Bytes)
}

// finishTask records the terminal status for both the task and its schedule
// key, freeing the key for the next enqueue.
func (app *App) finishTask(task model.ExportTask, status string) {
	_ = app.Cache.SetTaskStatus(task.TaskID, status)
	_ = app.Cache.SetScheduleStatus(task.ScheduleKey, status)
}
