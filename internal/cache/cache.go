package cache

import (
	"errors"

	"github.com/shopops/order-csv-exporter/internal/model"
)

// ErrEmptyQueue is returned by PopExportTask when no task is queued.
var ErrEmptyQueue = errors.New("export queue is empty")

// Cache is the run queue plus per-task status used to hand scheduled and
// manual async exports to the worker pool and to reject duplicate in-flight
// runs. The schedule status is keyed by the task's schedule key; a pending or
// processing entry means a task for that key is already queued or running.
type Cache interface {
	PushExportTask(task model.ExportTask) error
	PopExportTask() (model.ExportTask, error)
	SetTaskStatus(taskID, status string) error
	GetTaskStatus(taskID string) (string, error)
	ClearTask(taskID string) error
	SetScheduleStatus(scheduleKey, status string) error
	GetScheduleStatus(scheduleKey string) (string, error)
	ClearSchedule(scheduleKey string) error
	Close() error
}
