package app

import (
	"github.com/shopops/order-csv-exporter/internal/cache"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// taskInFlight reports whether a queued or running task already covers the
// schedule key.
func taskInFlight(c cache.Cache, scheduleKey string) (bool, error) {
	status, err := c.GetScheduleStatus(scheduleKey)
	if err != nil {
		return false, err
	}
	return status == model.TaskStatusPending || status == model.TaskStatusProcessing, nil
}

// enqueueTask records the pending statuses and then pushes the task. The
// statuses go first so a fast worker's "processing" transition cannot be
// overwritten back to "pending".
func enqueueTask(c cache.Cache, task model.ExportTask) error {
	if err := c.SetScheduleStatus(task.ScheduleKey, model.TaskStatusPending); err != nil {
		return err
	}
	if err := c.SetTaskStatus(task.TaskID, model.TaskStatusPending); err != nil {
		return err
	}
	return c.PushExportTask(task)
}
