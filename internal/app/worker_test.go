package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/store/memory"
)

func TestHandleExportTaskDeliversToLocalFile(t *testing.T) {
	dir := t.TempDir()
	s := memory.New(testOrder(1, "completed"))
	app := newTestApp(t, s)

	filter := model.ExportFilter{Kind: model.KindOrder, Statuses: []string{"completed"}}
	task := model.ExportTask{
		TaskID:           uuid.NewString(),
		ScheduleKey:      filter.Key(),
		Filter:           filter,
		Format:           model.FormatDefault,
		FilenameTemplate: "orders-%%order_ids%%.csv",
		Transport: model.TransportConfig{
			Kind:      model.TransportLocalFile,
			LocalFile: model.LocalFileConfig{Dir: dir},
		},
		MarkPolicy: model.MarkAfterDeliver,
	}
	app.handleExportTask(context.Background(), 1, task)

	status, err := app.Cache.GetTaskStatus(task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, status)

	// The terminal status frees the schedule key for the next enqueue.
	scheduleStatus, err := app.Cache.GetScheduleStatus(task.ScheduleKey)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, scheduleStatus)

	data, err := os.ReadFile(filepath.Join(dir, "orders-1.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "order_id")

	exported, err := s.IsExported(context.Background(), model.KindOrder, 1)
	require.NoError(t, err)
	assert.True(t, exported)
}

func TestHandleExportTaskBadTransportFails(t *testing.T) {
	app := newTestApp(t, memory.New(testOrder(1, "completed")))

	task := model.ExportTask{
		TaskID:    uuid.NewString(),
		Filter:    model.ExportFilter{Kind: model.KindOrder},
		Format:    model.FormatDefault,
		Transport: model.TransportConfig{Kind: model.TransportFTP}, // no host
	}
	app.handleExportTask(context.Background(), 1, task)

	status, err := app.Cache.GetTaskStatus(task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusFailed, status)
}
