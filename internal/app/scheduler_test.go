package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopops/order-csv-exporter/internal/cache"
	cachemem "github.com/shopops/order-csv-exporter/internal/cache/memory"
	"github.com/shopops/order-csv-exporter/internal/model"
)

func TestApplyArmsAndDisarms(t *testing.T) {
	s := NewScheduler(cachemem.New())

	cfg := model.DefaultScheduleConfig()
	assert.False(t, s.Armed(), "default config is disabled")

	cfg.Enabled = true
	s.Apply(cfg)
	assert.True(t, s.Armed())

	// Interval change re-arms from scratch.
	cfg.IntervalMinutes = 5
	s.Apply(cfg)
	assert.True(t, s.Armed())

	cfg.Enabled = false
	s.Apply(cfg)
	assert.False(t, s.Armed())
}

func TestEnqueueBuildsAutomatedExportTask(t *testing.T) {
	c := cachemem.New()
	s := NewScheduler(c)

	cfg := model.DefaultScheduleConfig()
	cfg.Enabled = true
	cfg.Statuses = []string{"completed", "processing"}
	cfg.Transport = model.TransportConfig{
		Kind: model.TransportFTP,
		FTP:  model.FTPConfig{Host: "ftp.example.com"},
	}
	s.enqueue(cfg)

	task, err := c.PopExportTask()
	require.NoError(t, err)

	assert.NotEmpty(t, task.TaskID)
	assert.Equal(t, cfg.Filter().Key(), task.ScheduleKey)
	assert.Equal(t, model.KindOrder, task.Filter.Kind)
	assert.ElementsMatch(t, cfg.Statuses, task.Filter.Statuses)
	assert.Equal(t, model.FormatDefault, task.Format)
	assert.Equal(t, model.DefaultOrderFilename, task.FilenameTemplate)
	assert.Equal(t, model.TransportFTP, task.Transport.Kind)
	assert.Equal(t, model.MarkAfterDeliver, task.MarkPolicy)
	assert.True(t, task.UnexportedOnly, "automated exports only pick up flagged records")

	status, err := c.GetTaskStatus(task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, status)
}

func TestEnqueueSkipsTickWhileTaskInFlight(t *testing.T) {
	c := cachemem.New()
	s := NewScheduler(c)

	cfg := model.DefaultScheduleConfig()
	cfg.Enabled = true
	s.enqueue(cfg)
	s.enqueue(cfg)

	first, err := c.PopExportTask()
	require.NoError(t, err)

	// The second tick fired while the first task was still pending, so no
	// duplicate was queued behind it.
	_, err = c.PopExportTask()
	require.ErrorIs(t, err, cache.ErrEmptyQueue)

	// A worker finishing the task frees the key for the next tick.
	require.NoError(t, c.SetScheduleStatus(first.ScheduleKey, model.TaskStatusDone))
	s.enqueue(cfg)

	second, err := c.PopExportTask()
	require.NoError(t, err)
	assert.NotEqual(t, first.TaskID, second.TaskID)
	assert.Equal(t, first.ScheduleKey, second.ScheduleKey)
}

// opsCache records the order of cache calls on top of the in-process cache.
type opsCache struct {
	*cachemem.Cache
	ops []string
}

func (c *opsCache) PushExportTask(task model.ExportTask) error {
	c.ops = append(c.ops, "push")
	return c.Cache.PushExportTask(task)
}

func (c *opsCache) SetTaskStatus(taskID, status string) error {
	c.ops = append(c.ops, "task_status")
	return c.Cache.SetTaskStatus(taskID, status)
}

func (c *opsCache) SetScheduleStatus(scheduleKey, status string) error {
	c.ops = append(c.ops, "schedule_status")
	return c.Cache.SetScheduleStatus(scheduleKey, status)
}

func TestEnqueueTaskSetsStatusesBeforePush(t *testing.T) {
	c := &opsCache{Cache: cachemem.New()}

	task := model.ExportTask{
		TaskID:      "task-1",
		ScheduleKey: "order:completed",
		Filter:      model.ExportFilter{Kind: model.KindOrder},
		Format:      model.FormatDefault,
	}
	require.NoError(t, enqueueTask(c, task))

	// A worker may pop the task the instant it is pushed; both statuses must
	// already be written by then or "processing" gets clobbered by "pending".
	assert.Equal(t, []string{"schedule_status", "task_status", "push"}, c.ops)
}
