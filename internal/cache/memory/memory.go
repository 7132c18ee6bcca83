package memory

import (
	"sync"

	"github.com/shopops/order-csv-exporter/internal/cache"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// Cache is an in-process queue/status cache for single-node deployments and
// tests.
type Cache struct {
	mu       sync.Mutex
	queue    []model.ExportTask
	status   map[string]string
	schedule map[string]string
}

func New() *Cache {
	return &Cache{
		status:   make(map[string]string),
		schedule: make(map[string]string),
	}
}

func (c *Cache) PushExportTask(task model.ExportTask) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, task)
	return nil
}

func (c *Cache) PopExportTask() (model.ExportTask, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return model.ExportTask{}, cache.ErrEmptyQueue
	}
	task := c.queue[0]
	c.queue = c.queue[1:]
	return task, nil
}

func (c *Cache) SetTaskStatus(taskID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[taskID] = status
	return nil
}

func (c *Cache) GetTaskStatus(taskID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status[taskID], nil
}

func (c *Cache) ClearTask(taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.status, taskID)
	return nil
}

func (c *Cache) SetScheduleStatus(scheduleKey, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule[scheduleKey] = status
	return nil
}

func (c *Cache) GetScheduleStatus(scheduleKey string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schedule[scheduleKey], nil
}

func (c *Cache) ClearSchedule(scheduleKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.schedule, scheduleKey)
	return nil
}

func (c *Cache) Close() error { return nil }
