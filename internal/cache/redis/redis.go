package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopops/order-csv-exporter/internal/cache"
	"github.com/shopops/order-csv-exporter/internal/model"
)

const (
	queueKey  = "export:queue"
	statusTTL = 24 * time.Hour
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Ping Redis to check the connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to Redis at %s: %w", addr, err)
	}

	return &RedisCache{client: rdb}, nil
}

func (r *RedisCache) PushExportTask(task model.ExportTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal export task: %w", err)
	}
	return r.client.LPush(context.Background(), queueKey, data).Err()
}

func (r *RedisCache) PopExportTask() (model.ExportTask, error) {
	var task model.ExportTask

	data, err := r.client.RPop(context.Background(), queueKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return task, cache.ErrEmptyQueue
		}
		return task, err
	}
	if err := json.Unmarshal(data, &task); err != nil {
		return task, fmt.Errorf("unmarshal export task: %w", err)
	}
	return task, nil
}

func (r *RedisCache) SetTaskStatus(taskID, status string) error {
	return r.client.Set(context.Background(), statusKey(taskID), status, statusTTL).Err()
}

func (r *RedisCache) GetTaskStatus(taskID string) (string, error) {
	status, err := r.client.Get(context.Background(), statusKey(taskID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return status, err
}

func (r *RedisCache) ClearTask(taskID string) error {
	return r.client.Del(context.Background(), statusKey(taskID)).Err()
}

func (r *RedisCache) SetScheduleStatus(key, status string) error {
	return r.client.Set(context.Background(), scheduleKey(key), status, statusTTL).Err()
}

func (r *RedisCache) GetScheduleStatus(key string) (string, error) {
	status, err := r.client.Get(context.Background(), scheduleKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return status, err
}

func (r *RedisCache) ClearSchedule(key string) error {
	return r.client.Del(context.Background(), scheduleKey(key)).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// helpers to standardize keys
func statusKey(taskID string) string {
	return fmt.Sprintf("export:status:%s", taskID)
}

func scheduleKey(key string) string {
	return fmt.Sprintf("export:schedule:%s", key)
}
