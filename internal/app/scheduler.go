package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/shopops/order-csv-exporter/internal/cache"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// Scheduler arms the automated export as a cron entry and re-arms it whenever
// the schedule config changes. Each tick enqueues one export task; the queue
// and the orchestrator's per-key lock keep overlapping ticks from running
// twice.
type Scheduler struct {
	cache cache.Cache
	cron  *cron.Cron

	mu    sync.Mutex
	entry cron.EntryID
	armed bool
}

func NewScheduler(c cache.Cache) *Scheduler {
	return &Scheduler{cache: c, cron: cron.New()}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the cron loop and waits for a running tick to finish enqueueing.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Apply re-arms the schedule from the given config. Any existing entry is
// removed first, so a change to the interval always restarts the countdown
// from "now + interval". A disabled config just disarms.
func (s *Scheduler) Apply(cfg model.ScheduleConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed {
		s.cron.Remove(s.entry)
		s.armed = false
	}

	if !cfg.Enabled {
		slog.Info("order_csv_exporter.scheduler.disarmed")
		return
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", cfg.Interval()), func() {
		s.enqueue(cfg)
	})
	if err != nil {
		slog.Error("order_csv_exporter.scheduler.arm_failed", slog.String("error", err.Error()))
		return
	}
	s.entry = id
	s.armed = true

	slog.Info("order_csv_exporter.scheduler.armed",
		slog.Duration("interval", cfg.Interval()),
		slog.String("kind", string(cfg.Kind)),
		slog.String("transport", string(cfg.Transport.Kind)),
	)
}

// Armed reports whether a schedule entry is currently registered.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

func (s *Scheduler) enqueue(cfg model.ScheduleConfig) {
	key := cfg.Filter().Key()

	inFlight, err := taskInFlight(s.cache, key)
	if err != nil {
		slog.Error("order_csv_exporter.scheduler.status_check_failed",
			slog.String("schedule_key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	if inFlight {
		// The previous tick's task is still queued or running; skip instead
		// of stacking a duplicate behind it.
		slog.Info("order_csv_exporter.scheduler.tick_skipped",
			slog.String("schedule_key", key),
			slog.String("reason", "task already in progress"),
		)
		return
	}

	task := model.ExportTask{
		TaskID:           uuid.NewString(),
		ScheduleKey:      key,
		Filter:           cfg.Filter(),
		Format:           cfg.Format(),
		FilenameTemplate: cfg.FilenameTemplate(),
		Transport:        cfg.Transport,
		MarkPolicy:       model.MarkAfterDeliver,
		UnexportedOnly:   true,
	}

	if err := enqueueTask(s.cache, task); err != nil {
		// A failed tick is logged and dropped; the next tick runs regardless.
		slog.Error("order_csv_exporter.scheduler.enqueue_failed",
			slog.String("task_id", task.TaskID),
			slog.String("error", err.Error()),
		)
		return
	}

	slog.Info("order_csv_exporter.scheduler.task_queued",
		slog.String("task_id", task.TaskID),
		slog.String("schedule_key", task.ScheduleKey),
	)
}
