package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/format"
	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/store"
	"github.com/shopops/order-csv-exporter/internal/transport"
)

// ExportJob is one orchestrator run: which records, how to render them, and
// where the file goes.
type ExportJob struct {
	// ScheduleKey scopes run mutual exclusion. Empty means "derive from the
	// filter", so two ad-hoc runs over the same candidate set still exclude
	// each other.
	ScheduleKey      string
	Filter           model.ExportFilter
	Format           model.ExportFormat
	FilenameTemplate string
	Transport        transport.Transport
	MarkPolicy       model.MarkPolicy
	// UnexportedOnly restricts candidates to records explicitly flagged
	// unexported (the automated-export path).
	UnexportedOnly bool
}

// Orchestrator drives an export end to end: select, render, mark, deliver,
// record history. At most one run per schedule key is in flight at a time.
type Orchestrator struct {
	store store.Store
	locks sync.Map // schedule key -> *sync.Mutex
}

func NewOrchestrator(s store.Store) *Orchestrator {
	return &Orchestrator{store: s}
}

// Run executes the job. A second run with the same schedule key while one is
// in flight fails fast with ConcurrentRunRejected; it is never queued behind
// the first. Delivery failures after MarkBeforeDeliver leave the marks set
// (at-least-once delivery); the history row still records the failure.
func (o *Orchestrator) Run(ctx context.Context, job ExportJob) (model.ExportJobResult, error) {
	key := job.ScheduleKey
	if key == "" {
		key = job.Filter.Key()
	}

	mu := o.lockFor(key)
	if !mu.TryLock() {
		return model.ExportJobResult{}, &apperr.ConcurrentRunRejected{ScheduleKey: key}
	}
	defer mu.Unlock()

	// Marking after an HTTP download cannot work: the response stream is
	// already committed when delivery returns.
	if job.MarkPolicy == model.MarkAfterDeliver && job.Transport.Name() == string(model.TransportDownload) {
		return model.ExportJobResult{}, apperr.ErrMarkPolicyUnsupported
	}

	result := model.ExportJobResult{JobID: uuid.NewString()}

	records, err := o.store.Records().Query(ctx, job.Filter, job.UnexportedOnly)
	if err != nil {
		return result, err
	}
	result.Attempted = len(records)
	if len(records) == 0 {
		// Nothing to render or deliver, but the run still leaves a history
		// row so "no candidates" ticks are visible in the audit trail.
		if _, err := o.store.History().Insert(ctx, &model.NewExportHistory{
			JobID:     result.JobID,
			Kind:      job.Filter.Kind,
			Transport: job.Transport.Name(),
			StartedAt: time.Now().UnixMilli(),
			Status:    model.ExportStatusDone,
		}); err != nil {
			return result, err
		}
		slog.InfoContext(ctx, "order_csv_exporter.export.no_candidates",
			slog.String("job_id", result.JobID),
			slog.String("schedule_key", key),
		)
		return result, nil
	}

	payload, recordErrs, err := format.Render(job.Filter.Kind, records, job.Format)
	if err != nil {
		return result, err
	}
	result.Errors = recordErrs
	result.Failed = len(recordErrs)
	result.Bytes = int64(len(payload))

	ids := renderedIDs(records, recordErrs)
	result.Succeeded = len(ids)
	result.Filename = format.Filename(job.FilenameTemplate, time.Now(), ids)

	historyID, err := o.store.History().Insert(ctx, &model.NewExportHistory{
		JobID:     result.JobID,
		Filename:  result.Filename,
		Kind:      job.Filter.Kind,
		Transport: job.Transport.Name(),
		Attempted: result.Attempted,
		StartedAt: time.Now().UnixMilli(),
		Status:    model.ExportStatusPending,
	})
	if err != nil {
		return result, err
	}

	if job.MarkPolicy == model.MarkBeforeDeliver {
		if err := o.store.ExportState().SetExportedAll(ctx, job.Filter.Kind, ids, true); err != nil {
			o.finishHistory(ctx, historyID, model.ExportStatusFailed, 0, nil)
			return result, err
		}
	}

	if err := job.Transport.Deliver(ctx, payload, result.Filename); err != nil {
		// Marks set under MarkBeforeDeliver stay set.
		kind := transportErrorKind(err)
		o.finishHistory(ctx, historyID, model.ExportStatusFailed, 0, &kind)
		slog.ErrorContext(ctx, "order_csv_exporter.export.delivery_failed",
			slog.String("job_id", result.JobID),
			slog.String("transport", job.Transport.Name()),
			slog.String("error", err.Error()),
		)
		return result, err
	}

	if job.MarkPolicy == model.MarkAfterDeliver {
		if err := o.store.ExportState().SetExportedAll(ctx, job.Filter.Kind, ids, true); err != nil {
			o.finishHistory(ctx, historyID, model.ExportStatusFailed, result.Bytes, nil)
			return result, err
		}
	}

	o.finishHistory(ctx, historyID, model.ExportStatusDone, result.Bytes, nil)
	slog.InfoContext(ctx, "order_csv_exporter.export.delivered",
		slog.String("job_id", result.JobID),
		slog.String("filename", result.Filename),
		slog.String("transport", job.Transport.Name()),
		slog.Int("attempted", result.Attempted),
		slog.Int("succeeded", result.Succeeded),
		slog.Int64("bytes", result.Bytes),
	)
	return result, nil
}

func (o *Orchestrator) lockFor(key string) *sync.Mutex {
	mu, _ := o.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (o *Orchestrator) finishHistory(ctx context.Context, id int64, status model.ExportStatus, bytes int64, errorKind *string) {
	err := o.store.History().Update(ctx, &model.UpdateExportHistory{
		ID:        id,
		Status:    status,
		Bytes:     bytes,
		ErrorKind: errorKind,
	})
	if err != nil {
		slog.ErrorContext(ctx, "order_csv_exporter.export.history_update_failed",
			slog.Int64("history_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// renderedIDs returns the ids of records that made it into the CSV, skipping
// those that failed serialization.
func renderedIDs(records []model.Record, recordErrs []model.RecordError) []int64 {
	failed := make(map[int64]struct{}, len(recordErrs))
	for _, re := range recordErrs {
		failed[re.RecordID] = struct{}{}
	}
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		if _, ok := failed[r.ID]; ok {
			continue
		}
		ids = append(ids, r.ID)
	}
	return ids
}

func transportErrorKind(err error) string {
	var connectErr *apperr.TransportConnectError
	if apperr.As(err, &connectErr) {
		return string(model.ErrKindTransportConnect)
	}
	var deliveryErr *apperr.TransportDeliveryError
	if apperr.As(err, &deliveryErr) {
		return string(model.ErrKindTransportDelivery)
	}
	return string(model.ErrKindTransportDelivery)
}
